// Package dimension parses "LxWxH" text into sorted measurements and compares
// them axis by axis. Parsing is permissive: malformed input is kept as failed
// axes, which never satisfy a comparison, instead of being reported as an
// error.
package dimension
