// Package render presents form state and fit results, either as the HTML form
// page served by the web UI or as plain text for the command line.
package render
