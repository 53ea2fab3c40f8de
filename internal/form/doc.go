// Package form holds the product and box entries a user is editing. State is
// a value type updated functionally: adding or editing an entry returns a new
// State, so snapshots held elsewhere never change underneath their owner.
package form
