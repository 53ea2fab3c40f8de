// Package fit checks which products fit each box and suggests the smallest
// box dimensions that would still hold every fitting product.
//
// Both product and box dimensions are sorted ascending before being compared
// axis by axis, so a product may be turned to line up its shortest side with
// the box's shortest side. This is not a full rotational containment check.
package fit
