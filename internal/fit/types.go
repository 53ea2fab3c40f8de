package fit

import "github.com/eugenenazirov/boxfit/internal/form"

// NoProductsFit replaces the suggested dimensions when no product fits a box.
const NoProductsFit = "No products fit"

// Result summarises which products fit a single box.
// SuggestedDimensions is the smallest box that would hold each fitting product
// on its own, formatted "LxWxH", or NoProductsFit.
type Result struct {
	Box                 string   `json:"box"`
	FittingProducts     []string `json:"fittingProducts"`
	SuggestedDimensions string   `json:"suggestedDimensions"`
}

// Fits reports whether at least one product fits the box.
func (r Result) Fits() bool {
	return len(r.FittingProducts) > 0
}

// Evaluator describes the behaviour required from a fit evaluator.
type Evaluator interface {
	Evaluate(products, boxes []form.Entry) []Result
}
