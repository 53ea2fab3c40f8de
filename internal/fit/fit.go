package fit

import (
	"github.com/eugenenazirov/boxfit/internal/dimension"
	"github.com/eugenenazirov/boxfit/internal/form"
)

type sortedAxisEvaluator struct{}

// New creates an Evaluator that compares sorted axes of each product against
// each box.
func New() Evaluator {
	return &sortedAxisEvaluator{}
}

type parsedProduct struct {
	name string
	dims dimension.Dimensions
}

func (e *sortedAxisEvaluator) Evaluate(products, boxes []form.Entry) []Result {
	parsed := make([]parsedProduct, len(products))
	for i, p := range products {
		parsed[i] = parsedProduct{name: p.Name, dims: dimension.Parse(p.Dimensions)}
	}

	results := make([]Result, 0, len(boxes))
	for _, box := range boxes {
		results = append(results, evaluateBox(box, parsed))
	}
	return results
}

func evaluateBox(box form.Entry, products []parsedProduct) Result {
	boxDims := dimension.Parse(box.Dimensions)

	fitting := make([]string, 0, len(products))
	var suggested dimension.Triple
	for _, p := range products {
		if !p.dims.FitsWithin(boxDims) {
			continue
		}
		fitting = append(fitting, p.name)
		if t, ok := p.dims.Triple(); ok {
			suggested = dimension.Max(suggested, t)
		}
	}

	result := Result{
		Box:                 box.Name,
		FittingProducts:     fitting,
		SuggestedDimensions: NoProductsFit,
	}
	if len(fitting) > 0 {
		result.SuggestedDimensions = suggested.String()
	}
	return result
}
