package dimension

import (
	"math"
	"sort"
	"strings"
)

// Separator splits the axes of a raw dimension string ("LxWxH").
const Separator = "x"

// axisCount is the number of axes compared when checking a fit.
const axisCount = 3

// Axis is a single parsed measurement. OK is false when the token could not be
// converted to a number; such an axis never satisfies a comparison.
type Axis struct {
	Value float64
	OK    bool
}

// Dimensions holds the axes parsed from raw text, sorted ascending with failed
// axes ordered last.
type Dimensions struct {
	axes []Axis
}

// Parse converts raw "LxWxH" text into sorted dimensions. It never fails:
// tokens that are not numeric become failed axes, an empty token reads as
// zero, and the token count is kept as written.
func Parse(raw string) Dimensions {
	tokens := strings.Split(raw, Separator)
	axes := make([]Axis, 0, len(tokens))
	for _, token := range tokens {
		axes = append(axes, parseAxis(token))
	}

	sort.SliceStable(axes, func(i, j int) bool {
		a, b := axes[i], axes[j]
		if a.OK != b.OK {
			return a.OK
		}
		return a.OK && a.Value < b.Value
	})

	return Dimensions{axes: axes}
}

func parseAxis(token string) Axis {
	value, ok := parseNumber(strings.TrimSpace(token))
	if !ok || math.IsNaN(value) {
		return Axis{}
	}
	return Axis{Value: value, OK: true}
}

// Len reports how many axes were present in the raw text.
func (d Dimensions) Len() int {
	return len(d.axes)
}

// Axis returns the i-th smallest axis. A missing axis reports false.
func (d Dimensions) Axis(i int) (float64, bool) {
	if i < 0 || i >= len(d.axes) {
		return 0, false
	}
	a := d.axes[i]
	return a.Value, a.OK
}

// Axes returns a copy of the parsed axes.
func (d Dimensions) Axes() []Axis {
	out := make([]Axis, len(d.axes))
	copy(out, d.axes)
	return out
}

// Valid reports whether every token converted and at least three axes exist.
func (d Dimensions) Valid() bool {
	if len(d.axes) < axisCount {
		return false
	}
	for _, a := range d.axes {
		if !a.OK {
			return false
		}
	}
	return true
}

// FitsWithin reports whether d fits inside box when both are compared
// axis by axis in ascending order. Any failed or missing axis on either side
// fails the check. Axes past the third are not compared.
func (d Dimensions) FitsWithin(box Dimensions) bool {
	if !d.Valid() || !box.Valid() {
		return false
	}
	for i := 0; i < axisCount; i++ {
		p, _ := d.Axis(i)
		b, _ := box.Axis(i)
		if !(p <= b) {
			return false
		}
	}
	return true
}

// Triple returns the first three axes. The second value is false when the
// dimensions are not valid.
func (d Dimensions) Triple() (Triple, bool) {
	if !d.Valid() {
		return Triple{}, false
	}
	var t Triple
	for i := range t {
		t[i], _ = d.Axis(i)
	}
	return t, true
}
