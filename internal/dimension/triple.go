package dimension

import "strings"

// Triple is a fixed three-axis measurement, used for suggested box sizes.
type Triple [axisCount]float64

// Max returns the component-wise maximum of a and b.
func Max(a, b Triple) Triple {
	var out Triple
	for i := range out {
		out[i] = max(a[i], b[i])
	}
	return out
}

// String formats the triple as "LxWxH" using the shortest form of each axis,
// switching to exponent notation for very large or small values.
func (t Triple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, Separator)
}
