package audioengine

import "math"

// Saturate rounds v to the nearest integer and clamps it to the int16 range.
// Out-of-range values stick at the rails; they never wrap around.
func Saturate(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	} else if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

