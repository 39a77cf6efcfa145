package util

import (
	"math"
	"strconv"
)

// Finite reports whether x is neither NaN nor ±Inf.
func Finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FmtFloat formats x with the shortest representation that round-trips.
// NaN is rendered as an empty string so it shows up as a blank CSV cell.
func FmtFloat(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// Copy returns a copy of xs.
func Copy(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	return out
}
