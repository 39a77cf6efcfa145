package interpolate

// segment returns the index i of the polynomial piece used for x, so that
// xs[i] <= x < xs[i+1] inside the table. Points below the table map to the
// first piece and points at or above the last knot map to the last piece.
func segment(xs []float64, x float64) int {
	n := len(xs)
	if x < xs[0] {
		return 0
	}
	if x >= xs[n-1] {
		return n - 2
	}

	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if x >= xs[mid] {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
