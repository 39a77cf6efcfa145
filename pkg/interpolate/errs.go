package interpolate

import "errors"

var (
	// ErrTooFewPoints indicates a table with fewer than two points.
	ErrTooFewPoints = errors.New("interpolate: need at least two points")

	// ErrLengthMismatch indicates len(xs) != len(ys).
	ErrLengthMismatch = errors.New("interpolate: xs and ys differ in length")

	// ErrUnsorted indicates xs that are not strictly increasing.
	ErrUnsorted = errors.New("interpolate: xs not strictly increasing")

	// ErrNonFinite indicates a NaN or infinite input point.
	ErrNonFinite = errors.New("interpolate: non-finite point")
)
