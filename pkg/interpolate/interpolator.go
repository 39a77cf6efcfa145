/*
Package interpolate implements the one-dimensional interpolators used to map
tabulated attenuation and energy-transfer coefficients onto a spectrum's
energy grid.

Interpolators hold no caches and are safe for concurrent use once built.
*/
package interpolate

// Interpolator is a 1D interpolator.
type Interpolator interface {
	// Eval evaluates the interpolator at x.
	Eval(x float64) float64
	// EvalAll evaluates every element of xs. When out is given its first
	// slice receives the values and is returned, so callers can reuse a
	// buffer of len(xs).
	EvalAll(xs []float64, out ...[]float64) []float64
}

var (
	_ Interpolator = &Akima{}
	_ Interpolator = &LogLog{}
)

func evalAll(f func(float64) float64, xs []float64, out [][]float64) []float64 {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}
	for i := range xs {
		out[0][i] = f(xs[i])
	}
	return out[0]
}
