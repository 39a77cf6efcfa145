package interpolate

import (
	"fmt"
	"math"

	"github.com/ja7ad/beamquality/pkg/util"
)

type cubicCoeff struct {
	a, b, c, d float64
}

// Akima is a piecewise cubic through a table of points whose knot slopes are
// chosen by Akima's local weighting. Unlike a natural cubic spline it does
// not overshoot next to sharp changes of slope.
//
// Outside [xs[0], xs[n-1]] the boundary piece's cubic is evaluated as is, so
// extrapolation continues the curve smoothly instead of clamping.
type Akima struct {
	xs, ys []float64
	coeffs []cubicCoeff
}

// NewAkima fits an Akima spline to xs, ys. xs must be strictly increasing.
// With two points the spline is the straight line through them.
func NewAkima(xs, ys []float64) (*Akima, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: len(xs) = %d, len(ys) = %d", ErrLengthMismatch, len(xs), len(ys))
	}
	n := len(xs)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}
	for i := 0; i < n; i++ {
		if !util.Finite(xs[i]) || !util.Finite(ys[i]) {
			return nil, fmt.Errorf("%w: (%g, %g) at %d", ErrNonFinite, xs[i], ys[i], i)
		}
		if i > 0 && xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("%w: xs[%d] = %g after %g", ErrUnsorted, i, xs[i], xs[i-1])
		}
	}

	ak := &Akima{
		xs:     append([]float64(nil), xs...),
		ys:     append([]float64(nil), ys...),
		coeffs: make([]cubicCoeff, n-1),
	}
	ak.calcCoeffs(ak.knotSlopes())
	return ak, nil
}

// knotSlopes returns the derivative at every knot.
func (ak *Akima) knotSlopes() []float64 {
	n := len(ak.xs)

	// m[k+2] is the secant slope of piece k; two extra slopes are
	// extrapolated linearly on each side.
	m := make([]float64, n+3)
	for i := 0; i < n-1; i++ {
		m[i+2] = (ak.ys[i+1] - ak.ys[i]) / (ak.xs[i+1] - ak.xs[i])
	}
	if n == 2 {
		m[0], m[1], m[3], m[4] = m[2], m[2], m[2], m[2]
	} else {
		m[1] = 2*m[2] - m[3]
		m[0] = 2*m[1] - m[2]
		m[n+1] = 2*m[n] - m[n-1]
		m[n+2] = 2*m[n+1] - m[n]
	}

	f12 := make([]float64, n)
	maxF := 0.0
	for i := range f12 {
		f12[i] = math.Abs(m[i+3]-m[i+2]) + math.Abs(m[i+1]-m[i])
		maxF = math.Max(maxF, f12[i])
	}

	t := make([]float64, n)
	for i := range t {
		if f12[i] > 1e-9*maxF {
			f1 := math.Abs(m[i+3] - m[i+2])
			f2 := math.Abs(m[i+1] - m[i])
			t[i] = (f1*m[i+1] + f2*m[i+2]) / f12[i]
		} else {
			t[i] = 0.5 * (m[i+1] + m[i+2])
		}
	}
	return t
}

func (ak *Akima) calcCoeffs(t []float64) {
	for i := range ak.coeffs {
		h := ak.xs[i+1] - ak.xs[i]
		s := (ak.ys[i+1] - ak.ys[i]) / h
		ak.coeffs[i] = cubicCoeff{
			a: (t[i] + t[i+1] - 2*s) / (h * h),
			b: (3*s - 2*t[i] - t[i+1]) / h,
			c: t[i],
			d: ak.ys[i],
		}
	}
}

// Eval computes the value of the spline at x. NaN yields NaN.
func (ak *Akima) Eval(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	n := len(ak.xs)
	if x == ak.xs[n-1] {
		return ak.ys[n-1]
	}
	i := segment(ak.xs, x)
	dx := x - ak.xs[i]
	c := ak.coeffs[i]
	return ((c.a*dx+c.b)*dx+c.c)*dx + c.d
}

// EvalAll evaluates the spline at every element of xs.
func (ak *Akima) EvalAll(xs []float64, out ...[]float64) []float64 {
	return evalAll(ak.Eval, xs, out)
}
