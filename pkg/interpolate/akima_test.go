package interpolate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAkima_ReproducesKnots(t *testing.T) {
	xs := []float64{0, 1, 2.5, 3, 4.2, 6}
	ys := []float64{1, 3, 2, 2.2, 5, 4}
	ak, err := NewAkima(xs, ys)
	require.NoError(t, err)
	for i := range xs {
		assert.Equal(t, ys[i], ak.Eval(xs[i]), "knot %d", i)
	}
}

func TestAkima_TwoPointsIsLinear(t *testing.T) {
	ak, err := NewAkima([]float64{1, 3}, []float64{2, 6})
	require.NoError(t, err)
	for _, x := range []float64{-2, 0, 1, 1.5, 2, 3, 10} {
		assert.InDelta(t, 2*x, ak.Eval(x), 1e-12, "x=%g", x)
	}
}

func TestAkima_LinearDataExtrapolatesLinearly(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2*x + 1
	}
	ak, err := NewAkima(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, -9.0, ak.Eval(-5), 1e-12)
	assert.InDelta(t, 21.0, ak.Eval(10), 1e-12)
	assert.InDelta(t, 6.0, ak.Eval(2.5), 1e-12)
}

func TestAkima_NoOvershootOnStep(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := []float64{0, 0, 0, 1, 1, 1}
	ak, err := NewAkima(xs, ys)
	require.NoError(t, err)
	for x := 0.0; x <= 5; x += 0.01 {
		v := ak.Eval(x)
		require.GreaterOrEqual(t, v, -1e-12, "x=%g", x)
		require.LessOrEqual(t, v, 1+1e-12, "x=%g", x)
	}
	// flat pieces stay flat
	assert.InDelta(t, 0.0, ak.Eval(1.5), 1e-12)
	assert.InDelta(t, 1.0, ak.Eval(3.5), 1e-12)
}

func TestAkima_ExtrapolationContinuesBoundaryPiece(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{0, 1, 4, 9}
	ak, err := NewAkima(xs, ys)
	require.NoError(t, err)

	// not clamped
	assert.NotEqual(t, ys[0], ak.Eval(-0.5))
	assert.NotEqual(t, ys[3], ak.Eval(3.5))

	// smooth across both ends: one-sided slopes agree at the boundary knots
	const h = 1e-6
	for _, x := range []float64{0, 3} {
		left := (ak.Eval(x) - ak.Eval(x-h)) / h
		right := (ak.Eval(x+h) - ak.Eval(x)) / h
		assert.InDelta(t, left, right, 1e-4, "x=%g", x)
	}
}

func TestAkima_Errors(t *testing.T) {
	_, err := NewAkima([]float64{1}, []float64{1})
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, err = NewAkima([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewAkima([]float64{1, 1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrUnsorted)

	_, err = NewAkima([]float64{1, 2}, []float64{1, math.Inf(1)})
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestAkima_EvalAllUsesOutputBuffer(t *testing.T) {
	ak, err := NewAkima([]float64{0, 1}, []float64{0, 1})
	require.NoError(t, err)
	buf := make([]float64, 3)
	got := ak.EvalAll([]float64{0, 0.5, 1}, buf)
	assert.Equal(t, []float64{0, 0.5, 1}, buf)
	assert.Equal(t, buf, got)
	assert.True(t, math.IsNaN(ak.Eval(math.NaN())))
}
