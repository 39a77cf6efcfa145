package hvl

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mono(mu float64) Func {
	return func(t float64) float64 { return math.Exp(-mu * t) }
}

// two-energy beam: weights w and linear coefficients mu
func twoLine(w1, mu1, w2, mu2 float64) Func {
	return func(t float64) float64 {
		return (w1*math.Exp(-mu1*t) + w2*math.Exp(-mu2*t)) / (w1 + w2)
	}
}

// bisect is an independent reference root finder for a decreasing f.
func bisect(f func(float64) float64, target, lo, hi float64) float64 {
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		if f(mid) > target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

var tight = Solver{Tolerance: 1e-11, StepFloor: 1e-13}

func TestSolveFirst_Monoenergetic_Default(t *testing.T) {
	l, err := DefaultSolver().SolveFirst(mono(0.1), FirstTarget)
	require.NoError(t, err)
	assert.True(t, l.Converged)
	assert.InDelta(t, math.Ln2/0.1, l.Thickness, 2e-5)
	assert.Less(t, math.Abs(l.Residual), 5e-7)
	assert.LessOrEqual(t, l.Iterations, 64)
	t.Logf("HVL1 = %.7f cm after %d steps (residual %.2e)", l.Thickness, l.Iterations, l.Residual)
}

func TestSolveFirst_Monoenergetic_Tight(t *testing.T) {
	l, err := tight.SolveFirst(mono(0.1), FirstTarget)
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2/0.1, l.Thickness, 1e-6)
}

func TestSolveSecond_ReferencedToUnattenuatedBeam(t *testing.T) {
	f := mono(0.1)
	first, err := tight.SolveFirst(f, FirstTarget)
	require.NoError(t, err)
	second, err := tight.SolveSecond(f, first.Thickness, SecondTarget)
	require.NoError(t, err)

	// monoenergetic: the second layer equals the first
	assert.InDelta(t, math.Ln2/0.1, second.Thickness, 1e-6)
	assert.InDelta(t, SecondTarget, f.TransmissionFrom(first.Thickness, second.Thickness), 1e-10)
}

func TestSolve_Polyenergetic(t *testing.T) {
	f := twoLine(3, 8.0, 1, 0.9)

	res, err := tight.Solve(f, FirstTarget, SecondTarget)
	require.NoError(t, err)

	want1 := bisect(f, 0.5, 0, 100)
	want12 := bisect(f, 0.25, 0, 100)
	assert.InDelta(t, want1, res.First.Thickness, 1e-6)
	assert.InDelta(t, want12-want1, res.Second.Thickness, 1e-6)

	// beam hardening: the second layer is thicker than the first
	assert.Greater(t, res.Second.Thickness, res.First.Thickness)
	assert.InDelta(t, 10*res.First.Thickness, res.First.MM(), 1e-12)
}

// HVLs from 0.02 mm to 6 mm of aluminium and copper, solved with
// the defaults and checked against the analytic root within the tolerance
// mapped through the slope |dT/dt| = μ/2.
func TestSolveFirst_DefaultsCoverQualityRange(t *testing.T) {
	densities := []struct {
		name string
		rho  float64 // g/cm³
	}{
		{"Al", 2.699},
		{"Cu", 8.96},
	}
	hvls := []float64{0.02, 0.03, 0.04, 0.05, 0.08, 0.1, 0.2, 0.3, 0.45, 0.5, 1, 2, 3.5, 4, 6} // mm

	s := DefaultSolver()
	for _, d := range densities {
		for _, mm := range hvls {
			t.Run(fmt.Sprintf("%s/%gmm", d.name, mm), func(t *testing.T) {
				root := mm / 10
				massMu := math.Ln2 / (root * d.rho)
				mu := massMu * d.rho

				l, err := s.SolveFirst(mono(mu), FirstTarget)
				require.NoError(t, err)
				assert.True(t, l.Converged)
				assert.Less(t, math.Abs(l.Residual), s.Tolerance)

				slope := 0.5 * mu
				assert.InDelta(t, root, l.Thickness, s.Tolerance/slope*1.01)
			})
		}
	}
}

func TestSolveFirst_ThinLayerBelowStepFloor(t *testing.T) {
	// the tolerance window, 5e-7/|dT/dt|, is narrower than the 1e-6 cm floor
	mu := math.Ln2 / 0.0005
	s := Solver{StepFloor: 1e-6}
	l, err := s.SolveFirst(mono(mu), FirstTarget)
	require.NoError(t, err)
	assert.True(t, l.Converged)
	assert.InDelta(t, 0.0005, l.Thickness, 5e-7/(0.5*mu)*1.01)
}

func TestSolve_StepExhausted(t *testing.T) {
	// root at ~6931 cm, past MaxThickness
	_, err := DefaultSolver().SolveFirst(mono(1e-4), FirstTarget)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonConvergence)

	var nc *NonConvergenceError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, FirstTarget, nc.Target)
	assert.Greater(t, nc.Iterations, 20)
	assert.Greater(t, nc.Residual, 0.0, "still too much transmission at the edge of reach")
	assert.InDelta(t, DefaultSolver().MaxThickness, nc.Thickness, 0)
}

func TestSolve_StepFunctionNeverMeetsTolerance(t *testing.T) {
	step := Func(func(t float64) float64 {
		if t < 3 {
			return 1
		}
		return 0
	})
	l, err := DefaultSolver().SolveFirst(step, FirstTarget)
	assert.ErrorIs(t, err, ErrNonConvergence)
	assert.False(t, l.Converged, "a failed search is never reported as converged")
	assert.InDelta(t, 3.0, l.Thickness, 1e-6)
}

func TestSolve_SecondFailureKeepsFirst(t *testing.T) {
	// half the kerma is in an almost unattenuated component, so T never
	// drops to 0.25 within MaxThickness
	f := twoLine(1, 1, 1, 1e-6)
	res, err := DefaultSolver().Solve(f, FirstTarget, SecondTarget)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonConvergence)
	assert.Contains(t, err.Error(), "second hvl")
	assert.False(t, res.Second.Converged)
}

func TestSolve_InvalidInputs(t *testing.T) {
	_, err := DefaultSolver().SolveFirst(mono(1), 1.5)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = DefaultSolver().SolveFirst(mono(1), 0)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = DefaultSolver().SolveSecond(mono(1), -1, SecondTarget)
	assert.ErrorIs(t, err, ErrInvalidOffset)
	_, err = DefaultSolver().SolveSecond(mono(1), math.NaN(), SecondTarget)
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestSolver_ZeroValueUsesDefaults(t *testing.T) {
	var s Solver
	assert.Equal(t, DefaultSolver(), s.withDefaults())

	custom := Solver{StepFloor: 1e-9}.withDefaults()
	assert.Equal(t, 1e-9, custom.StepFloor)
	assert.Equal(t, 5e-7, custom.Tolerance)
}

func ExampleSolver_SolveFirst() {
	// constant μ = 0.1 cm⁻¹
	l, err := DefaultSolver().SolveFirst(Func(func(t float64) float64 { return math.Exp(-0.1 * t) }), FirstTarget)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("HVL1 = %.4f cm (converged: %v)\n", l.Thickness, l.Converged)
	// Output: HVL1 = 6.9315 cm (converged: true)
}
