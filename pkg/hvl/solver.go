// Package hvl finds half-value layers: the absorber thickness at which a
// beam's kerma transmission falls to a target fraction.
//
// The search is a bisection with an adaptive step. Starting from a seed
// thickness t with step δ = seed, every iteration halves δ, evaluates the
// transmission at t, stops when it is within Tolerance of the target, and
// otherwise moves t by δ towards the root. This walk reaches any root in
// (0, 2·seed) down to StepFloor.
//
// Every evaluation also narrows a bracket [lo, hi] with T(lo) > target >
// T(hi). When the walk ends without meeting the tolerance (the root lies
// beyond 2·seed, or the tolerance window is narrower than StepFloor for a
// thin, strongly attenuating layer) the bracket is widened by doubling up
// to MaxThickness if needed and then bisected until the tolerance is met.
// The search fails with a *NonConvergenceError when no bracket exists
// within MaxThickness or the bracket collapses to float resolution first.
//
// Transmission must be decreasing in thickness (all attenuation
// coefficients > 0). Thicknesses are in cm.
package hvl

import (
	"fmt"
	"math"

	"github.com/ja7ad/beamquality/pkg/types"
	"github.com/ja7ad/beamquality/pkg/util"
)

const (
	// FirstTarget is the transmission that defines the first HVL.
	FirstTarget = 0.5
	// SecondTarget is the cumulative transmission, relative to the
	// unattenuated beam, that defines the second HVL.
	SecondTarget = 0.25
)

// Transmitter is a kerma transmission curve.
type Transmitter interface {
	// Transmission returns the transmission through t cm.
	Transmission(t float64) float64
	// TransmissionFrom returns the transmission through base+extra cm,
	// relative to the unattenuated beam.
	TransmissionFrom(base, extra float64) float64
}

// Func adapts a transmission function of thickness to a Transmitter.
type Func func(t float64) float64

func (f Func) Transmission(t float64) float64 { return f(t) }

func (f Func) TransmissionFrom(base, extra float64) float64 { return f(base + extra) }

// Solver holds the search parameters. Fields <= 0 take the defaults.
type Solver struct {
	Tolerance    float64 `yaml:"tolerance" json:"tolerance"`
	StepFloor    float64 `yaml:"step_floor" json:"step_floor"`
	FirstSeed    float64 `yaml:"first_seed" json:"first_seed"`
	SecondSeed   float64 `yaml:"second_seed" json:"second_seed"`
	MaxThickness float64 `yaml:"max_thickness" json:"max_thickness"`
}

// DefaultSolver returns the reference search parameters.
func DefaultSolver() Solver {
	return Solver{
		Tolerance:    5e-7, // on transmission
		StepFloor:    1e-8, // cm
		FirstSeed:    1,    // cm
		SecondSeed:   2,    // cm
		MaxThickness: 1000, // cm
	}
}

func (s Solver) withDefaults() Solver {
	def := DefaultSolver()
	if s.Tolerance > 0 {
		def.Tolerance = s.Tolerance
	}
	if s.StepFloor > 0 {
		def.StepFloor = s.StepFloor
	}
	if s.FirstSeed > 0 {
		def.FirstSeed = s.FirstSeed
	}
	if s.SecondSeed > 0 {
		def.SecondSeed = s.SecondSeed
	}
	if s.MaxThickness > 0 {
		def.MaxThickness = s.MaxThickness
	}
	return def
}

// bisection steps after the adaptive walk; the bracket collapses to float
// resolution well before this
const _maxRefine = 200

// Layer is one solved half-value layer.
type Layer struct {
	Thickness  float64 `json:"thickness_cm"`
	Residual   float64 `json:"residual"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
}

// MM returns the thickness in millimetres.
func (l Layer) MM() float64 { return types.Length(l.Thickness).MM() }

// Result holds the first and second HVL. Second is the extra thickness on
// top of First.
type Result struct {
	First  Layer `json:"hvl1"`
	Second Layer `json:"hvl2"`
}

// SolveFirst finds t with Transmission(t) = target.
func (s Solver) SolveFirst(tr Transmitter, target float64) (Layer, error) {
	s = s.withDefaults()
	return s.search(tr.Transmission, s.FirstSeed, target, 0)
}

// SolveSecond finds the extra thickness x with TransmissionFrom(hvl1, x) = target.
// hvl1 enters the attenuation exponent; target stays relative to the
// unattenuated beam.
func (s Solver) SolveSecond(tr Transmitter, hvl1, target float64) (Layer, error) {
	if !util.Finite(hvl1) || hvl1 < 0 {
		return Layer{}, fmt.Errorf("%w: %g cm", ErrInvalidOffset, hvl1)
	}
	s = s.withDefaults()
	f := func(x float64) float64 { return tr.TransmissionFrom(hvl1, x) }
	return s.search(f, s.SecondSeed, target, hvl1)
}

// Solve runs SolveFirst and then SolveSecond behind the first layer.
func (s Solver) Solve(tr Transmitter, firstTarget, secondTarget float64) (Result, error) {
	first, err := s.SolveFirst(tr, firstTarget)
	if err != nil {
		return Result{}, fmt.Errorf("first hvl: %w", err)
	}
	second, err := s.SolveSecond(tr, first.Thickness, secondTarget)
	if err != nil {
		return Result{First: first}, fmt.Errorf("second hvl: %w", err)
	}
	return Result{First: first, Second: second}, nil
}

func (s Solver) search(f func(float64) float64, seed, target, offset float64) (Layer, error) {
	if !(target > 0 && target < 1) {
		return Layer{}, fmt.Errorf("%w: %g", ErrInvalidTarget, target)
	}

	// T(0) = 1 > target
	lo, hi := 0.0, math.Inf(1)
	last := Layer{Thickness: seed, Residual: math.NaN()}
	eval := func(t float64) bool {
		last.Iterations++
		last.Thickness = t
		trans := f(t)
		last.Residual = trans - target
		if math.Abs(last.Residual) < s.Tolerance {
			last.Converged = true
			return true
		}
		if trans > target {
			lo = math.Max(lo, t)
		} else {
			hi = math.Min(hi, t)
		}
		return false
	}

	t, step := seed, seed
	for step > s.StepFloor {
		step *= 0.5
		if eval(t) {
			return last, nil
		}
		if last.Residual > 0 {
			t += step
		} else {
			t -= step
		}
	}

	for w := 2 * seed; math.IsInf(hi, 1) && lo < s.MaxThickness; w *= 2 {
		if eval(math.Min(w, s.MaxThickness)) {
			return last, nil
		}
	}

	if !math.IsInf(hi, 1) {
		for range _maxRefine {
			mid := 0.5 * (lo + hi)
			if mid <= lo || mid >= hi {
				break
			}
			if eval(mid) {
				return last, nil
			}
		}
	}

	return last, &NonConvergenceError{
		Target:     target,
		Offset:     offset,
		Thickness:  last.Thickness,
		Residual:   last.Residual,
		Iterations: last.Iterations,
	}
}
