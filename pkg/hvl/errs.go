package hvl

import (
	"errors"
	"fmt"

	"github.com/ja7ad/beamquality/pkg/types"
)

var (
	// ErrNonConvergence indicates that the step shrank below the floor before
	// the transmission reached the target within tolerance.
	ErrNonConvergence = errors.New("hvl: no convergence")

	// ErrInvalidTarget indicates a target transmission outside (0, 1).
	ErrInvalidTarget = errors.New("hvl: target transmission outside (0,1)")

	// ErrInvalidOffset indicates a first-HVL thickness that is negative or not finite.
	ErrInvalidOffset = errors.New("hvl: invalid first-HVL offset")
)

// NonConvergenceError carries the state of a search that exhausted its step
// budget. The thickness is the last one evaluated and must not be used as a
// result.
type NonConvergenceError struct {
	Target     float64
	Offset     float64 // fixed thickness in front, 0 for the first HVL
	Thickness  float64
	Residual   float64
	Iterations int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("hvl: no convergence to transmission %g after %d steps (offset %s, last %s, residual %.3g)",
		e.Target, e.Iterations, types.Length(e.Offset).Humanized(), types.Length(e.Thickness).Humanized(), e.Residual)
}

func (e *NonConvergenceError) Unwrap() error { return ErrNonConvergence }
