package kerma

import "errors"

var (
	// ErrDegenerateSpectrum indicates that the unattenuated kerma-weighted
	// sum K0 is zero or not finite, so transmission is undefined.
	ErrDegenerateSpectrum = errors.New("kerma: degenerate spectrum")

	// ErrInvalidDensity indicates a material density that is not finite and > 0.
	ErrInvalidDensity = errors.New("kerma: invalid density")

	// ErrInvalidCoefficient indicates an interpolated coefficient that is
	// not finite and > 0 at some spectrum energy.
	ErrInvalidCoefficient = errors.New("kerma: invalid coefficient")

	// ErrMissingInterpolator indicates a Material without one of its curves.
	ErrMissingInterpolator = errors.New("kerma: missing interpolator")
)
