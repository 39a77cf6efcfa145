package spectrum

import "errors"

var (
	// ErrMalformedSpectrum indicates a row that is not a finite, non-negative
	// (energy, fluence) pair.
	ErrMalformedSpectrum = errors.New("spectrum: malformed row")

	// ErrEmptySpectrum indicates a spectrum with no points, before or after windowing.
	ErrEmptySpectrum = errors.New("spectrum: no points")

	// ErrUnknownColumn indicates that a selected column is not in the header.
	ErrUnknownColumn = errors.New("spectrum: unknown column")

	// ErrUnsorted indicates energies that decrease somewhere.
	ErrUnsorted = errors.New("spectrum: energies not increasing")

	// ErrZeroFluence indicates a spectrum whose total fluence is zero, so its
	// mean energy is undefined.
	ErrZeroFluence = errors.New("spectrum: total fluence is zero")
)
