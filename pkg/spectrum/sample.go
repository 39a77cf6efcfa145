// Package spectrum holds discretized photon fluence spectra φ(E) as measured
// by spectrometry or produced by a spectrum generator.
//
// A Sample is consumed on its native energy grid. No interpolation is done on
// the spectrum itself; windowing produces a new, smaller Sample.
package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ja7ad/beamquality/pkg/util"
)

// Sample is an immutable fluence spectrum with energies in keV in non-decreasing order.
type Sample struct {
	energies []float64
	fluences []float64
}

// Window is the open interval (Min, Max) in keV. Both bounds are exclusive.
type Window struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether Min < e < Max.
func (w Window) Contains(e float64) bool { return e > w.Min && e < w.Max }

func (w Window) String() string { return fmt.Sprintf("(%g, %g) keV", w.Min, w.Max) }

// New validates and copies energies and fluences into a Sample.
func New(energies, fluences []float64) (Sample, error) {
	if len(energies) != len(fluences) {
		return Sample{}, fmt.Errorf("%w: %d energies, %d fluences", ErrMalformedSpectrum, len(energies), len(fluences))
	}
	if len(energies) == 0 {
		return Sample{}, ErrEmptySpectrum
	}
	for i := range energies {
		e, f := energies[i], fluences[i]
		if !util.Finite(e) || e < 0 || !util.Finite(f) || f < 0 {
			return Sample{}, fmt.Errorf("%w: point %d (%g, %g)", ErrMalformedSpectrum, i, e, f)
		}
		if i > 0 && e < energies[i-1] {
			return Sample{}, fmt.Errorf("%w: point %d %g keV after %g keV", ErrUnsorted, i, e, energies[i-1])
		}
	}
	return Sample{energies: util.Copy(energies), fluences: util.Copy(fluences)}, nil
}

// Len returns the number of points.
func (s Sample) Len() int { return len(s.energies) }

// Energies returns a copy of the energies in keV.
func (s Sample) Energies() []float64 { return util.Copy(s.energies) }

// Fluences returns a copy of the fluences.
func (s Sample) Fluences() []float64 { return util.Copy(s.fluences) }

// Point returns the i-th (energy, fluence) pair.
func (s Sample) Point(i int) (energy, fluence float64) { return s.energies[i], s.fluences[i] }

// Filter returns the points strictly inside w. The receiver is not modified.
func (s Sample) Filter(w Window) (Sample, error) {
	out := Sample{}
	for i, e := range s.energies {
		if w.Contains(e) {
			out.energies = append(out.energies, e)
			out.fluences = append(out.fluences, s.fluences[i])
		}
	}
	if out.Len() == 0 {
		return Sample{}, fmt.Errorf("%w: window %s", ErrEmptySpectrum, w)
	}
	return out, nil
}

// Windowed applies w when it is non-nil and returns s unchanged otherwise.
func (s Sample) Windowed(w *Window) (Sample, error) {
	if w == nil {
		return s, nil
	}
	return s.Filter(*w)
}

// MeanEnergy returns the fluence-weighted mean energy Σφᵢ·Eᵢ / Σφᵢ in keV.
func (s Sample) MeanEnergy() (float64, error) {
	if s.Len() == 0 {
		return math.NaN(), ErrEmptySpectrum
	}
	mean := stat.Mean(s.energies, s.fluences)
	if !util.Finite(mean) {
		return math.NaN(), ErrZeroFluence
	}
	return mean, nil
}
