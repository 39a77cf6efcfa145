// Package kerma computes the air-kerma transmission of a fluence spectrum
// through an absorber of given thickness:
//
//	wᵢ      = Eᵢ · φᵢ · (μtr/ρ)(Eᵢ)
//	K0      = Σ wᵢ
//	T(t)    = Σ wᵢ · exp(−μ(Eᵢ)·t) / K0
//
// with μtr/ρ and μ interpolated log-log from the full coefficient tables onto
// the spectrum's own (possibly windowed) energies.
package kerma

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ja7ad/beamquality/pkg/interpolate"
	"github.com/ja7ad/beamquality/pkg/spectrum"
	"github.com/ja7ad/beamquality/pkg/util"
)

// Integral is the precomputed kerma weighting of one spectrum for one
// material. It is immutable and safe for concurrent use.
type Integral struct {
	energies []float64
	weights  []float64
	mu       []float64
	k0       float64
	warnings []interpolate.DomainWarning
}

// New evaluates the material's coefficients at every spectrum energy.
// Points with zero energy or zero fluence carry no kerma and are left out.
// A nil logger means slog.Default().
func New(s spectrum.Sample, m Material, logger *slog.Logger) (*Integral, error) {
	if logger == nil {
		logger = slog.Default()
	}
	k := &Integral{}
	for i := 0; i < s.Len(); i++ {
		e, f := s.Point(i)
		if e == 0 || f == 0 {
			continue
		}
		tr := m.EnergyTransfer(e)
		mu := m.Mu(e)
		if !util.Finite(tr) || tr <= 0 || !util.Finite(mu) || mu <= 0 {
			return nil, fmt.Errorf("%w: %s at %g keV: μtr/ρ=%g μ=%g", ErrInvalidCoefficient, m.Name(), e, tr, mu)
		}
		k.energies = append(k.energies, e)
		k.weights = append(k.weights, e*f*tr)
		k.mu = append(k.mu, mu)
	}

	k.k0 = floats.Sum(k.weights)
	if !util.Finite(k.k0) || k.k0 <= 0 {
		return nil, fmt.Errorf("%w: K0 = %g over %d points", ErrDegenerateSpectrum, k.k0, len(k.weights))
	}

	k.warnings = m.Check(k.energies)
	for _, w := range k.warnings {
		logger.Warn("coefficient extrapolated", "table", w.Table, "below", w.Below, "above", w.Above,
			"min_kev", w.Min, "max_kev", w.Max)
	}
	return k, nil
}

// K0 returns the unattenuated kerma-weighted sum.
func (k *Integral) K0() float64 { return k.k0 }

// Len returns the number of spectrum points that carry kerma.
func (k *Integral) Len() int { return len(k.weights) }

// Energies returns the energies (keV) of the points that carry kerma.
func (k *Integral) Energies() []float64 { return util.Copy(k.energies) }

// Weights returns Eᵢ·φᵢ·μtr/ρ(Eᵢ) for every point that carries kerma.
func (k *Integral) Weights() []float64 { return util.Copy(k.weights) }

// Mu returns μ(Eᵢ) in cm⁻¹ for every point that carries kerma.
func (k *Integral) Mu() []float64 { return util.Copy(k.mu) }

// Warnings returns the coefficient tables that needed extrapolation.
func (k *Integral) Warnings() []interpolate.DomainWarning {
	return append([]interpolate.DomainWarning(nil), k.warnings...)
}

// Transmission returns Katt(t)/K0 for an absorber of t cm.
func (k *Integral) Transmission(t float64) float64 {
	return k.attenuated(t) / k.k0
}

// TransmissionFrom returns the transmission through base+extra cm, still
// normalised to the unattenuated K0, so a second half-value layer is
// measured against the original beam rather than the beam behind base.
func (k *Integral) TransmissionFrom(base, extra float64) float64 {
	return k.attenuated(base+extra) / k.k0
}

func (k *Integral) attenuated(t float64) float64 {
	att := make([]float64, len(k.weights))
	for i, w := range k.weights {
		att[i] = w * math.Exp(-k.mu[i]*t)
	}
	return floats.Sum(att)
}
