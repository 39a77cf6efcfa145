package kerma

import (
	"fmt"

	"github.com/ja7ad/beamquality/pkg/coefficient"
	"github.com/ja7ad/beamquality/pkg/interpolate"
	"github.com/ja7ad/beamquality/pkg/util"
)

// Material groups what is needed to weight and attenuate a spectrum:
//   - EnergyTransfer: μtr/ρ of the kerma medium (air), cm²/g
//   - Attenuation: μ/ρ (cm²/g) or μ (cm⁻¹) of the absorber
//   - Density: absorber density, g/cm³
type Material struct {
	name           string
	density        float64
	linear         bool
	energyTransfer *interpolate.LogLog
	attenuation    *interpolate.LogLog
}

// NewMaterial builds a Material from the two coefficient tables. The
// attenuation table's unit decides whether density is applied: mass
// coefficients are multiplied by density, linear ones are used as they are.
func NewMaterial(name string, density float64, energyTransfer, attenuation *coefficient.Table) (Material, error) {
	if !util.Finite(density) || density <= 0 {
		return Material{}, fmt.Errorf("%w: %s: %g g/cm3", ErrInvalidDensity, name, density)
	}
	if energyTransfer == nil || attenuation == nil {
		return Material{}, fmt.Errorf("%w: %s", ErrMissingInterpolator, name)
	}
	tr, err := interpolate.NewLogLog(energyTransfer)
	if err != nil {
		return Material{}, fmt.Errorf("kerma: %w", err)
	}
	at, err := interpolate.NewLogLog(attenuation)
	if err != nil {
		return Material{}, fmt.Errorf("kerma: %w", err)
	}
	return Material{
		name:           name,
		density:        density,
		linear:         attenuation.Unit() == coefficient.Linear,
		energyTransfer: tr,
		attenuation:    at,
	}, nil
}

// Name returns the absorber name.
func (m Material) Name() string { return m.name }

// Density returns the absorber density in g/cm³.
func (m Material) Density() float64 { return m.density }

// EnergyTransfer returns μtr/ρ at energy (keV).
func (m Material) EnergyTransfer(energy float64) float64 {
	return m.energyTransfer.Eval(energy)
}

// Mu returns the linear attenuation coefficient in cm⁻¹ at energy (keV).
func (m Material) Mu(energy float64) float64 {
	v := m.attenuation.Eval(energy)
	if m.linear {
		return v
	}
	return v * m.density
}

// Check reports the energies outside either table's domain.
func (m Material) Check(energies []float64) []interpolate.DomainWarning {
	var out []interpolate.DomainWarning
	for _, ll := range []*interpolate.LogLog{m.energyTransfer, m.attenuation} {
		if w := ll.Check(energies); w != nil {
			out = append(out, *w)
		}
	}
	return out
}
