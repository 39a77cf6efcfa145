package coefficient

import (
	"fmt"
	"strings"

	"github.com/ja7ad/beamquality/pkg/types"
)

// EnergyUnit is the unit of the energy column of a source table.
type EnergyUnit int

const (
	KeV EnergyUnit = iota
	MeV
)

func (u EnergyUnit) String() string {
	switch u {
	case KeV:
		return "keV"
	case MeV:
		return "MeV"
	}
	return fmt.Sprintf("EnergyUnit(%d)", int(u))
}

// toKeV converts an energy given in u to keV.
func (u EnergyUnit) toKeV(e float64) float64 {
	if u == MeV {
		return types.FromMeV(e).KeV()
	}
	return types.Energy(e).KeV()
}

// ParseEnergyUnit accepts "keV" or "MeV" (case-insensitive). The empty string is keV.
func ParseEnergyUnit(s string) (EnergyUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "kev":
		return KeV, nil
	case "mev":
		return MeV, nil
	}
	return 0, fmt.Errorf("%w: energy %q", ErrUnknownUnit, s)
}

// CoefficientUnit distinguishes mass coefficients (cm²/g) from linear ones (cm⁻¹).
type CoefficientUnit int

const (
	Mass CoefficientUnit = iota
	Linear
)

func (u CoefficientUnit) String() string {
	switch u {
	case Mass:
		return "cm2/g"
	case Linear:
		return "1/cm"
	}
	return fmt.Sprintf("CoefficientUnit(%d)", int(u))
}

// ParseCoefficientUnit accepts "cm2/g" or "1/cm" and a few common spellings.
// The empty string is cm2/g.
func ParseCoefficientUnit(s string) (CoefficientUnit, error) {
	switch strings.ToLower(strings.ReplaceAll(s, " ", "")) {
	case "", "cm2/g", "cm^2/g", "cm²/g", "mass":
		return Mass, nil
	case "1/cm", "cm-1", "cm^-1", "cm⁻¹", "linear":
		return Linear, nil
	}
	return 0, fmt.Errorf("%w: coefficient %q", ErrUnknownUnit, s)
}
