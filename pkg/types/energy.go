package types

import "fmt"

// Energy is a photon energy in keV.
type Energy float64

// Humanized returns the energy as keV below 1 MeV and as MeV above.
func (e Energy) Humanized() string {
	if e >= 1000 || e <= -1000 {
		return fmt.Sprintf("%.3f MeV", e.MeV())
	}
	return fmt.Sprintf("%.2f keV", e.KeV())
}

// KeV returns the energy in keV.
func (e Energy) KeV() float64 { return float64(e) }

// MeV returns the energy in MeV.
func (e Energy) MeV() float64 { return float64(e) / 1000 }

// FromMeV converts MeV to an Energy.
func FromMeV(mev float64) Energy { return Energy(mev * 1000) }
