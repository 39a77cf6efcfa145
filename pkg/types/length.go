package types

import "fmt"

// Length is a thickness in centimetres.
type Length float64

// Humanized returns a human-readable string with automatic unit (µm, mm, cm, m).
func (l Length) Humanized() string {
	v := float64(l)
	a := v
	if a < 0 {
		a = -a
	}
	switch {
	case a == 0:
		return "0 mm"
	case a >= 100:
		return fmt.Sprintf("%.3f m", v/100)
	case a >= 1:
		return fmt.Sprintf("%.3f cm", l.CM())
	case a >= 0.01:
		return fmt.Sprintf("%.4f mm", l.MM())
	default:
		return fmt.Sprintf("%.2f µm", l.UM())
	}
}

// CM returns the length in centimetres.
func (l Length) CM() float64 { return float64(l) }

// MM returns the length in millimetres.
func (l Length) MM() float64 { return float64(l) * 10 }

// UM returns the length in micrometres.
func (l Length) UM() float64 { return float64(l) * 1e4 }
