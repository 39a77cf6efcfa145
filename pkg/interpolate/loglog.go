package interpolate

import (
	"fmt"
	"math"

	"github.com/ja7ad/beamquality/pkg/coefficient"
)

// LogLog interpolates a coefficient table with an Akima spline on
// (ln E, ln value). Queries outside the tabulated energies are extrapolated
// with the boundary piece in log-log space; use Check to find out whether a
// set of energies needs that.
type LogLog struct {
	name   string
	lo, hi float64
	spline *Akima
}

// NewLogLog builds the interpolator for t.
func NewLogLog(t *coefficient.Table) (*LogLog, error) {
	es, vs := t.Energies(), t.Values()
	for i := range es {
		es[i] = math.Log(es[i])
		vs[i] = math.Log(vs[i])
	}
	sp, err := NewAkima(es, vs)
	if err != nil {
		return nil, fmt.Errorf("interpolate: table %q: %w", t.Name(), err)
	}
	lo, hi := t.Domain()
	return &LogLog{name: t.Name(), lo: lo, hi: hi, spline: sp}, nil
}

// Name returns the name of the underlying table.
func (l *LogLog) Name() string { return l.name }

// Domain returns the tabulated energy range in keV.
func (l *LogLog) Domain() (lo, hi float64) { return l.lo, l.hi }

// Eval returns the coefficient at energy (keV). Energies that are not
// positive have no logarithm and yield NaN.
func (l *LogLog) Eval(energy float64) float64 {
	if !(energy > 0) {
		return math.NaN()
	}
	return math.Exp(l.spline.Eval(math.Log(energy)))
}

// EvalAll evaluates the coefficient at every energy.
func (l *LogLog) EvalAll(energies []float64, out ...[]float64) []float64 {
	return evalAll(l.Eval, energies, out)
}

// Check counts the energies that fall outside the table and returns nil
// when all of them are inside.
func (l *LogLog) Check(energies []float64) *DomainWarning {
	lo, hi := l.Domain()
	w := DomainWarning{Table: l.name, Min: lo, Max: hi}
	for _, e := range energies {
		switch {
		case e < lo:
			w.Below++
		case e > hi:
			w.Above++
		}
	}
	if w.Below == 0 && w.Above == 0 {
		return nil
	}
	return &w
}

// DomainWarning records that some query energies required extrapolation.
// It is informational; results computed from extrapolated values are kept.
type DomainWarning struct {
	Table    string
	Min, Max float64
	Below    int
	Above    int
}

func (w DomainWarning) String() string {
	return fmt.Sprintf("table %q [%g, %g] keV: %d energies below, %d above",
		w.Table, w.Min, w.Max, w.Below, w.Above)
}
