package coefficient

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/ja7ad/beamquality/pkg/util"
)

// Point is one (energy, coefficient) pair.
type Point struct {
	Energy float64
	Value  float64
}

// Source describes where a table comes from and how its columns are read.
//   - EnergyColumn/ValueColumn: zero-based token indices within a row
//     (NIST files list several coefficients next to each other). The zero
//     pair reads columns 0 and 1; any other pair must differ.
type Source struct {
	Name         string
	EnergyUnit   EnergyUnit
	Unit         CoefficientUnit
	EnergyColumn int
	ValueColumn  int
}

// columns returns the configured column indices, defaulting to 0 and 1.
func (s Source) columns() (int, int, error) {
	e, v := s.EnergyColumn, s.ValueColumn
	if e == 0 && v == 0 {
		return 0, 1, nil
	}
	if e < 0 || v < 0 || e == v {
		return 0, 0, fmt.Errorf("%w: energy %d, value %d", ErrInvalidColumns, e, v)
	}
	return e, v, nil
}

// Table is an immutable energy-vs-coefficient table with energies in keV,
// strictly increasing, and every value > 0.
type Table struct {
	name     string
	unit     CoefficientUnit
	energies []float64
	values   []float64
	skipped  int
}

// New builds a table from raw points. Points that are not finite and positive
// are dropped, energies are converted to keV, the result is sorted and
// deduplicated by energy (first occurrence wins).
func New(src Source, points []Point, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	valid := make([]Point, 0, len(points))
	skipped := 0
	for i, p := range points {
		if !positive(p.Energy) || !positive(p.Value) {
			logger.Warn("skipping coefficient point", "table", src.Name, "index", i,
				"energy", p.Energy, "value", p.Value)
			skipped++
			continue
		}
		valid = append(valid, Point{Energy: src.EnergyUnit.toKeV(p.Energy), Value: p.Value})
	}

	slices.SortStableFunc(valid, func(a, b Point) int {
		switch {
		case a.Energy < b.Energy:
			return -1
		case a.Energy > b.Energy:
			return 1
		default:
			return 0
		}
	})

	t := &Table{
		name:     src.Name,
		unit:     src.Unit,
		energies: make([]float64, 0, len(valid)),
		values:   make([]float64, 0, len(valid)),
	}
	for _, p := range valid {
		if n := len(t.energies); n > 0 && t.energies[n-1] == p.Energy {
			logger.Warn("dropping duplicate energy", "table", src.Name, "energy_kev", p.Energy)
			skipped++
			continue
		}
		t.energies = append(t.energies, p.Energy)
		t.values = append(t.values, p.Value)
	}
	t.skipped = skipped

	if len(t.energies) < 2 {
		return nil, fmt.Errorf("%w: %q has %d valid rows, need at least 2",
			ErrMalformedTable, src.Name, len(t.energies))
	}
	return t, nil
}

func positive(x float64) bool { return x > 0 && !math.IsInf(x, 1) }

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Unit returns the unit of the coefficient column.
func (t *Table) Unit() CoefficientUnit { return t.unit }

// Len returns the number of points.
func (t *Table) Len() int { return len(t.energies) }

// Energies returns a copy of the energies in keV.
func (t *Table) Energies() []float64 { return util.Copy(t.energies) }

// Values returns a copy of the coefficients.
func (t *Table) Values() []float64 { return util.Copy(t.values) }

// Point returns the i-th point.
func (t *Table) Point(i int) Point { return Point{Energy: t.energies[i], Value: t.values[i]} }

// Domain returns the lowest and highest tabulated energy in keV.
func (t *Table) Domain() (lo, hi float64) {
	return t.energies[0], t.energies[len(t.energies)-1]
}

// Skipped returns how many input rows were rejected while building the table.
func (t *Table) Skipped() int { return t.skipped }
