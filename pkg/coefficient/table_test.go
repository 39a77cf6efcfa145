package coefficient

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNew_SortsAndDeduplicates(t *testing.T) {
	pts := []Point{{30, 0.3}, {10, 1.0}, {20, 0.5}, {20, 0.7}}
	tab, err := New(Source{Name: "air"}, pts, quiet())
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 20, 30}, tab.Energies())
	assert.Equal(t, []float64{1.0, 0.5, 0.3}, tab.Values(), "first occurrence of a duplicate wins")
	assert.Equal(t, 1, tab.Skipped())

	lo, hi := tab.Domain()
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 30.0, hi)
}

func TestNew_ConvertsMeV(t *testing.T) {
	tab, err := New(Source{Name: "Al", EnergyUnit: MeV}, []Point{{0.001, 1185}, {0.01, 26.2}}, quiet())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 10}, tab.Energies(), 1e-12)
	assert.Equal(t, Mass, tab.Unit())
}

func TestNew_RejectsNonPositive(t *testing.T) {
	pts := []Point{{10, 1}, {0, 1}, {20, -1}, {30, math.NaN()}, {math.Inf(1), 2}}
	_, err := New(Source{Name: "bad"}, pts, quiet())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestNew_EnergiesIsACopy(t *testing.T) {
	tab, err := New(Source{}, []Point{{10, 1}, {100, 0.1}}, quiet())
	require.NoError(t, err)
	e := tab.Energies()
	e[0] = 999
	assert.Equal(t, 10.0, tab.Point(0).Energy)
}

func TestParse_SkipsMalformedRowsWithDiagnostics(t *testing.T) {
	const src = `Energy (keV)	μtr/ρ (cm2/g)
# comment
10	4.742
15,1.334

20 0.5389
oops 1.0
30 -2
40 0.0683 extra
`
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	tab, err := Parse(strings.NewReader(src), Source{Name: "mutr"}, logger)
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 15, 20, 40}, tab.Energies())
	assert.Equal(t, []float64{4.742, 1.334, 0.5389, 0.0683}, tab.Values())
	assert.Equal(t, 4, tab.Skipped(), "header, comment, non-numeric and negative rows")
	assert.Contains(t, logs.String(), "skipping coefficient row")
	assert.Contains(t, logs.String(), "line=7")
}

func TestParse_SelectsColumns(t *testing.T) {
	// NIST XCOM layout: energy (MeV), μ/ρ, μen/ρ
	const src = `1.00000E-02 2.623E+01 2.543E+01
1.50000E-02 7.955E+00 7.487E+00
2.00000E-02 3.441E+00 3.094E+00
`
	tab, err := Parse(strings.NewReader(src),
		Source{Name: "Al en", EnergyUnit: MeV, EnergyColumn: 0, ValueColumn: 2}, quiet())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 15, 20}, tab.Energies(), 1e-9)
	assert.InDeltaSlice(t, []float64{25.43, 7.487, 3.094}, tab.Values(), 1e-12)
}

func TestParse_RejectsCoincidingColumns(t *testing.T) {
	const src = "10 1 2\n20 0.5 1\n"
	for _, s := range []Source{
		{Name: "same", EnergyColumn: 2, ValueColumn: 2},
		{Name: "negative", EnergyColumn: -1, ValueColumn: 1},
	} {
		_, err := Parse(strings.NewReader(src), s, quiet())
		assert.ErrorIs(t, err, ErrInvalidColumns, s.Name)
	}

	// the zero pair reads columns 0 and 1
	tab, err := Parse(strings.NewReader(src), Source{Name: "default"}, quiet())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5}, tab.Values())
}

func TestParse_TooFewRows(t *testing.T) {
	_, err := Parse(strings.NewReader("header\n10 1\n"), Source{Name: "one"}, quiet())
	assert.ErrorIs(t, err, ErrMalformedTable)

	_, err = Parse(strings.NewReader(""), Source{Name: "empty"}, quiet())
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muCu.txt")
	require.NoError(t, os.WriteFile(path, []byte("Energy (MeV)\tμ/ρ (cm2/g)\n0.01\t215.9\n0.02\t33.79\n"), 0o644))

	tab, err := ReadFile(path, Source{EnergyUnit: MeV}, quiet())
	require.NoError(t, err)
	assert.Equal(t, path, tab.Name())
	assert.Equal(t, 2, tab.Len())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"), Source{}, quiet())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseUnits(t *testing.T) {
	u, err := ParseEnergyUnit("MeV")
	require.NoError(t, err)
	assert.Equal(t, MeV, u)
	u, err = ParseEnergyUnit("")
	require.NoError(t, err)
	assert.Equal(t, KeV, u)
	_, err = ParseEnergyUnit("eV")
	assert.ErrorIs(t, err, ErrUnknownUnit)

	c, err := ParseCoefficientUnit("cm^-1")
	require.NoError(t, err)
	assert.Equal(t, Linear, c)
	c, err = ParseCoefficientUnit("cm2/g")
	require.NoError(t, err)
	assert.Equal(t, Mass, c)
	_, err = ParseCoefficientUnit("barn/atom")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}
