// Package compare checks computed beam-quality characteristics against
// reference values such as the ISO 4037-1 tables or the output of a
// spectrum generator.
package compare

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedCharacteristics indicates a characteristics table that cannot be read.
var ErrMalformedCharacteristics = errors.New("compare: malformed characteristics")

// Characteristics are the published or generated values of one quality.
// Zero means "not given".
type Characteristics struct {
	MeanEnergy float64 `yaml:"mean_energy_kev" json:"mean_energy_kev"`
	HVL1       float64 `yaml:"hvl1_mm" json:"hvl1_mm"`
	HVL2       float64 `yaml:"hvl2_mm" json:"hvl2_mm"`
}

// Deviations are relative deviations in percent, NaN where the reference
// value is missing.
type Deviations struct {
	MeanEnergy float64
	HVL1       float64
	HVL2       float64
}

// Deviation returns (1 − value/reference)·100. A zero or non-finite
// reference gives NaN.
func Deviation(value, reference float64) float64 {
	if reference == 0 || math.IsNaN(reference) || math.IsInf(reference, 0) {
		return math.NaN()
	}
	return (1 - value/reference) * 100
}

// Compare computes the deviations of measured from reference.
func Compare(measured, reference Characteristics) Deviations {
	return Deviations{
		MeanEnergy: Deviation(measured.MeanEnergy, reference.MeanEnergy),
		HVL1:       Deviation(measured.HVL1, reference.HVL1),
		HVL2:       Deviation(measured.HVL2, reference.HVL2),
	}
}

// Characteristics table column headers.
const (
	ColQuality    = "Quality"
	ColMeanEnergy = "Mean energy (keV)"
	ColHVL1       = "HVL1 (mm)"
	ColHVL2       = "HVL2 (mm)"
)

// ReadCharacteristics reads a CSV table keyed by quality with the columns
// Quality, Mean energy (keV), HVL1 (mm) and HVL2 (mm). Missing value columns
// and empty cells read as zero.
func ReadCharacteristics(r io.Reader) (map[string]Characteristics, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCharacteristics, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedCharacteristics)
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.TrimSpace(h)] = i
	}
	q, ok := idx[ColQuality]
	if !ok {
		return nil, fmt.Errorf("%w: no %q column", ErrMalformedCharacteristics, ColQuality)
	}

	cell := func(row []string, line int, name string) (float64, error) {
		i, ok := idx[name]
		if !ok || i >= len(row) || strings.TrimSpace(row[i]) == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: line %d %s: %v", ErrMalformedCharacteristics, line, name, err)
		}
		return v, nil
	}

	out := make(map[string]Characteristics, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		var c Characteristics
		if c.MeanEnergy, err = cell(row, line, ColMeanEnergy); err != nil {
			return nil, err
		}
		if c.HVL1, err = cell(row, line, ColHVL1); err != nil {
			return nil, err
		}
		if c.HVL2, err = cell(row, line, ColHVL2); err != nil {
			return nil, err
		}
		out[strings.TrimSpace(row[q])] = c
	}
	return out, nil
}
