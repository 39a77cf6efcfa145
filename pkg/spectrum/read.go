package spectrum

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Columns selects the energy and fluence columns of a CSV spectrum by header
// name, e.g. "Energy[keV]" and "Fluence_rate [cm^-2s^-1]". Empty names pick
// the first and second column.
type Columns struct {
	Energy  string `yaml:"energy" json:"energy"`
	Fluence string `yaml:"fluence" json:"fluence"`
}

func (c Columns) indices(header []string) (int, int, error) {
	find := func(name string, def int) (int, error) {
		if name == "" {
			if def >= len(header) {
				return 0, fmt.Errorf("%w: header has %d columns", ErrUnknownColumn, len(header))
			}
			return def, nil
		}
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: %q not in %q", ErrUnknownColumn, name, header)
	}
	e, err := find(c.Energy, 0)
	if err != nil {
		return 0, 0, err
	}
	f, err := find(c.Fluence, 1)
	if err != nil {
		return 0, 0, err
	}
	return e, f, nil
}

// FromRecords builds a Sample from a header row and data records.
func FromRecords(header []string, records [][]string, cols Columns) (Sample, error) {
	ei, fi, err := cols.indices(header)
	if err != nil {
		return Sample{}, err
	}
	energies := make([]float64, 0, len(records))
	fluences := make([]float64, 0, len(records))
	for n, rec := range records {
		if ei >= len(rec) || fi >= len(rec) {
			return Sample{}, fmt.Errorf("%w: record %d has %d fields", ErrMalformedSpectrum, n+1, len(rec))
		}
		e, err := strconv.ParseFloat(strings.TrimSpace(rec[ei]), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: record %d energy: %v", ErrMalformedSpectrum, n+1, err)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(rec[fi]), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: record %d fluence: %v", ErrMalformedSpectrum, n+1, err)
		}
		energies = append(energies, e)
		fluences = append(fluences, f)
	}
	return New(energies, fluences)
}

// ReadCSV reads a comma-separated spectrum whose first row is a header.
func ReadCSV(r io.Reader, cols Columns) (Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Sample{}, fmt.Errorf("spectrum: read csv: %w", err)
	}
	if len(rows) == 0 {
		return Sample{}, ErrEmptySpectrum
	}
	return FromRecords(rows[0], rows[1:], cols)
}

// ReadText reads a headerless spectrum of two whitespace-separated columns,
// energy then fluence. Blank lines and lines starting with '#' are ignored.
func ReadText(r io.Reader) (Sample, error) {
	var energies, fluences []float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		row := strings.TrimSpace(sc.Text())
		if row == "" || strings.HasPrefix(row, "#") {
			continue
		}
		fields := strings.Fields(row)
		if len(fields) < 2 {
			return Sample{}, fmt.Errorf("%w: line %d has %d fields", ErrMalformedSpectrum, line, len(fields))
		}
		e, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: line %d: %v", ErrMalformedSpectrum, line, err)
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: line %d: %v", ErrMalformedSpectrum, line, err)
		}
		energies = append(energies, e)
		fluences = append(fluences, f)
	}
	if err := sc.Err(); err != nil {
		return Sample{}, fmt.Errorf("spectrum: read text: %w", err)
	}
	return New(energies, fluences)
}

// ReadFile reads path as CSV when it has a .csv extension and as
// whitespace-delimited text otherwise. cols only applies to CSV.
func ReadFile(path string, cols Columns) (Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sample{}, fmt.Errorf("spectrum: %w", err)
	}
	defer f.Close()

	var s Sample
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		s, err = ReadCSV(f, cols)
	} else {
		s, err = ReadText(f)
	}
	if err != nil {
		return Sample{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
