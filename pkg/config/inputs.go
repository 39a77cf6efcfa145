package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ja7ad/beamquality/pkg/beamquality"
	"github.com/ja7ad/beamquality/pkg/coefficient"
	"github.com/ja7ad/beamquality/pkg/compare"
	"github.com/ja7ad/beamquality/pkg/spectrum"
)

// Failure is a quality whose inputs could not be loaded.
type Failure struct {
	QualityID string
	Material  string
	Err       error
}

func (f Failure) Error() string { return fmt.Sprintf("quality %s: %v", f.QualityID, f.Err) }

func (f Failure) Unwrap() error { return f.Err }

// Inputs loads every coefficient table once and every spectrum, and returns
// one evaluation input per quality in configuration order. Tables are shared
// between inputs. A quality whose spectrum or absorber table cannot be read
// is reported as a Failure and the others are still returned. The error is
// non-nil only when a table shared by all qualities cannot be read.
func (c *Config) Inputs(logger *slog.Logger) ([]beamquality.Input, []Failure, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mutr, err := c.readTable("energy_transfer", c.EnergyTransfer, logger)
	if err != nil {
		return nil, nil, err
	}
	var hk *coefficient.Table
	if c.Conversion != nil {
		if hk, err = c.readTable("conversion", *c.Conversion, logger); err != nil {
			return nil, nil, err
		}
	}

	type loaded struct {
		table *coefficient.Table
		err   error
	}
	absorbers := make(map[string]loaded, len(c.Materials))

	var (
		inputs   []beamquality.Input
		failures []Failure
	)
	for _, q := range c.Qualities {
		m := c.Materials[q.Material]
		ab, ok := absorbers[q.Material]
		if !ok {
			ab.table, ab.err = c.readTable(q.Material, m.Attenuation, logger)
			absorbers[q.Material] = ab
		}
		if ab.err != nil {
			failures = append(failures, Failure{QualityID: q.ID, Material: q.Material, Err: ab.err})
			continue
		}

		path := c.SpectrumPath(q)
		s, err := spectrum.ReadFile(path, c.Spectra.Columns)
		if err != nil {
			failures = append(failures, Failure{QualityID: q.ID, Material: q.Material, Err: fmt.Errorf("spectrum %s: %w", path, err)})
			continue
		}
		logger.Debug("spectrum loaded", "quality", q.ID, "path", path, "points", s.Len())

		inputs = append(inputs, beamquality.Input{
			QualityID: q.ID,
			Material:  q.Material,
			Spectrum:  s,
			Tables:    beamquality.Tables{EnergyTransfer: mutr, Attenuation: ab.table, Conversion: hk},
			Density:   m.Density,
			Window:    q.Window,
		})
	}
	return inputs, failures, nil
}

func (c *Config) readTable(name string, t Table, logger *slog.Logger) (*coefficient.Table, error) {
	src, err := t.source(name)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	path := c.resolve(t.Path)
	tab, err := coefficient.ReadFile(path, src, logger)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	lo, hi := tab.Domain()
	logger.Debug("table loaded", "table", tab.Name(), "path", path, "points", tab.Len(),
		"skipped", tab.Skipped(), "min_kev", lo, "max_kev", hi)
	return tab, nil
}

// ReferenceSet maps a quality id to its reference characteristics per source.
type ReferenceSet map[string]map[string]compare.Characteristics

// For returns the references of one quality, or nil.
func (r ReferenceSet) For(qualityID string) map[string]compare.Characteristics {
	return r[qualityID]
}

// References collects the reference values of the selected qualities: the
// table files listed under references first, then the values given inline
// on each quality, which take precedence.
func (c *Config) References() (ReferenceSet, error) {
	out := make(ReferenceSet, len(c.Qualities))
	set := func(id, src string, ch compare.Characteristics) {
		if out[id] == nil {
			out[id] = map[string]compare.Characteristics{}
		}
		out[id][src] = ch
	}

	wanted := make(map[string]bool, len(c.Qualities))
	for _, q := range c.Qualities {
		wanted[q.ID] = true
	}
	for src, p := range c.References {
		tab, err := readCharacteristics(c.resolve(p))
		if err != nil {
			return nil, fmt.Errorf("reference %s: %w", src, err)
		}
		for id, ch := range tab {
			if wanted[id] {
				set(id, src, ch)
			}
		}
	}
	for _, q := range c.Qualities {
		for src, ch := range q.References {
			set(q.ID, src, ch)
		}
	}
	return out, nil
}

func readCharacteristics(path string) (map[string]compare.Characteristics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return compare.ReadCharacteristics(f)
}
