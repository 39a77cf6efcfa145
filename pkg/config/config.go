// Package config reads the YAML run configuration: where the coefficient
// tables and spectra live, which absorber each radiation quality uses, and
// the reference values the results are compared against.
//
// Relative paths are resolved against the directory of the config file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ja7ad/beamquality/pkg/coefficient"
	"github.com/ja7ad/beamquality/pkg/compare"
	"github.com/ja7ad/beamquality/pkg/hvl"
	"github.com/ja7ad/beamquality/pkg/spectrum"
)

// Table locates a coefficient table file.
//   - EnergyUnit: "keV" (default) or "MeV"
//   - CoefficientUnit: "cm2/g" (default) or "1/cm"
//   - EnergyColumn/ValueColumn: zero-based, default 0 and 1; they must differ
type Table struct {
	Path            string `yaml:"path"`
	Name            string `yaml:"name"`
	EnergyUnit      string `yaml:"energy_unit"`
	CoefficientUnit string `yaml:"coefficient_unit"`
	EnergyColumn    int    `yaml:"energy_column"`
	ValueColumn     *int   `yaml:"value_column"`
}

func (t Table) valueColumn() int {
	if t.ValueColumn == nil {
		return 1
	}
	return *t.ValueColumn
}

// Material is an HVL absorber.
type Material struct {
	Density     float64 `yaml:"density"` // g/cm³
	Attenuation Table   `yaml:"attenuation"`
}

// Spectra says where spectrum files are and which CSV columns to read.
type Spectra struct {
	Dir     string           `yaml:"dir"`
	Columns spectrum.Columns `yaml:"columns"`
}

// Quality is one radiation quality to evaluate.
type Quality struct {
	ID         string                             `yaml:"id"`
	Material   string                             `yaml:"material"`
	Spectrum   string                             `yaml:"spectrum"`
	Window     *spectrum.Window                   `yaml:"window"`
	References map[string]compare.Characteristics `yaml:"references"`
}

// Config is the run configuration.
//   - References: reference source name -> characteristics CSV file, for
//     sources that publish a whole table rather than per-quality values
//   - Workers: evaluation goroutines, 0 means one per quality
type Config struct {
	EnergyTransfer Table               `yaml:"energy_transfer"`
	Conversion     *Table              `yaml:"conversion"`
	Materials      map[string]Material `yaml:"materials"`
	Spectra        Spectra             `yaml:"spectra"`
	Solver         hvl.Solver          `yaml:"solver"`
	Workers        int                 `yaml:"workers"`
	References     map[string]string   `yaml:"references"`
	Qualities      []Quality           `yaml:"qualities"`

	dir string
}

// _defaultConfig returns the settings used for keys the file leaves out.
func _defaultConfig() *Config {
	return &Config{
		Solver:  hvl.DefaultSolver(),
		Workers: runtime.GOMAXPROCS(0),
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes YAML over the defaults and validates the result. dir is the
// base for relative paths. Unknown keys are rejected.
func Parse(data []byte, dir string) (*Config, error) {
	cfg := _defaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.dir = dir
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem found, joined into one error that matches
// ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	checkTable := func(what string, t Table) {
		if t.Path == "" {
			add("%s: path is required", what)
		}
		if _, err := t.source(what); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", what, err))
		}
		if t.EnergyColumn < 0 || t.valueColumn() < 0 {
			add("%s: negative column index", what)
		}
		if t.EnergyColumn == t.valueColumn() {
			add("%s: energy_column and value_column must differ, both are %d", what, t.EnergyColumn)
		}
	}
	checkTable("energy_transfer", c.EnergyTransfer)
	if c.Conversion != nil {
		checkTable("conversion", *c.Conversion)
	}
	for name, m := range c.Materials {
		if !(m.Density > 0) {
			add("material %s: density must be > 0, got %g", name, m.Density)
		}
		checkTable("material "+name, m.Attenuation)
	}

	if c.Solver.Tolerance < 0 || c.Solver.StepFloor < 0 || c.Solver.FirstSeed < 0 || c.Solver.SecondSeed < 0 || c.Solver.MaxThickness < 0 {
		add("solver: parameters must not be negative")
	}
	if c.Workers < 0 {
		add("workers must not be negative, got %d", c.Workers)
	}
	for src, path := range c.References {
		if path == "" {
			add("reference %s: path is required", src)
		}
	}

	if len(c.Qualities) == 0 {
		add("no qualities configured")
	}
	seen := make(map[string]bool, len(c.Qualities))
	for i, q := range c.Qualities {
		id := q.ID
		if id == "" {
			add("quality #%d: id is required", i+1)
			id = fmt.Sprintf("#%d", i+1)
		} else if seen[id] {
			add("quality %s: duplicate id", id)
		}
		seen[id] = true
		if _, ok := c.Materials[q.Material]; !ok {
			errs = append(errs, fmt.Errorf("quality %s: %w %q", id, ErrUnknownMaterial, q.Material))
		}
		if q.Spectrum == "" {
			add("quality %s: spectrum is required", id)
		}
		if q.Window != nil && !(q.Window.Min < q.Window.Max) {
			add("quality %s: empty window %s", id, q.Window)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Select returns a copy of c restricted to the given quality ids, in the
// order given. No ids means all qualities.
func (c *Config) Select(ids ...string) (*Config, error) {
	if len(ids) == 0 {
		return c, nil
	}
	byID := make(map[string]Quality, len(c.Qualities))
	for _, q := range c.Qualities {
		byID[q.ID] = q
	}
	out := *c
	out.Qualities = make([]Quality, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownQuality, id)
		}
		out.Qualities = append(out.Qualities, q)
	}
	return &out, nil
}

// Dir returns the base directory for relative paths.
func (c *Config) Dir() string { return c.dir }

// resolve makes p absolute relative to the config directory.
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// SpectrumPath returns the file of quality q.
func (c *Config) SpectrumPath(q Quality) string {
	if filepath.IsAbs(q.Spectrum) {
		return q.Spectrum
	}
	return filepath.Join(c.resolve(c.Spectra.Dir), q.Spectrum)
}

func (t Table) source(fallback string) (coefficient.Source, error) {
	eu, err := coefficient.ParseEnergyUnit(t.EnergyUnit)
	if err != nil {
		return coefficient.Source{}, err
	}
	cu, err := coefficient.ParseCoefficientUnit(t.CoefficientUnit)
	if err != nil {
		return coefficient.Source{}, err
	}
	name := t.Name
	if name == "" {
		name = fallback
	}
	return coefficient.Source{
		Name:         name,
		EnergyUnit:   eu,
		Unit:         cu,
		EnergyColumn: t.EnergyColumn,
		ValueColumn:  t.valueColumn(),
	}, nil
}
