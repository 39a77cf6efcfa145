package beamquality

import (
	"github.com/ja7ad/beamquality/pkg/coefficient"
	"github.com/ja7ad/beamquality/pkg/hvl"
	"github.com/ja7ad/beamquality/pkg/interpolate"
	"github.com/ja7ad/beamquality/pkg/spectrum"
)

// Config holds evaluation parameters.
//   - Solver: HVL search parameters, zero fields take the solver defaults
//   - FirstTarget/SecondTarget: transmissions defining HVL1 and the
//     cumulative HVL1+HVL2, both relative to the unattenuated beam
type Config struct {
	Solver       hvl.Solver
	FirstTarget  float64
	SecondTarget float64
}

// _defaultConfig returns the reference evaluation parameters.
func _defaultConfig() *Config {
	return &Config{
		Solver:       hvl.DefaultSolver(),
		FirstTarget:  hvl.FirstTarget,  // 50 %
		SecondTarget: hvl.SecondTarget, // 25 % of the unattenuated beam
	}
}

// Tables are the coefficient curves used for one quality.
//   - EnergyTransfer: μtr/ρ of air
//   - Attenuation: μ/ρ (or μ) of the HVL absorber
//   - Conversion: optional air-kerma to dose-equivalent conversion hₖ(E)
type Tables struct {
	EnergyTransfer *coefficient.Table
	Attenuation    *coefficient.Table
	Conversion     *coefficient.Table
}

// Input is everything needed to evaluate one radiation quality.
type Input struct {
	QualityID string
	Material  string
	Spectrum  spectrum.Sample
	Tables    Tables
	Density   float64 // g/cm³
	Window    *spectrum.Window
}

// Result is the beam-quality description of one radiation quality.
type Result struct {
	QualityID  string
	Material   string
	MeanEnergy float64 // keV
	HVL        hvl.Result
	MeanHK     float64 // NaN unless HasHK
	HasHK      bool
	Warnings   []interpolate.DomainWarning
}

// Outcome pairs a batch input with its result or error.
type Outcome struct {
	QualityID string
	Result    Result
	Err       error
}
