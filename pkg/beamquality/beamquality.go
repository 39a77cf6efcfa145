// Package beamquality evaluates X-ray reference radiation qualities: mean
// energy, first and second half-value layers, and the kerma-weighted mean
// conversion coefficient of a fluence spectrum.
//
// Each evaluation is a pure function of its Input. Tables and spectra are
// immutable, so one set of tables can be shared by any number of concurrent
// evaluations.
package beamquality

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/ja7ad/beamquality/pkg/interpolate"
	"github.com/ja7ad/beamquality/pkg/kerma"
	"github.com/ja7ad/beamquality/pkg/report"
	"github.com/ja7ad/beamquality/pkg/types"
)

// Evaluator computes beam-quality descriptors.
type Evaluator struct {
	cfg *Config
	log *slog.Logger
}

// New creates an evaluator with the given config.
// Targets in (0,1) override the defaults; solver fields <= 0 are defaulted
// by the solver itself. A nil logger means slog.Default().
func New(cfg *Config, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	base := _defaultConfig()
	if cfg == nil {
		return &Evaluator{cfg: base, log: logger}
	}

	merged := *base
	merged.Solver = cfg.Solver
	if cfg.FirstTarget > 0 && cfg.FirstTarget < 1 {
		merged.FirstTarget = cfg.FirstTarget
	}
	if cfg.SecondTarget > 0 && cfg.SecondTarget < 1 {
		merged.SecondTarget = cfg.SecondTarget
	}
	return &Evaluator{cfg: &merged, log: logger}
}

// Config returns a copy of the effective configuration.
func (e *Evaluator) Config() Config { return *e.cfg }

// Evaluate windows the spectrum, computes its mean energy, builds the kerma
// integral, solves HVL1 and then HVL2 behind it, and averages the conversion
// coefficient when a conversion table is given.
func (e *Evaluator) Evaluate(in Input) (Result, error) {
	res := Result{QualityID: in.QualityID, Material: in.Material, MeanHK: math.NaN()}
	if in.Tables.EnergyTransfer == nil || in.Tables.Attenuation == nil {
		return res, fmt.Errorf("%w: quality %s", ErrMissingTable, in.QualityID)
	}
	wrap := func(err error) error { return fmt.Errorf("quality %s: %w", in.QualityID, err) }
	log := e.log.With("quality", in.QualityID)

	// an empty window or an all-zero fluence leaves nothing to integrate
	s, err := in.Spectrum.Windowed(in.Window)
	if err != nil {
		return res, wrap(fmt.Errorf("%w: %w", kerma.ErrDegenerateSpectrum, err))
	}
	if res.MeanEnergy, err = s.MeanEnergy(); err != nil {
		return res, wrap(fmt.Errorf("%w: %w", kerma.ErrDegenerateSpectrum, err))
	}

	mat, err := kerma.NewMaterial(in.Material, in.Density, in.Tables.EnergyTransfer, in.Tables.Attenuation)
	if err != nil {
		return res, wrap(err)
	}
	k, err := kerma.New(s, mat, log)
	if err != nil {
		return res, wrap(err)
	}
	res.Warnings = k.Warnings()

	if res.HVL, err = e.cfg.Solver.Solve(k, e.cfg.FirstTarget, e.cfg.SecondTarget); err != nil {
		return res, wrap(err)
	}

	if in.Tables.Conversion != nil {
		hk, err := interpolate.NewLogLog(in.Tables.Conversion)
		if err != nil {
			return res, wrap(err)
		}
		energies := k.Energies()
		if w := hk.Check(energies); w != nil {
			log.Warn("coefficient extrapolated", "table", w.Table, "below", w.Below, "above", w.Above)
			res.Warnings = append(res.Warnings, *w)
		}
		res.MeanHK = stat.Mean(hk.EvalAll(energies), k.Weights())
		res.HasHK = true
	}

	log.Debug("quality evaluated",
		"mean_energy", types.Energy(res.MeanEnergy).Humanized(),
		"hvl1", types.Length(res.HVL.First.Thickness).Humanized(),
		"hvl2", types.Length(res.HVL.Second.Thickness).Humanized())
	return res, nil
}

// EvaluateAll evaluates every input on up to workers goroutines (workers <= 0
// means no limit). A failing quality does not stop the others; its error is
// returned in its Outcome. Inputs not started before ctx is done fail with
// ctx.Err(). Outcomes are in input order.
func (e *Evaluator) EvaluateAll(ctx context.Context, inputs []Input, workers int) []Outcome {
	out := make([]Outcome, len(inputs))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range inputs {
		g.Go(func() error {
			in := inputs[i]
			out[i].QualityID = in.QualityID
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Result, out[i].Err = e.Evaluate(in)
			if out[i].Err != nil {
				e.log.Error("quality failed", "quality", in.QualityID, "err", out[i].Err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Record flattens r for a report sink. Thicknesses are in mm.
func (r Result) Record() report.Record {
	return report.Record{
		QualityID:  r.QualityID,
		Material:   r.Material,
		MeanEnergy: r.MeanEnergy,
		HVL1:       r.HVL.First.MM(),
		HVL2:       r.HVL.Second.MM(),
		MeanHK:     r.MeanHK,
	}
}

// Record flattens o; a failed outcome keeps only its id, material and error.
func (o Outcome) Record() report.Record {
	if o.Err != nil {
		rec := report.Failed(o.QualityID, o.Err)
		rec.Material = o.Result.Material
		return rec
	}
	return o.Result.Record()
}
