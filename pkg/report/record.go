// Package report writes beam-quality results as CSV, JSON, HTML or a
// terminal table. It knows nothing about how the results were computed.
package report

import (
	"math"
	"slices"

	"github.com/ja7ad/beamquality/pkg/compare"
)

// Record is the flat result of one quality. HVLs are in mm, mean energy in
// keV. MeanHK is NaN when no conversion table was evaluated. Error is set
// when the quality could not be evaluated.
type Record struct {
	QualityID  string
	Material   string
	MeanEnergy float64
	HVL1       float64
	HVL2       float64
	MeanHK     float64
	Error      string
	Deviations map[string]compare.Deviations
}

// Failed returns a record for a quality that could not be evaluated.
func Failed(qualityID string, err error) Record {
	nan := math.NaN()
	return Record{QualityID: qualityID, MeanEnergy: nan, HVL1: nan, HVL2: nan, MeanHK: nan, Error: err.Error()}
}

// Characteristics returns the record's values in comparable form.
func (r Record) Characteristics() compare.Characteristics {
	return compare.Characteristics{MeanEnergy: r.MeanEnergy, HVL1: r.HVL1, HVL2: r.HVL2}
}

// WithReferences returns a copy of r with deviations against every
// reference source that lists r's quality.
func (r Record) WithReferences(refs map[string]compare.Characteristics) Record {
	if len(refs) == 0 || r.Error != "" {
		return r
	}
	out := r
	out.Deviations = make(map[string]compare.Deviations, len(refs))
	for src, ref := range refs {
		out.Deviations[src] = compare.Compare(r.Characteristics(), ref)
	}
	return out
}

// Sources returns the sorted reference source names used by recs.
func Sources(recs []Record) []string {
	var out []string
	for _, r := range recs {
		for src := range r.Deviations {
			if !slices.Contains(out, src) {
				out = append(out, src)
			}
		}
	}
	slices.Sort(out)
	return out
}

func (r Record) deviation(src string) (compare.Deviations, bool) {
	d, ok := r.Deviations[src]
	if !ok {
		nan := math.NaN()
		return compare.Deviations{MeanEnergy: nan, HVL1: nan, HVL2: nan}, false
	}
	return d, true
}
