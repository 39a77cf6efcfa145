package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/ja7ad/beamquality/pkg/util"
)

// WriteCSV writes one row per record, with three deviation columns per
// reference source. NaN values are written as empty cells.
func WriteCSV(w io.Writer, recs []Record) error {
	sources := Sources(recs)
	header := []string{"quality", "material", "mean_energy_kev", "hvl1_mm", "hvl2_mm", "mean_hk"}
	for _, src := range sources {
		header = append(header, src+"_mean_energy_pct", src+"_hvl1_pct", src+"_hvl2_pct")
	}
	header = append(header, "error")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{r.QualityID, r.Material,
			util.FmtFloat(r.MeanEnergy), util.FmtFloat(r.HVL1), util.FmtFloat(r.HVL2), util.FmtFloat(r.MeanHK)}
		for _, src := range sources {
			d, _ := r.deviation(src)
			row = append(row, util.FmtFloat(d.MeanEnergy), util.FmtFloat(d.HVL1), util.FmtFloat(d.HVL2))
		}
		row = append(row, r.Error)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonDeviation struct {
	MeanEnergy *float64 `json:"mean_energy_pct"`
	HVL1       *float64 `json:"hvl1_pct"`
	HVL2       *float64 `json:"hvl2_pct"`
}

type jsonRecord struct {
	QualityID  string                   `json:"quality_id"`
	Material   string                   `json:"material,omitempty"`
	MeanEnergy *float64                 `json:"mean_energy_kev"`
	HVL1       *float64                 `json:"hvl1_mm"`
	HVL2       *float64                 `json:"hvl2_mm"`
	MeanHK     *float64                 `json:"mean_hk"`
	Error      string                   `json:"error,omitempty"`
	Deviations map[string]jsonDeviation `json:"deviations,omitempty"`
}

// num maps NaN and ±Inf to JSON null.
func num(x float64) *float64 {
	if !util.Finite(x) {
		return nil
	}
	return &x
}

// WriteJSON writes recs as an indented JSON array; NaN values become null.
func WriteJSON(w io.Writer, recs []Record) error {
	out := make([]jsonRecord, 0, len(recs))
	for _, r := range recs {
		jr := jsonRecord{
			QualityID:  r.QualityID,
			Material:   r.Material,
			MeanEnergy: num(r.MeanEnergy),
			HVL1:       num(r.HVL1),
			HVL2:       num(r.HVL2),
			MeanHK:     num(r.MeanHK),
			Error:      r.Error,
		}
		if len(r.Deviations) > 0 {
			jr.Deviations = make(map[string]jsonDeviation, len(r.Deviations))
			for src, d := range r.Deviations {
				jr.Deviations[src] = jsonDeviation{MeanEnergy: num(d.MeanEnergy), HVL1: num(d.HVL1), HVL2: num(d.HVL2)}
			}
		}
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// cell renders x for terminal output.
func cell(x float64, digits int) string {
	if math.IsNaN(x) {
		return "-"
	}
	return humanize.FtoaWithDigits(x, digits)
}

// WriteTable writes an aligned table: values first, then deviations in
// percent per reference source.
func WriteTable(w io.Writer, recs []Record) error {
	sources := Sources(recs)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprint(tw, "QUALITY\tMATERIAL\tE_mean (keV)\tHVL1 (mm)\tHVL2 (mm)\th_K")
	for _, src := range sources {
		fmt.Fprintf(tw, "\tΔE %[1]s (%%)\tΔHVL1 %[1]s (%%)\tΔHVL2 %[1]s (%%)", src)
	}
	fmt.Fprintln(tw)

	for _, r := range recs {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\t%s\terror: %s\n", r.QualityID, r.Material, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s", r.QualityID, r.Material,
			cell(r.MeanEnergy, 3), cell(r.HVL1, 4), cell(r.HVL2, 4), cell(r.MeanHK, 4))
		for _, src := range sources {
			d, _ := r.deviation(src)
			fmt.Fprintf(tw, "\t%s\t%s\t%s", cell(d.MeanEnergy, 2), cell(d.HVL1, 2), cell(d.HVL2, 2))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
