package report

import (
	"bytes"
	"html/template"
	"io"
	"time"
)

// Meta describes the run a report was produced from.
type Meta struct {
	RunID     string
	Generated time.Time
	Config    string
}

type htmlView struct {
	Meta    Meta
	Records []Record
	Sources []string
	Failed  int
	ErrSpan int
}

// WriteHTML renders a self-contained HTML page with one row per record.
func WriteHTML(w io.Writer, meta Meta, recs []Record) error {
	view := htmlView{Meta: meta, Records: recs, Sources: Sources(recs)}
	view.ErrSpan = 4 + 3*len(view.Sources)
	for _, r := range recs {
		if r.Error != "" {
			view.Failed++
		}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, view); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

var tpl = template.Must(template.New("rep").Funcs(template.FuncMap{
	"num": func(x float64, digits int) string { return cell(x, digits) },
	"dev": func(r Record, src string) []string {
		d, ok := r.deviation(src)
		if !ok {
			return []string{"-", "-", "-"}
		}
		return []string{cell(d.MeanEnergy, 2), cell(d.HVL1, 2), cell(d.HVL2, 2)}
	},
}).Parse(`<!doctype html>
<html lang="en"><meta charset="utf-8">
<title>Beam Quality Report</title>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:20px}
h1,h2{margin:0 0 8px}
table{border-collapse:collapse;width:100%;font-size:14px}
th,td{border:1px solid #ddd;padding:6px 8px;text-align:right}
th:first-child,td:first-child{text-align:left}
.small{color:#555}
.err{color:#a00;text-align:left}
</style>

<h1>Beam Quality Report</h1>

<p class="small">
Qualities: {{len .Records}} &nbsp;|&nbsp;
Failed: {{.Failed}}
{{if .Meta.RunID}}&nbsp;|&nbsp; Run: <code>{{.Meta.RunID}}</code>{{end}}
{{if not .Meta.Generated.IsZero}}&nbsp;|&nbsp; Generated: {{.Meta.Generated.Format "2006-01-02 15:04:05"}}{{end}}
{{if .Meta.Config}}&nbsp;|&nbsp; Config: <code>{{.Meta.Config}}</code>{{end}}
</p>

<h2>Qualities</h2>
<table>
<thead>
<tr>
<th>quality</th><th>material</th><th>E_mean (keV)</th><th>HVL1 (mm)</th><th>HVL2 (mm)</th><th>h_K</th>
{{range .Sources}}<th>ΔE {{.}} (%)</th><th>ΔHVL1 {{.}} (%)</th><th>ΔHVL2 {{.}} (%)</th>{{end}}
</tr>
</thead>
<tbody>
{{$sources := .Sources}}
{{range .Records}}
<tr>
<td>{{.QualityID}}</td>
<td>{{.Material}}</td>
{{if .Error}}
<td class="err" colspan="{{$.ErrSpan}}">{{.Error}}</td>
{{else}}
<td>{{num .MeanEnergy 3}}</td>
<td>{{num .HVL1 4}}</td>
<td>{{num .HVL2 4}}</td>
<td>{{num .MeanHK 4}}</td>
{{$r := .}}{{range $sources}}{{range dev $r .}}<td>{{.}}</td>{{end}}{{end}}
{{end}}
</tr>
{{end}}
</tbody>
</table>
</html>`))
