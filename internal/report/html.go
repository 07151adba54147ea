package report

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/isobytes/cnreduce/internal/calibrate"
	"github.com/isobytes/cnreduce/internal/refmat"
	"github.com/isobytes/cnreduce/internal/utils"
)

// htmlData is the view model for the calibration summary page.
type htmlData struct {
	Run       string
	Created   string
	Notes     []string
	Refmat    []refmatRow
	QC        []qcRow
	Res       *calibrate.Result
	BlankArea string
	BlankD15N string
	FileNote  string
}

type refmatRow struct {
	Name      string
	Material  string
	D15N      string
	FractionN string
	D13C      string
	FractionC string
	Purpose   string
}

type qcRow struct {
	Parameter string
	Precision string
	Accuracy  string
	Category  string
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>CN Calibration Report — {{.Run}}</title>
</head>
<body>
<h2>CN Stable Isotope Analysis and Calibration Report</h2>
<div>Run {{.Run}} — created {{.Created}}</div>

<h2>Data operations</h2>
<ul>
{{range .Notes}}<li>{{.}}</li>
{{end}}</ul>

<h2>Run inventory</h2>
<table>
<tr><td>Analyses in run</td><td>{{len .Res.Identifiers}}</td></tr>
<tr><td>Standards in run</td><td>{{len .Res.NonSampleIdx}}</td></tr>
<tr><td>Samples in run</td><td>{{len .Res.SampleIdx}}</td></tr>
<tr><td>Blanks in run</td><td>{{.Res.BlankCount}}</td></tr>
<tr><td>Quantity calibration standards in run</td><td>{{.Res.QtycalCount}}</td></tr>
<tr><td>Excluded (untrusted) analyses</td><td>{{.Res.Excluded}}</td></tr>
</table>

<h2>Reference materials</h2>
{{if .FileNote}}<p>Accepted values are from {{.FileNote}}.</p>{{end}}
<table>
<tr><th>Name</th><th>Material</th><th>d15N accepted</th><th>Fraction N</th><th>d13C accepted</th><th>Fraction C</th><th>Purpose</th></tr>
{{range .Refmat}}<tr><td>{{.Name}}</td><td>{{.Material}}</td><td>{{.D15N}}</td><td>{{.FractionN}}</td><td>{{.D13C}}</td><td>{{.FractionC}}</td><td>{{.Purpose}}</td></tr>
{{end}}</table>

<h2>Data quality</h2>
<p>Precision is two standard deviations over all replicates of a quality
control reference material; accuracy is the difference of the replicate mean
from the accepted value.</p>
<table>
<tr><th>Parameter</th><th>Precision</th><th>Accuracy</th><th>Reference material</th></tr>
{{range .QC}}<tr><td>{{.Parameter}}</td><td>{{.Precision}}</td><td>{{.Accuracy}}</td><td>{{.Category}}</td></tr>
{{end}}</table>

<p>N2 blank: mean peak area {{.BlankArea}} Vs, mean d15N {{.BlankD15N}} permil, n = {{.Res.BlankCount}}</p>
</body>
</html>
`))

// WriteHTML renders the stand-alone calibration summary page for one run.
func WriteHTML(path string, res *calibrate.Result, set *refmat.Set) error {
	data := htmlData{
		Run:       res.Name,
		Created:   time.Now().Format("2006-01-02 15:04:05"),
		Notes:     res.Notes,
		Res:       res,
		BlankArea: round(res.BlankMeanArea, 3),
		BlankD15N: round(res.BlankMeanD15N, 2),
		FileNote:  set.FileNote,
	}

	purpose := map[string]string{}
	for _, n := range res.CalibrationCats {
		purpose[n] = "d15N calibration; d13C calibration"
	}
	for _, n := range res.QCCats {
		purpose[n] = "d15N quality control; d13C quality control"
	}
	for _, name := range set.Names() {
		cat := set.Categories[name]
		if cat.Role != refmat.RoleReference || len(res.CategoryIdx[name]) == 0 {
			continue
		}
		data.Refmat = append(data.Refmat, refmatRow{
			Name:      name,
			Material:  cat.Material,
			D15N:      round(cat.D15N, 2),
			FractionN: round(cat.FractionN, 4),
			D13C:      round(cat.D13C, 2),
			FractionC: round(cat.FractionC, 4),
			Purpose:   purpose[name],
		})
	}

	for _, q := range res.QC {
		data.QC = append(data.QC, qcRow{
			Parameter: q.Parameter,
			Precision: round(q.Precision, 3) + " " + q.Unit,
			Accuracy:  round(q.Accuracy, 3) + " " + q.Unit,
			Category:  q.Category,
		})
	}
	data.QC = append(data.QC,
		qcRow{Parameter: "d15N", Precision: round(res.PooledD15N2SD, 3) + " permil", Category: "all isotope reference materials"},
		qcRow{Parameter: "d13C", Precision: round(res.PooledD13C2SD, 3) + " permil", Category: "all isotope reference materials"},
	)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func round(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return num(v, prec)
}
