// Package report renders calibrated run results into CSV and HTML artifacts.
// It consumes pure data from the calibration pipeline and can be swapped or
// tested without touching any calibration logic.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/isobytes/cnreduce/internal/calibrate"
	"github.com/isobytes/cnreduce/internal/utils"
)

// CalibratedHeaders is the fixed column order of the calibrated data file.
var CalibratedHeaders = []string{
	"Sample ID", "Date", "Analysis Number", "Total Mass (mg)",
	"Nitrogen mass (mg)", "d15N vs AirN2 (permil)",
	"Carbon mass (mg)", "d13C vs VPDB (permil)",
}

// WriteCalibrated writes one run's calibrated data file: reference materials
// first, a blank row, then samples.
func WriteCalibrated(path string, res *calibrate.Result) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CalibratedHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, i := range res.NonSampleIdx {
		if err := w.Write(calibratedRow(res, i)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := w.Write([]string{}); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}
	for _, i := range res.SampleIdx {
		if err := w.Write(calibratedRow(res, i)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush calibrated data: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// AppendSummary adds one run's rows to the cross-run summary file, writing
// the header only when the file is first created.
func AppendSummary(path string, res *calibrate.Result) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		buf.Write(existing)
		if len(existing) > 0 && existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	case os.IsNotExist(err):
		if err := w.Write(append([]string{"Run"}, CalibratedHeaders...)); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	default:
		return fmt.Errorf("read summary: %w", err)
	}

	for _, i := range append(append([]int{}, res.NonSampleIdx...), res.SampleIdx...) {
		if err := w.Write(append([]string{res.Name}, calibratedRow(res, i)...)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func calibratedRow(res *calibrate.Result, i int) []string {
	return []string{
		res.Identifiers[i],
		res.Dates[i],
		strconv.Itoa(int(res.Analysis[i])),
		num(res.Amount[i], 4),
		num(res.Nqty[i], 3),
		num(res.D15NAirN2[i], 2),
		num(res.Cqty[i], 3),
		num(res.D13CVPDB[i], 2),
	}
}

func num(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
