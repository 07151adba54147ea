// Package analysislog builds flat per-analysis log records from classified
// peaks and maintains the append-only analysis log files.
package analysislog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/isobytes/cnreduce/internal/classify"
	"github.com/isobytes/cnreduce/internal/ingest"
	"github.com/isobytes/cnreduce/internal/utils"
)

// Record is one analysis-log row, aligned with Schema().
type Record []string

var peakCenterRE = regexp.MustCompile(`^Peak Center found at`)
var digitsRE = regexp.MustCompile(`\d+`)

// BuildRecords merges each classified analysis with its metadata row and the
// supplemental fields into one flat record. Absent peak slots produce empty
// placeholders for every slot column, so a record always has the full schema
// width. Notes are joined with semicolons to stay safe inside a CSV cell.
func BuildRecords(t *ingest.Table, groups []classify.Group, results []classify.Result, file, version string) []Record {
	gasCol := classify.GasConfigColumn(t)
	records := make([]Record, 0, len(groups))
	for gi, g := range groups {
		res := results[gi]
		rec := make(Record, 0, len(MetaHeaders)+2*len(NHeaders)+2*len(CHeaders)+len(SuppHeaders))

		for _, h := range MetaHeaders {
			rec = append(rec, cell(t, h, g.Start, gasCol))
		}
		for _, slot := range []struct {
			row     int
			headers []string
		}{
			{res.NRef, NHeaders},
			{res.NSam, NHeaders},
			{res.CSam, CHeaders},
			{res.CRef, CHeaders},
		} {
			for _, h := range slot.headers {
				if slot.row == classify.Absent {
					rec = append(rec, "")
				} else {
					rec = append(rec, cell(t, h, slot.row, gasCol))
				}
			}
		}

		rec = append(rec, file)
		if res.Trust {
			rec = append(rec, "1")
		} else {
			rec = append(rec, "0")
		}
		rec = append(rec, strings.Join(res.Notes, "; "))
		rec = append(rec, peakCenter(t.Value("Information", g.Start)))
		rec = append(rec, version)
		rec = append(rec, "")

		records = append(records, rec)
	}
	return records
}

// cell reads one raw value, resolving the gas configuration column to
// whichever spelling the instrument software used.
func cell(t *ingest.Table, header string, row int, gasCol string) string {
	if header == "Gasconfiguration" && gasCol != "" {
		return t.Value(gasCol, row)
	}
	return t.Value(header, row)
}

// peakCenter extracts the instrument's peak-center diagnostic from the
// free-text information field, when present.
func peakCenter(info string) string {
	if !peakCenterRE.MatchString(info) {
		return ""
	}
	return digitsRE.FindString(info)
}

// Append adds records to the log at path. The header row is written only when
// the file is first created; existing rows are never altered. The whole log
// is rewritten through a temp-file rename so a crash cannot leave a
// half-written row in the system of record.
func Append(path string, records []Record) error {
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
		if err := w.Write(Schema()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	default:
		return fmt.Errorf("read log: %w", err)
	}

	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush log: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// Load reads an analysis log back into a column table for calibration.
func Load(path string) (*ingest.Table, error) {
	t, err := ingest.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("load analysis log: %w", err)
	}
	if !t.Has("Analysis") || !t.Has("trust") {
		return nil, fmt.Errorf("%s is not an analysis log", path)
	}
	return t, nil
}
