package analysislog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/isobytes/cnreduce/internal/classify"
	"github.com/isobytes/cnreduce/internal/ingest"
)

func rawTable() *ingest.Table {
	headers := []string{
		"Analysis", "Amount", "Identifier1", "Date", "Information",
		"GasConfiguration", "AreaAll", "Ampl28", "Ampl29", "Ampl44", "Ampl45", "Ampl46",
		"d15N14N", "d13C12C", "PeakNr", "Start", "Width",
	}
	rows := [][]string{
		{"501", "2.1", "GA1", "06/14/24", "Peak Center found at 782 mV", "N2", "4.1", "1200", "1100", "", "", "", "-1.1", "", "1", "45", "20"},
		{"501", "2.1", "GA1", "06/14/24", "", "N2", "60.2", "9000", "8000", "", "", "", "2.2", "", "2", "80", "30"},
		{"501", "2.1", "GA1", "06/14/24", "", "CO2", "110.5", "", "", "14000", "12000", "500", "", "-26.3", "3", "150", "40"},
		{"501", "2.1", "GA1", "06/14/24", "", "CO2", "5.0", "", "", "900", "800", "40", "", "-11.0", "4", "220", "25"},
	}
	return ingest.NewTable(headers, rows)
}

func TestBuildRecordsNominal(t *testing.T) {
	tbl := rawTable()
	groups := []classify.Group{{Start: 0, Rows: 4}}
	results := []classify.Result{classify.New(tbl, classify.ModeCombined, classify.DefaultSaturationMV).Classify(groups[0])}

	recs := BuildRecords(tbl, groups, results, "raw_20240614.csv", "cnreduce test")
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	schema := Schema()
	if len(rec) != len(schema) {
		t.Fatalf("record width %d != schema width %d", len(rec), len(schema))
	}

	field := func(name string) string {
		for i, h := range schema {
			if h == name {
				return rec[i]
			}
		}
		t.Fatalf("no column %q in schema", name)
		return ""
	}
	if field("Analysis") != "501" {
		t.Fatalf("Analysis = %q", field("Analysis"))
	}
	if field("N_wg_AreaAll") != "4.1" || field("N_sam_AreaAll") != "60.2" {
		t.Fatalf("nitrogen slots wrong: wg=%q sam=%q", field("N_wg_AreaAll"), field("N_sam_AreaAll"))
	}
	if field("C_sam_d13C12C") != "-26.3" || field("C_wg_d13C12C") != "-11.0" {
		t.Fatalf("carbon slots wrong: sam=%q wg=%q", field("C_sam_d13C12C"), field("C_wg_d13C12C"))
	}
	// gas configuration resolved despite the alternate raw header spelling
	if field("N_sam_Gasconfiguration") != "N2" || field("C_sam_Gasconfiguration") != "CO2" {
		t.Fatalf("gas columns wrong: %q %q", field("N_sam_Gasconfiguration"), field("C_sam_Gasconfiguration"))
	}
	if field("trust") != "1" {
		t.Fatalf("trust = %q", field("trust"))
	}
	if field("peak_center") != "782" {
		t.Fatalf("peak_center = %q", field("peak_center"))
	}
	if field("file") != "raw_20240614.csv" {
		t.Fatalf("file = %q", field("file"))
	}
}

func TestBuildRecordsAbsentSlotsAndNotes(t *testing.T) {
	tbl := rawTable()
	groups := []classify.Group{{Start: 0, Rows: 2}}
	res := classify.New(tbl, classify.ModeCombined, classify.DefaultSaturationMV).Classify(groups[0])
	res.Notes = append(res.Notes, "second note")

	recs := BuildRecords(tbl, groups, []classify.Result{res}, "f.csv", "v")
	schema := Schema()
	rec := recs[0]
	for i, h := range schema {
		if strings.HasPrefix(h, "C_sam_") || strings.HasPrefix(h, "C_wg_") {
			if rec[i] != "" {
				t.Fatalf("absent slot column %s = %q, want empty", h, rec[i])
			}
		}
		if h == "notes" {
			if rec[i] != "No carbon peaks; second note" {
				t.Fatalf("notes joined wrong: %q", rec[i])
			}
		}
	}
}

func TestAppendWritesHeaderOnceAndRoundTrips(t *testing.T) {
	tbl := rawTable()
	groups := []classify.Group{{Start: 0, Rows: 4}}
	results := []classify.Result{classify.New(tbl, classify.ModeCombined, classify.DefaultSaturationMV).Classify(groups[0])}
	recs := BuildRecords(tbl, groups, results, "first.csv", "v")

	path := filepath.Join(t.TempDir(), "log.csv")
	if err := Append(path, recs); err != nil {
		t.Fatalf("first append: %v", err)
	}
	recs2 := BuildRecords(tbl, groups, results, "second.csv", "v")
	if err := Append(path, recs2); err != nil {
		t.Fatalf("second append: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	if err != nil {
		t.Fatalf("parse log: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0][0] != "Amount" {
		t.Fatalf("header not first: %v", lines[0][:3])
	}
	if strings.Contains(strings.Join(lines[2], ","), "Amount,Analysis") {
		t.Fatal("header written twice")
	}

	// round-trip: the loaded log reproduces every written field
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", loaded.Rows())
	}
	if got := loaded.Value("file", 0); got != "first.csv" {
		t.Fatalf("file[0] = %q", got)
	}
	if got := loaded.Value("file", 1); got != "second.csv" {
		t.Fatalf("file[1] = %q", got)
	}
	if got := loaded.Value("N_sam_d15N14N", 0); got != "2.2" {
		t.Fatalf("N_sam_d15N14N = %q", got)
	}
	// appending never alters previously written rows
	if got := loaded.Value("peak_center", 0); got != "782" {
		t.Fatalf("peak_center = %q", got)
	}
}

func TestLoadRejectsNonLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-log file")
	}
}
