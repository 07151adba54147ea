package ingest

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadTableScrubsHeadersAndTokens(t *testing.T) {
	content := strings.Join([]string{
		"Analysis,Area All,d15N/14N,Ampl (28)",
		"100,20.5,1.#IO,4000",
		"100,21.5,-2.25,1.#INF000",
	}, "\n")
	tbl, err := ReadTable(writeTemp(t, content))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	for _, h := range []string{"Analysis", "AreaAll", "d15N14N", "Ampl28"} {
		if !tbl.Has(h) {
			t.Fatalf("expected scrubbed header %q, have %v", h, tbl.Headers)
		}
	}
	if got := tbl.Value("d15N14N", 0); got != "" {
		t.Fatalf("expected non-finite token scrubbed to empty, got %q", got)
	}
	if v := tbl.Float("d15N14N", 1); v != -2.25 {
		t.Fatalf("expected -2.25, got %v", v)
	}
	if v := tbl.Float("Ampl28", 1); !math.IsNaN(v) {
		t.Fatalf("expected NaN for scrubbed value, got %v", v)
	}
}

func TestReadTablePadsShortRows(t *testing.T) {
	content := "Analysis,AreaAll,Width\n1,10.0\n1,11.0,0.5\n"
	tbl, err := ReadTable(writeTemp(t, content))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if tbl.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Rows())
	}
	if got := tbl.Value("Width", 0); got != "" {
		t.Fatalf("expected empty pad, got %q", got)
	}
	if got := tbl.Value("Width", 1); got != "0.5" {
		t.Fatalf("expected 0.5, got %q", got)
	}
}

func TestIntsRejectsNonInteger(t *testing.T) {
	tbl := NewTable([]string{"Analysis"}, [][]string{{"12"}, {"thirteen"}})
	if _, err := tbl.Ints("Analysis"); err == nil {
		t.Fatal("expected error for non-integer analysis value")
	}
	tbl = NewTable([]string{"Analysis"}, [][]string{{"12"}, {"13"}})
	ids, err := tbl.Ints("Analysis")
	if err != nil {
		t.Fatalf("Ints: %v", err)
	}
	if ids[0] != 12 || ids[1] != 13 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestFloatsMissingColumn(t *testing.T) {
	tbl := NewTable([]string{"Analysis"}, [][]string{{"1"}})
	vals := tbl.Floats("AreaAll")
	if len(vals) != 1 || !math.IsNaN(vals[0]) {
		t.Fatalf("expected NaN column for absent header, got %v", vals)
	}
}
