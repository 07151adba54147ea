package report

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/isobytes/cnreduce/internal/calibrate"
)

func testResult() *calibrate.Result {
	return &calibrate.Result{
		Name:        "20240614",
		Identifiers: []string{"GA1", "UNK_1", "acet"},
		Dates:       []string{"06/14/24", "06/14/24", "06/14/24"},
		Analysis:    []float64{101, 102, 103},
		Amount:      []float64{1.0, 2.5, 1.1},
		Nqty:        []float64{0.0952, 0.21, math.NaN()},
		Cqty:        []float64{0.4082, 0.9, 0.78},
		D15NAirN2:   []float64{-4.6, 3.21, 1.18},
		D13CVPDB:    []float64{-28.3, -24.55, -29.53},

		SampleIdx:    []int{1},
		NonSampleIdx: []int{0, 2},
	}
}

func TestWriteCalibratedLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCalibrated(path, testResult()); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header + 2 refs + blank + 1 sample, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Sample ID,Date,Analysis Number") {
		t.Fatalf("header = %q", lines[0])
	}
	// reference materials first, blank separator, then samples
	if !strings.HasPrefix(lines[1], "GA1,") || !strings.HasPrefix(lines[2], "acet,") {
		t.Fatalf("reference rows = %q / %q", lines[1], lines[2])
	}
	if lines[3] != "" {
		t.Fatalf("separator row = %q", lines[3])
	}
	if !strings.HasPrefix(lines[4], "UNK_1,") {
		t.Fatalf("sample row = %q", lines[4])
	}
	// NaN quantities render blank, not "NaN"
	if strings.Contains(lines[2], "NaN") {
		t.Fatalf("acet row leaks NaN: %q", lines[2])
	}
	if !strings.Contains(lines[1], "-4.60") || !strings.Contains(lines[1], "0.095") {
		t.Fatalf("GA1 row formatting: %q", lines[1])
	}
}

func TestAppendSummaryHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	res := testResult()
	if err := AppendSummary(path, res); err != nil {
		t.Fatal(err)
	}
	res2 := testResult()
	res2.Name = "20240620"
	if err := AppendSummary(path, res2); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 7 {
		t.Fatalf("expected header + 6 rows, got %d", len(rows))
	}
	if rows[0][0] != "Run" || rows[0][1] != "Sample ID" {
		t.Fatalf("header = %v", rows[0][:2])
	}
	if rows[1][0] != "20240614" || rows[4][0] != "20240620" {
		t.Fatalf("run column wrong: %v / %v", rows[1][0], rows[4][0])
	}
	for _, row := range rows[1:] {
		if row[0] == "Run" {
			t.Fatal("header written twice")
		}
	}
}

func TestNumFormatting(t *testing.T) {
	if got := num(math.NaN(), 2); got != "" {
		t.Fatalf("NaN -> %q", got)
	}
	if got := num(math.Inf(1), 2); got != "" {
		t.Fatalf("Inf -> %q", got)
	}
	if got := num(-4.6, 2); got != "-4.60" {
		t.Fatalf("-4.6 -> %q", got)
	}
}
