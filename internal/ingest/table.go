package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Table holds one delimited instrument file: an ordered header list and one
// column of raw string values per header. A missing value is the empty string.
type Table struct {
	Headers []string
	Columns map[string][]string
	rows    int
}

// NewTable builds a Table from in-memory rows. Rows shorter than the header
// list are padded with empty values.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{Columns: make(map[string][]string, len(headers))}
	t.Headers = append(t.Headers, headers...)
	for _, h := range headers {
		t.Columns[h] = nil
	}
	for _, rec := range rows {
		for i, h := range headers {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			t.Columns[h] = append(t.Columns[h], v)
		}
		t.rows++
	}
	return t
}

// headerJunk matches characters the instrument software sprinkles into column
// names (spaces, units, punctuation) which are stripped before lookup.
var headerJunk = regexp.MustCompile(`[./\s()%]`)

// badTokens are literal strings the instrument emits for non-finite values.
var badTokens = strings.NewReplacer("1.#IO", "", "1.#INF000", "")

// ReadTable reads a comma-delimited file with a single header row into a Table.
// Short rows are padded with empty values so every column has equal length.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return readTable(f)
}

func readTable(f io.Reader) (*Table, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{Columns: map[string][]string{}}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &Table{Columns: make(map[string][]string, len(header))}
	for _, h := range header {
		clean := headerJunk.ReplaceAllString(h, "")
		t.Headers = append(t.Headers, clean)
		t.Columns[clean] = nil
	}

	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", t.rows+1, err)
		}
		for i, h := range t.Headers {
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(badTokens.Replace(rec[i]))
			}
			t.Columns[h] = append(t.Columns[h], v)
		}
		t.rows++
	}
	return t, nil
}

// Rows reports the number of data rows.
func (t *Table) Rows() int { return t.rows }

// Has reports whether a column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.Columns[col]
	return ok
}

// Value returns the raw string at (col, row), or "" when the column is absent.
func (t *Table) Value(col string, row int) string {
	c, ok := t.Columns[col]
	if !ok || row < 0 || row >= len(c) {
		return ""
	}
	return c[row]
}

// Float parses the value at (col, row); missing or unparseable values are NaN.
func (t *Table) Float(col string, row int) float64 {
	v := t.Value(col, row)
	if v == "" {
		return math.NaN()
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return x
}

// Floats converts an entire column; missing or unparseable values are NaN.
func (t *Table) Floats(col string) []float64 {
	out := make([]float64, t.rows)
	for i := range out {
		out[i] = t.Float(col, i)
	}
	return out
}

// Strings returns the raw column, or an all-empty slice when absent.
func (t *Table) Strings(col string) []string {
	if c, ok := t.Columns[col]; ok {
		return c
	}
	return make([]string, t.rows)
}

// Ints converts a column to integers strictly: any non-integer token is an
// error, which callers treat as a file-level rejection.
func (t *Table) Ints(col string) ([]int, error) {
	c, ok := t.Columns[col]
	if !ok {
		return nil, fmt.Errorf("column %q not present", col)
	}
	out := make([]int, len(c))
	for i, v := range c {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %q is not an integer", col, i, v)
		}
		out[i] = n
	}
	return out, nil
}
