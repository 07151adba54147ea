package calibrate

import (
	"strings"
	"time"

	"github.com/isobytes/cnreduce/internal/ingest"
)

// Run is the subset of analysis-log records calibrated together: the records
// of one source file, or the entire log in unified mode.
type Run struct {
	Name    string // run date, YYYYMMDD
	File    string // source raw file, or the log name in unified mode
	Indices []int  // log row indices belonging to this run
}

// SplitRuns partitions a loaded analysis log into runs. Partitioning is
// recomputed fresh on every invocation; nothing about a run is persisted.
func SplitRuns(log *ingest.Table, logName string, unify bool) []Run {
	dates := log.Strings("Date")
	if unify {
		all := make([]int, log.Rows())
		for i := range all {
			all[i] = i
		}
		if len(all) == 0 {
			return nil
		}
		return []Run{{Name: runName(dates[0]), File: logName, Indices: all}}
	}

	files := log.Strings("file")
	var order []string
	byFile := map[string][]int{}
	for i, f := range files {
		if _, seen := byFile[f]; !seen {
			order = append(order, f)
		}
		byFile[f] = append(byFile[f], i)
	}
	runs := make([]Run, 0, len(order))
	for _, f := range order {
		idx := byFile[f]
		runs = append(runs, Run{Name: runName(dates[idx[0]]), File: f, Indices: idx})
	}
	return runs
}

var dateLayouts = []string{
	"01/02/06", "01/02/2006", "2006-01-02", "2006/01/02",
	"01/02/2006 15:04:05", "2006-01-02 15:04:05", time.RFC3339,
}

// runName derives a YYYYMMDD run name from the first record's date. An
// unparseable date falls back to the raw text with separators stripped.
func runName(date string) string {
	s := strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("20060102")
		}
	}
	repl := strings.NewReplacer("/", "", "-", "", ":", "", " ", "_")
	if s == "" {
		return "undated"
	}
	return repl.Replace(s)
}
