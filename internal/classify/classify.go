// Package classify maps the raw peaks of one analysis onto the four peak
// slots (nitrogen reference, nitrogen sample, carbon sample, carbon
// reference) based on the run's gas mode and the number of peaks detected.
package classify

import (
	"math"

	"github.com/isobytes/cnreduce/internal/ingest"
)

// DefaultSaturationMV is the practical upper amplitude bound of the
// instrument; any sample peak above it means too much material was weighed.
const DefaultSaturationMV = 49950

// RunMode is the gas configuration detected for a whole file.
type RunMode int

const (
	ModeUnknown RunMode = iota
	ModeCombined
	ModeNitrogenOnly
	ModeCarbonOnly
)

func (m RunMode) String() string {
	switch m {
	case ModeCombined:
		return "CN"
	case ModeNitrogenOnly:
		return "N"
	case ModeCarbonOnly:
		return "C"
	}
	return "unk"
}

// gasConfigColumns lists the header spellings seen for the gas
// configuration column across instrument software versions.
var gasConfigColumns = []string{"GasConfiguration", "Gasconfiguration"}

// GasConfigColumn returns the name of the gas configuration column present in
// the table, or "" if none is.
func GasConfigColumn(t *ingest.Table) string {
	for _, name := range gasConfigColumns {
		if t.Has(name) {
			return name
		}
	}
	return ""
}

// DetectRunMode inspects the distinct gas labels across the whole file.
// Combined mode requires both N2 and CO2; a file with only one of them is a
// single-element run; anything else is unknown and distrusted downstream.
func DetectRunMode(t *ingest.Table) RunMode {
	col := GasConfigColumn(t)
	if col == "" {
		return ModeUnknown
	}
	var hasN2, hasCO2 bool
	for _, v := range t.Strings(col) {
		switch v {
		case "N2":
			hasN2 = true
		case "CO2":
			hasCO2 = true
		}
	}
	switch {
	case hasN2 && hasCO2:
		return ModeCombined
	case hasN2:
		return ModeNitrogenOnly
	case hasCO2:
		return ModeCarbonOnly
	}
	return ModeUnknown
}

// Result is the classification of one analysis. Each slot holds the table row
// assigned to it, or Absent. Trust starts true and is only ever downgraded.
type Result struct {
	NRef, NSam, CSam, CRef int
	Trust                  bool
	Notes                  []string
}

// Absent marks a peak slot with no assigned row; every field of that slot is
// written as an explicit empty placeholder in the analysis log.
const Absent = -1

func (r *Result) note(s string) { r.Notes = append(r.Notes, s) }

func (r *Result) distrustAll(note string) {
	r.NRef, r.NSam, r.CSam, r.CRef = Absent, Absent, Absent, Absent
	r.Trust = false
	r.note(note)
}

// Classifier carries per-run classification state.
type Classifier struct {
	Table        *ingest.Table
	Mode         RunMode
	SaturationMV float64
	gasCol       string
}

// New builds a Classifier for a file whose mode was already detected.
func New(t *ingest.Table, mode RunMode, saturationMV float64) *Classifier {
	if saturationMV <= 0 {
		saturationMV = DefaultSaturationMV
	}
	return &Classifier{Table: t, Mode: mode, SaturationMV: saturationMV, gasCol: GasConfigColumn(t)}
}

// Classify assigns the rows of one analysis to peak slots according to the
// run mode and peak count.
func (c *Classifier) Classify(g Group) Result {
	r := Result{NRef: Absent, NSam: Absent, CSam: Absent, CRef: Absent, Trust: true}
	switch c.Mode {
	case ModeCombined:
		c.classifyCombined(g, &r)
	case ModeNitrogenOnly:
		c.classifyNitrogenOnly(g, &r)
	case ModeCarbonOnly:
		c.classifyCarbonOnly(g, &r)
	default:
		r.distrustAll("Run type unknown")
	}
	return r
}

func (c *Classifier) gasLabel(row int) string {
	if c.gasCol == "" {
		return ""
	}
	return c.Table.Value(c.gasCol, row)
}

func (c *Classifier) classifyCombined(g Group, r *Result) {
	switch g.Rows {
	case 1:
		// A lone peak is irrecoverable; no way to tell what it was.
		r.distrustAll("Only one peak detected")

	case 2:
		// The first peak is always the nitrogen reference. The second is
		// either a nitrogen sample (carbon channel dropped out) or the
		// carbon reference (both sample peaks missing).
		r.NRef = g.Start
		switch c.gasLabel(g.Start + 1) {
		case "N2":
			r.note("No carbon peaks")
			c.setNSam(r, g.Start+1)
		case "CO2":
			r.note("No nitrogen or carbon sample peaks")
			r.CRef = g.Start + 1
		default:
			r.distrustAll("unexpected gas configuration")
		}

	case 3:
		// Nref, one sample peak, Cref. The middle peak's gas label decides
		// which element the sample came through on.
		r.NRef = g.Start
		switch c.gasLabel(g.Start + 1) {
		case "N2":
			c.setNSam(r, g.Start+1)
		case "CO2":
			c.setCSam(r, g.Start+1)
		default:
			r.distrustAll("unexpected gas configuration")
			return
		}
		r.CRef = g.Start + 2

	case 4:
		// Nominal analysis: Nref, Nsam, Csam, Cref in order.
		r.NRef = g.Start
		c.setNSam(r, g.Start+1)
		c.setCSam(r, g.Start+2)
		r.CRef = g.Start + 3

	case 5:
		c.classifyFivePeaks(g, r)

	case 6:
		r.distrustAll("6 peaks in sample")

	default:
		r.distrustAll("too many peaks detected")
	}
}

// classifyFivePeaks handles the extra-peak case: one channel produced two
// candidate peaks. Which channel is found by counting gas labels within the
// analysis.
func (c *Classifier) classifyFivePeaks(g Group, r *Result) {
	var n2, co2 int
	for row := g.Start; row < g.Start+g.Rows; row++ {
		switch c.gasLabel(row) {
		case "N2":
			n2++
		case "CO2":
			co2++
		}
	}
	switch {
	case n2 == 2: // CO2 channel has the extra peak
		r.note("extra CO2 peak detected")
		r.NRef = g.Start
		c.setNSam(r, g.Start+1)

		// Peaks 3 and 4 compete for the carbon sample slot; the larger
		// area wins. This is a heuristic with no ground truth behind it.
		a, b := c.Table.Float("AreaAll", g.Start+2), c.Table.Float("AreaAll", g.Start+3)
		switch {
		case math.IsNaN(a) || math.IsNaN(b):
			r.Trust = false
			r.note("problem with AreaAll data")
		case a > b:
			r.note("using larger first of two sample peaks")
			c.setCSam(r, g.Start+2)
		default:
			r.note("using larger second of two sample peaks")
			c.setCSam(r, g.Start+3)
		}
		r.CRef = g.Start + 4

	case co2 == 2: // N2 channel has the extra peak; drop nitrogen entirely
		c.setCSam(r, g.Start+3)
		r.CRef = g.Start + 4
		r.note("5 peaks in sample and N2 has extra")

	default:
		r.distrustAll("5 peaks in sample but something unexpected happened")
	}
}

func (c *Classifier) classifyNitrogenOnly(g Group, r *Result) {
	switch g.Rows {
	case 4:
		// Peaks 2 and 5 are both references in a nitrogen-only method; the
		// second peak stands in for the reference until averaging exists.
		r.NRef = g.Start + 1
	case 5:
		r.NRef = g.Start + 1
		c.setNSam(r, g.Start+4)
		r.note("No nitrogen sample peaks")
	default:
		r.Trust = false
		r.note("Number of peaks suggests an error")
	}
}

func (c *Classifier) classifyCarbonOnly(g Group, r *Result) {
	switch g.Rows {
	case 4:
		r.CRef = g.Start + 1
	case 5:
		r.CRef = g.Start + 1
		c.setCSam(r, g.Start+4)
		r.note("No carbon sample peaks")
	default:
		r.Trust = false
		r.note("Number of peaks suggests an error")
	}
}

// setNSam assigns the nitrogen sample slot and applies the saturation check:
// a cup amplitude beyond the instrument bound downgrades trust but keeps the
// peak data available.
func (c *Classifier) setNSam(r *Result, row int) {
	r.NSam = row
	if c.saturated(row, "Ampl28", "Ampl29") {
		r.Trust = false
		r.note("N2 cup saturated")
	}
}

func (c *Classifier) setCSam(r *Result, row int) {
	r.CSam = row
	if c.saturated(row, "Ampl44", "Ampl45", "Ampl46") {
		r.Trust = false
		r.note("CO2 cup saturated")
	}
}

func (c *Classifier) saturated(row int, cols ...string) bool {
	for _, col := range cols {
		if v := c.Table.Float(col, row); !math.IsNaN(v) && v > c.SaturationMV {
			return true
		}
	}
	return false
}
