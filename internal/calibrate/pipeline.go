// Package calibrate converts raw analysis-log peak areas and isotope ratios
// into blank-corrected, quantity-calibrated, drift-corrected values
// normalized to the AirN2 and VPDB scales, with QC statistics per run.
package calibrate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/isobytes/cnreduce/internal/ingest"
	"github.com/isobytes/cnreduce/internal/refmat"
)

// Options selects how a run is calibrated.
type Options struct {
	// Calibration names the reference-material categories used to fit the
	// normalization lines. At least two are required; reference categories
	// present in the run but not named here become quality control.
	Calibration []string
}

// QCStat is one precision/accuracy estimate from a quality-control category.
type QCStat struct {
	Parameter string // "d15N", "d13C", "N quantity", "C quantity"
	Category  string
	Precision float64 // two standard deviations
	Accuracy  float64 // mean minus accepted value
	Unit      string  // "permil" or "ug"
}

// Result carries everything the report adapter needs for one run: final
// arrays over the trusted records, calculation notes, and QC statistics.
// The core computes data only; rendering happens elsewhere.
type Result struct {
	Name string

	// Per trusted record, in run order.
	Identifiers []string
	Dates       []string
	Files       []string
	Analysis    []float64
	Amount      []float64
	Nqty        []float64 // mg, from blank-corrected peak area
	Cqty        []float64
	PercentN    []float64
	PercentC    []float64
	D15NAirN2   []float64
	D13CVPDB    []float64

	// Partition of record indices. Samples and non-samples are disjoint and
	// together cover every trusted record.
	SampleIdx    []int
	NonSampleIdx []int
	CategoryIdx  map[string][]int

	CalibrationCats []string
	QCCats          []string

	Notes []string // ordered calculation notes; fallbacks are never silent
	QC    []QCStat

	// Pooled post-normalization residual spread across all calibration
	// categories, as two standard deviations.
	PooledD15N2SD float64
	PooledD13C2SD float64

	// Quantity residual spread (micrograms) across calibration categories.
	NqtyResidual2SD float64
	CqtyResidual2SD float64

	// Blank inventory for the report.
	BlankMeanArea float64
	BlankMeanD15N float64
	BlankCount    int
	QtycalCount   int
	Excluded      int // untrusted records dropped before calibration
}

// Pipeline calibrates runs of an analysis log against a reference-material set.
type Pipeline struct {
	Refmat *refmat.Set
}

func (p *Pipeline) note(res *Result, s string) { res.Notes = append(res.Notes, s) }

// Calibrate runs the full correction chain for one run: category assignment,
// nitrogen blank correction, quantity calibration, drift correction, isotope
// normalization, and QC residuals. Fit coefficients are recomputed from
// scratch; rerunning on unchanged records yields identical output.
func (p *Pipeline) Calibrate(log *ingest.Table, run Run, opt Options) (*Result, error) {
	res := &Result{Name: run.Name, CategoryIdx: map[string][]int{}}

	// Drop untrusted records before anything else.
	trustCol := log.Strings("trust")
	var rows []int
	for _, i := range run.Indices {
		if v, err := strconv.Atoi(strings.TrimSpace(trustCol[i])); err == nil && v == 1 {
			rows = append(rows, i)
		} else {
			res.Excluded++
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("run %s: no trusted records", run.Name)
	}

	res.Identifiers = pickStrings(log.Strings("Identifier1"), rows)
	res.Dates = pickStrings(log.Strings("Date"), rows)
	res.Files = pickStrings(log.Strings("file"), rows)
	res.Analysis = pick(log.Floats("Analysis"), rows)
	res.Amount = pick(log.Floats("Amount"), rows)

	nArea := pick(log.Floats("N_sam_AreaAll"), rows)
	nDelta := pick(log.Floats("N_sam_d15N14N"), rows)
	cArea := pick(log.Floats("C_sam_AreaAll"), rows)
	cDelta := pick(log.Floats("C_sam_d13C12C"), rows)

	p.assignCategories(res)
	calib, qc, err := p.splitReferenceCategories(res, opt.Calibration)
	if err != nil {
		return nil, err
	}
	res.CalibrationCats, res.QCCats = calib, qc

	nAreaBC, nDeltaBC := p.blankCorrect(res, nArea, nDelta)
	// Carbon blank correction is a known gap: empty-tin carbon is only
	// visible in undiluted runs and has never been characterized, so carbon
	// values pass through uncorrected.
	cAreaBC, cDeltaBC := cArea, cDelta

	p.quantityCalibrate(res, nAreaBC, cAreaBC)

	nDeltaDrift := p.driftCorrect(res, calib, nDelta, nDeltaBC)
	cDeltaDrift := p.driftCorrect(res, calib, cDelta, cDeltaBC)
	p.note(res, "d15N and d13C were corrected for drift")

	res.D15NAirN2 = p.normalize(res, calib, nDeltaDrift, func(c *refmat.Category) float64 { return c.D15N })
	res.D13CVPDB = p.normalize(res, calib, cDeltaDrift, func(c *refmat.Category) float64 { return c.D13C })
	p.note(res, "d15N and d13C were normalized to AirN2 and VPDB, respectively")

	p.qcStatistics(res, calib, qc)
	return res, nil
}

// assignCategories computes, for every configured category, the records whose
// identifier matches one of its name variants. Everything unmatched is a
// sample.
func (p *Pipeline) assignCategories(res *Result) {
	nonSample := map[int]bool{}
	for _, name := range p.Refmat.Names() {
		cat := p.Refmat.Categories[name]
		var idx []int
		for i, id := range res.Identifiers {
			if cat.Match(id) {
				idx = append(idx, i)
				nonSample[i] = true
			}
		}
		if len(idx) > 0 {
			res.CategoryIdx[name] = idx
		}
	}
	for i := range res.Identifiers {
		if nonSample[i] {
			res.NonSampleIdx = append(res.NonSampleIdx, i)
		} else {
			res.SampleIdx = append(res.SampleIdx, i)
		}
	}
	sort.Ints(res.NonSampleIdx)
}

// splitReferenceCategories validates the chosen calibration categories and
// assigns the remaining reference materials present in the run to QC.
func (p *Pipeline) splitReferenceCategories(res *Result, chosen []string) (calib, qc []string, err error) {
	if len(chosen) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 calibration reference materials, got %d", len(chosen))
	}
	seen := map[string]bool{}
	for _, name := range chosen {
		cat, ok := p.Refmat.Get(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown reference material %q", name)
		}
		if cat.Role != refmat.RoleReference {
			return nil, nil, fmt.Errorf("%q is not an isotope reference material", name)
		}
		if len(res.CategoryIdx[cat.Name]) == 0 {
			return nil, nil, fmt.Errorf("reference material %q has no trusted records in this run", name)
		}
		calib = append(calib, cat.Name)
		seen[cat.Name] = true
	}
	for _, name := range p.Refmat.Names() {
		cat := p.Refmat.Categories[name]
		if cat.Role == refmat.RoleReference && !seen[name] && len(res.CategoryIdx[name]) > 0 {
			qc = append(qc, name)
		}
	}
	return calib, qc, nil
}

// blankCorrect applies the two-source mixing model to nitrogen when the run
// contains usable blanks. Without them the raw values pass through and the
// decision is recorded.
func (p *Pipeline) blankCorrect(res *Result, area, delta []float64) (areaBC, deltaBC []float64) {
	blankIdx := res.CategoryIdx["blank"]
	res.BlankCount = len(blankIdx)
	res.BlankMeanArea = NanMean(pick(area, blankIdx))
	res.BlankMeanD15N = NanMean(pick(delta, blankIdx))

	if len(blankIdx) == 0 || !finite(res.BlankMeanArea) || !finite(res.BlankMeanD15N) {
		p.note(res, "nitrogen blank correction NOT applied")
		return area, delta
	}

	areaBC = make([]float64, len(area))
	deltaBC = make([]float64, len(delta))
	for i := range area {
		areaBC[i] = area[i] - res.BlankMeanArea
		deltaBC[i] = (delta[i]*area[i] - res.BlankMeanD15N*res.BlankMeanArea) / (area[i] - res.BlankMeanArea)
	}
	p.note(res, "nitrogen blank correction applied")
	return areaBC, deltaBC
}

// quantityCalibrate fits peak area against the known elemental mass of the
// quantity-calibration standards and inverts the fit for every record.
func (p *Pipeline) quantityCalibrate(res *Result, nAreaBC, cAreaBC []float64) {
	qtycal, _ := p.Refmat.Get("qtycal")
	idx := res.CategoryIdx["qtycal"]
	res.QtycalCount = len(idx)

	nKnown := make([]float64, len(idx))
	cKnown := make([]float64, len(idx))
	for i, j := range idx {
		nKnown[i] = res.Amount[j] * qtycal.FractionN
		cKnown[i] = res.Amount[j] * qtycal.FractionC
	}
	nFit := Polyfit(nKnown, pick(nAreaBC, idx))
	cFit := Polyfit(cKnown, pick(cAreaBC, idx))

	res.Nqty = make([]float64, len(nAreaBC))
	res.Cqty = make([]float64, len(cAreaBC))
	res.PercentN = make([]float64, len(nAreaBC))
	res.PercentC = make([]float64, len(cAreaBC))
	for i := range nAreaBC {
		res.Nqty[i] = nFit.Invert(nAreaBC[i])
		res.Cqty[i] = cFit.Invert(cAreaBC[i])
		res.PercentN[i] = nanToNum(res.Nqty[i] / res.Amount[i] * 100)
		res.PercentC[i] = nanToNum(res.Cqty[i] / res.Amount[i] * 100)
	}
	p.note(res, "nitrogen and carbon quantities calculated from peak area using quantity calibration standards (qtycal) as knowns")
}

// driftCorrect fits the calibration categories' raw-delta residuals against
// analysis number and subtracts the fitted drift from the blank-corrected
// delta. A degenerate fit propagates NaN rather than aborting.
func (p *Pipeline) driftCorrect(res *Result, calib []string, rawDelta, deltaBC []float64) []float64 {
	var xs, ys []float64
	for _, name := range calib {
		idx := res.CategoryIdx[name]
		mean := NanMean(pick(rawDelta, idx))
		for _, j := range idx {
			xs = append(xs, res.Analysis[j])
			ys = append(ys, rawDelta[j]-mean)
		}
	}
	fit := Polyfit(xs, ys)
	out := make([]float64, len(deltaBC))
	for i := range deltaBC {
		out[i] = deltaBC[i] - fit.At(res.Analysis[i])
	}
	return out
}

// normalize fits accepted against measured mean deltas of the calibration
// categories and applies the line to every drift-corrected delta.
func (p *Pipeline) normalize(res *Result, calib []string, drift []float64, accepted func(*refmat.Category) float64) []float64 {
	meas := make([]float64, len(calib))
	acc := make([]float64, len(calib))
	for i, name := range calib {
		meas[i] = NanMean(pick(drift, res.CategoryIdx[name]))
		acc[i] = accepted(p.Refmat.Categories[name])
	}
	fit := Polyfit(meas, acc)
	out := make([]float64, len(drift))
	for i := range drift {
		out[i] = fit.At(drift[i])
	}
	return out
}

// qcStatistics derives precision and accuracy from the QC categories and the
// pooled post-normalization residuals of the calibration categories.
func (p *Pipeline) qcStatistics(res *Result, calib, qc []string) {
	for _, name := range qc {
		cat := p.Refmat.Categories[name]
		idx := res.CategoryIdx[name]

		res.QC = append(res.QC,
			QCStat{
				Parameter: "d15N", Category: name, Unit: "permil",
				Precision: 2 * NanStd(pick(res.D15NAirN2, idx)),
				Accuracy:  NanMean(pick(res.D15NAirN2, idx)) - cat.D15N,
			},
			QCStat{
				Parameter: "d13C", Category: name, Unit: "permil",
				Precision: 2 * NanStd(pick(res.D13CVPDB, idx)),
				Accuracy:  NanMean(pick(res.D13CVPDB, idx)) - cat.D13C,
			},
			QCStat{
				Parameter: "N quantity", Category: name, Unit: "ug",
				Precision: 2 * 1000 * NanStd(quantityResiduals(res, idx, cat.FractionN, res.Nqty)),
				Accuracy:  1000 * NanMean(quantityResiduals(res, idx, cat.FractionN, res.Nqty)),
			},
			QCStat{
				Parameter: "C quantity", Category: name, Unit: "ug",
				Precision: 2 * 1000 * NanStd(quantityResiduals(res, idx, cat.FractionC, res.Cqty)),
				Accuracy:  1000 * NanMean(quantityResiduals(res, idx, cat.FractionC, res.Cqty)),
			},
		)
	}

	var d15Res, d13Res, nqRes, cqRes []float64
	for _, name := range calib {
		cat := p.Refmat.Categories[name]
		idx := res.CategoryIdx[name]
		m15 := NanMean(pick(res.D15NAirN2, idx))
		m13 := NanMean(pick(res.D13CVPDB, idx))
		for _, j := range idx {
			d15Res = append(d15Res, res.D15NAirN2[j]-m15)
			d13Res = append(d13Res, res.D13CVPDB[j]-m13)
			nqRes = append(nqRes, (res.Nqty[j]-res.Amount[j]*cat.FractionN)*1000)
			cqRes = append(cqRes, (res.Cqty[j]-res.Amount[j]*cat.FractionC)*1000)
		}
	}
	res.PooledD15N2SD = 2 * NanStd(d15Res)
	res.PooledD13C2SD = 2 * NanStd(d13Res)
	res.NqtyResidual2SD = 2 * NanStd(nqRes)
	res.CqtyResidual2SD = 2 * NanStd(cqRes)
}

func quantityResiduals(res *Result, idx []int, fraction float64, qty []float64) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = qty[j] - fraction*res.Amount[j]
	}
	return out
}

func pickStrings(vals []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}
