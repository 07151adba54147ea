package analysislog

// Column schema of the analysis log. The order is fixed: metadata, then the
// four peak slots' prefixed fields, then the supplemental fields. The header
// row is written exactly once, when a log file is first created.

// MetaHeaders are per-analysis metadata columns copied from the raw file.
var MetaHeaders = []string{
	"Amount", "Analysis", "Comment", "Date", "Identifier1", "Identifier2",
	"Information", "Line", "Method", "Row", "Time",
}

// NHeaders are the per-peak columns recorded for nitrogen peaks.
var NHeaders = []string{
	"Ampl28", "Ampl29", "AreaAll", "Area28", "Area29", "BGD28", "BGD29",
	"Gasconfiguration", "R15N14N", "d15N14N", "PeakNr", "Start", "Width",
}

// CHeaders are the per-peak columns recorded for carbon peaks.
var CHeaders = []string{
	"Ampl44", "Ampl45", "Ampl46", "AreaAll", "Area44", "Area45", "Area46",
	"BGD44", "BGD45", "BGD46", "Gasconfiguration", "PeakNr", "R13C12C",
	"d13C12C", "Start", "Width",
}

// SuppHeaders are the supplemental columns appended by the reduction pass.
var SuppHeaders = []string{"file", "trust", "notes", "peak_center", "version", "empty"}

// SlotPrefixes name the four peak slots in log column order.
var SlotPrefixes = []string{"N_wg_", "N_sam_", "C_sam_", "C_wg_"}

// Schema returns the full ordered column list of the analysis log.
func Schema() []string {
	var cols []string
	cols = append(cols, MetaHeaders...)
	for _, h := range NHeaders {
		cols = append(cols, "N_wg_"+h)
	}
	for _, h := range NHeaders {
		cols = append(cols, "N_sam_"+h)
	}
	for _, h := range CHeaders {
		cols = append(cols, "C_sam_"+h)
	}
	for _, h := range CHeaders {
		cols = append(cols, "C_wg_"+h)
	}
	cols = append(cols, SuppHeaders...)
	return cols
}
