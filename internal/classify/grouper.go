package classify

// Group describes one analysis: a contiguous run of rows sharing an analysis
// number, in file order.
type Group struct {
	Start int // first row index
	Rows  int // number of peaks reported for this analysis
}

// GroupAnalyses partitions the analysis-number column into maximal contiguous
// equal runs. File order defines the grouping; the ids are never sorted.
func GroupAnalyses(ids []int) []Group {
	if len(ids) == 0 {
		return nil
	}
	var groups []Group
	start := 0
	for i := 1; i <= len(ids); i++ {
		if i == len(ids) || ids[i] != ids[start] {
			groups = append(groups, Group{Start: start, Rows: i - start})
			start = i
		}
	}
	return groups
}
