package classify

import (
	"reflect"
	"testing"
)

func TestGroupAnalyses(t *testing.T) {
	cases := []struct {
		name string
		ids  []int
		want []Group
	}{
		{"empty", nil, nil},
		{"single", []int{7}, []Group{{0, 1}}},
		{"nominal", []int{1, 1, 1, 1, 2, 2, 2, 2}, []Group{{0, 4}, {4, 4}}},
		{"uneven", []int{1, 1, 2, 2, 2, 3}, []Group{{0, 2}, {2, 3}, {5, 1}}},
		// file order defines grouping: a repeated id after a gap is a new analysis
		{"repeat after gap", []int{5, 5, 6, 5}, []Group{{0, 2}, {2, 1}, {3, 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GroupAnalyses(tc.ids)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("GroupAnalyses(%v) = %v, want %v", tc.ids, got, tc.want)
			}
		})
	}
}
