package calibrate

import (
	"math"
	"testing"
)

func TestPolyfitExact(t *testing.T) {
	l := Polyfit([]float64{1, 2, 3}, []float64{100, 200, 300})
	if !l.Valid() {
		t.Fatal("fit invalid")
	}
	if math.Abs(l.Slope-100) > 1e-9 || math.Abs(l.Intercept) > 1e-9 {
		t.Fatalf("slope=%v intercept=%v", l.Slope, l.Intercept)
	}
	if got := l.At(1.5); math.Abs(got-150) > 1e-9 {
		t.Fatalf("At(1.5) = %v", got)
	}
	if got := l.Invert(150); math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("Invert(150) = %v", got)
	}
}

func TestPolyfitSkipsNonFinitePairs(t *testing.T) {
	l := Polyfit(
		[]float64{1, math.NaN(), 2, 3},
		[]float64{10, 999, 20, math.Inf(1)},
	)
	if math.Abs(l.Slope-10) > 1e-9 || math.Abs(l.Intercept) > 1e-9 {
		t.Fatalf("slope=%v intercept=%v", l.Slope, l.Intercept)
	}
}

func TestPolyfitDegenerate(t *testing.T) {
	cases := []struct {
		name string
		x, y []float64
	}{
		{"single point", []float64{1}, []float64{10}},
		{"identical x", []float64{2, 2, 2}, []float64{1, 2, 3}},
		{"all NaN", []float64{math.NaN(), math.NaN()}, []float64{1, 2}},
		{"empty", nil, nil},
		{"length mismatch", []float64{1, 2}, []float64{1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := Polyfit(c.x, c.y)
			if l.Valid() {
				t.Fatalf("expected NaN fit, got %+v", l)
			}
			if !math.IsNaN(l.At(5)) || !math.IsNaN(l.Invert(5)) {
				t.Fatal("degenerate fit must propagate NaN")
			}
		})
	}
}

func TestNanMean(t *testing.T) {
	if got := NanMean([]float64{1, math.NaN(), 3}); math.Abs(got-2) > 1e-9 {
		t.Fatalf("mean = %v", got)
	}
	if got := NanMean([]float64{math.NaN()}); !math.IsNaN(got) {
		t.Fatalf("all-NaN mean = %v", got)
	}
	if got := NanMean(nil); !math.IsNaN(got) {
		t.Fatalf("empty mean = %v", got)
	}
}

func TestNanStdPopulation(t *testing.T) {
	// population sigma of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2
	vals := []float64{2, 4, math.NaN(), 4, 4, 5, 5, 7, 9}
	if got := NanStd(vals); math.Abs(got-2) > 1e-9 {
		t.Fatalf("std = %v", got)
	}
	if got := NanStd([]float64{5}); got != 0 {
		t.Fatalf("single value std = %v", got)
	}
	if got := NanStd(nil); !math.IsNaN(got) {
		t.Fatalf("empty std = %v", got)
	}
}

func TestNanToNum(t *testing.T) {
	if got := nanToNum(math.NaN()); got != 0 {
		t.Fatalf("NaN -> %v", got)
	}
	if got := nanToNum(math.Inf(-1)); got != 0 {
		t.Fatalf("-Inf -> %v", got)
	}
	if got := nanToNum(3.5); got != 3.5 {
		t.Fatalf("3.5 -> %v", got)
	}
}
