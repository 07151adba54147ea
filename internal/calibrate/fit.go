package calibrate

import "math"

// Line is a first-order least-squares fit y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

// Valid reports whether the fit produced finite coefficients.
func (l Line) Valid() bool {
	return !math.IsNaN(l.Slope) && !math.IsNaN(l.Intercept)
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 { return l.Slope*x + l.Intercept }

// Invert solves for x given y.
func (l Line) Invert(y float64) float64 { return (y - l.Intercept) / l.Slope }

// Polyfit fits a first-order least-squares line. Pairs with a non-finite
// member are skipped; fewer than two distinct x values make the fit
// degenerate and both coefficients come back NaN so the result propagates
// instead of aborting the run.
func Polyfit(x, y []float64) Line {
	bad := Line{Slope: math.NaN(), Intercept: math.NaN()}
	if len(x) != len(y) {
		return bad
	}
	var n, sumX, sumY, sumXX, sumXY float64
	distinct := false
	var firstX float64
	for i := range x {
		if !finite(x[i]) || !finite(y[i]) {
			continue
		}
		if n == 0 {
			firstX = x[i]
		} else if x[i] != firstX {
			distinct = true
		}
		n++
		sumX += x[i]
		sumY += y[i]
		sumXX += x[i] * x[i]
		sumXY += x[i] * y[i]
	}
	if n < 2 || !distinct {
		return bad
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return bad
	}
	slope := (n*sumXY - sumX*sumY) / denom
	return Line{Slope: slope, Intercept: (sumY - slope*sumX) / n}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// NanMean averages the finite values of vals; all-NaN input yields NaN.
func NanMean(vals []float64) float64 {
	var sum float64
	var n int
	for _, v := range vals {
		if finite(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// NanStd is the population standard deviation over the finite values.
func NanStd(vals []float64) float64 {
	mean := NanMean(vals)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	var sum float64
	var n int
	for _, v := range vals {
		if finite(v) {
			d := v - mean
			sum += d * d
			n++
		}
	}
	return math.Sqrt(sum / float64(n))
}

// nanToNum maps NaN and infinities to zero, the way percent composition is
// reported for zero-mass records.
func nanToNum(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}

// pick gathers vals at the given indices.
func pick(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}
