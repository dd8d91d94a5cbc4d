// Package series holds small helpers over float64 series where NaN marks a
// missing observation.
package series

import (
	"math"
	"sort"
)

// DropNaN returns the non-NaN values of x in order.
func DropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Paired returns the observations where both x[i] and y[i] are present.
// Series of different length are compared over the shorter one.
func Paired(x, y []float64) (px, py []float64) {
	n := min(len(x), len(y))
	px = make([]float64, 0, n)
	py = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		px = append(px, x[i])
		py = append(py, y[i])
	}
	return px, py
}

// Median returns the middle value of x, averaging the two middle values
// for even lengths. NaN for an empty series.
func Median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// Shift moves x forward by lag positions, filling the head with NaN, so
// that out[t] == x[t-lag]. A negative lag shifts backwards.
func Shift(x []float64, lag int) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		j := i - lag
		if j < 0 || j >= len(x) {
			out[i] = math.NaN()
			continue
		}
		out[i] = x[j]
	}
	return out
}

// Pct returns part/total*100, or NaN when total is zero.
func Pct(part, total int) float64 {
	if total == 0 {
		return math.NaN()
	}
	return float64(part) / float64(total) * 100
}
