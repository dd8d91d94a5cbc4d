package correlation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Abigiya-M/News-Sentiment/internal/analysis/series"
)

// SignificanceLevel is the p-value below which a correlation is significant.
const SignificanceLevel = 0.05

// zeroVar is the spread below which a series counts as constant.
const zeroVar = 1e-12

// Pearson returns the Pearson coefficient of x and y and its two-sided
// p-value, over the observations where both are present. Both values are
// NaN with fewer than two pairs or when either side is constant.
func Pearson(x, y []float64) (coef, p float64) {
	px, py := series.Paired(x, y)
	return pearson(px, py)
}

// Spearman is the rank correlation of x and y, with tied values sharing
// their average rank. NaN rules match Pearson.
func Spearman(x, y []float64) (coef, p float64) {
	px, py := series.Paired(x, y)
	if len(px) < 2 {
		return math.NaN(), math.NaN()
	}
	return pearson(rank(px), rank(py))
}

func pearson(x, y []float64) (float64, float64) {
	n := len(x)
	if n < 2 || constant(x) || constant(y) {
		return math.NaN(), math.NaN()
	}

	r := stat.Correlation(x, y, nil)
	r = math.Max(-1, math.Min(1, r))
	return r, pValue(r, n)
}

// pValue is the two-sided p-value of r under the null hypothesis of no
// correlation, from a Student's t distribution with n-2 degrees of freedom.
func pValue(r float64, n int) float64 {
	switch {
	case math.IsNaN(r):
		return math.NaN()
	case n == 2:
		return 1
	case math.Abs(r) == 1:
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

func constant(x []float64) bool {
	return stat.PopStdDev(x, nil) < zeroVar
}

// rank assigns 1-based ranks, averaging the ranks of ties.
func rank(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
