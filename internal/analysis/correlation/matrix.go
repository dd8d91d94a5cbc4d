package correlation

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/mat"

	"github.com/Abigiya-M/News-Sentiment/internal/analysis/series"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

// Matrix is a symmetric matrix of pairwise Pearson coefficients between
// named columns.
type Matrix struct {
	names []string
	sym   *mat.SymDense
}

// CorrelationMatrix correlates every pair of columns in f, each over the
// rows where both columns are present. The diagonal is 1 for columns with
// variance and NaN otherwise.
func CorrelationMatrix(f *models.Frame) *Matrix {
	m := &Matrix{names: f.Names()}
	n := len(f.Columns)
	if n == 0 {
		return m
	}

	m.sym = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var v float64
			if i == j {
				v = selfCorrelation(f.Columns[i].Values)
			} else {
				v, _ = Pearson(f.Columns[i].Values, f.Columns[j].Values)
			}
			m.sym.SetSym(i, j, v)
		}
	}
	return m
}

func selfCorrelation(x []float64) float64 {
	v := series.DropNaN(x)
	if len(v) < 2 || constant(v) {
		return math.NaN()
	}
	return 1
}

// Names returns the column names in matrix order.
func (m *Matrix) Names() []string { return m.names }

// Len returns the number of columns.
func (m *Matrix) Len() int { return len(m.names) }

// At returns the coefficient between columns i and j.
func (m *Matrix) At(i, j int) float64 { return m.sym.At(i, j) }

// Get returns the coefficient between two named columns.
func (m *Matrix) Get(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.At(i, j), true
}

func (m *Matrix) index(name string) int {
	for i, n := range m.names {
		if n == name {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes the column names and values, NaN entries as null.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	values := make([][]null.Float, m.Len())
	for i := range values {
		values[i] = make([]null.Float, m.Len())
		for j := range values[i] {
			values[i][j] = models.Nullable(m.At(i, j))
		}
	}
	return json.Marshal(struct {
		Columns []string       `json:"columns"`
		Values  [][]null.Float `json:"values"`
	}{m.names, values})
}

// StrongestCorrelations lists each upper-triangle pair (i < j) whose
// absolute coefficient is at least threshold, strongest first. Ties keep
// column order.
func StrongestCorrelations(m *Matrix, threshold float64) []models.CorrelationPair {
	var out []models.CorrelationPair
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			v := m.At(i, j)
			if math.Abs(v) >= threshold {
				out = append(out, models.CorrelationPair{First: m.names[i], Second: m.names[j], Value: v})
			}
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].Value) > math.Abs(out[b].Value)
	})
	return out
}
