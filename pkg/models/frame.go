package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/guregu/null/v6"
)

// Column is a named numeric series. Missing values are NaN.
type Column struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string       `json:"name"`
		Values []null.Float `json:"values"`
	}{c.Name, NullableSlice(c.Values)})
}

// Frame is an ordered set of equal-length numeric columns, optionally
// indexed by date.
type Frame struct {
	Index   []time.Time `json:"index,omitempty"`
	Columns []Column    `json:"columns"`
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.Columns) > 0 {
		return len(f.Columns[0].Values)
	}
	return len(f.Index)
}

// Add appends a column. It fails if the column name already exists or the
// length differs from the existing rows.
func (f *Frame) Add(name string, values []float64) error {
	if f.Has(name) {
		return fmt.Errorf("frame: duplicate column %q", name)
	}
	if (len(f.Columns) > 0 || f.Index != nil) && len(values) != f.Len() {
		return fmt.Errorf("frame: column %q has %d rows, want %d", name, len(values), f.Len())
	}
	f.Columns = append(f.Columns, Column{Name: name, Values: values})
	return nil
}

// Column returns the named column or nil.
func (f *Frame) Column(name string) []float64 {
	for _, c := range f.Columns {
		if c.Name == name {
			return c.Values
		}
	}
	return nil
}

// Has reports whether the named column exists.
func (f *Frame) Has(name string) bool {
	for _, c := range f.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Last returns the last non-NaN value of a column, or NaN.
func (f *Frame) Last(name string) float64 {
	vals := f.Column(name)
	for i := len(vals) - 1; i >= 0; i-- {
		if !math.IsNaN(vals[i]) {
			return vals[i]
		}
	}
	return math.NaN()
}

// InnerJoin returns the rows whose index date appears in both frames, in
// f's order, with f's columns followed by other's. Index values are
// compared by calendar instant. Columns of other whose name already exists
// in f are skipped.
func (f *Frame) InnerJoin(other *Frame) *Frame {
	pos := make(map[int64]int, len(other.Index))
	for i, t := range other.Index {
		if _, seen := pos[t.UnixNano()]; !seen {
			pos[t.UnixNano()] = i
		}
	}

	var left, right []int
	for i, t := range f.Index {
		if j, ok := pos[t.UnixNano()]; ok {
			left = append(left, i)
			right = append(right, j)
		}
	}

	out := &Frame{Index: make([]time.Time, len(left))}
	for k, i := range left {
		out.Index[k] = f.Index[i]
	}
	pick := func(vals []float64, rows []int) []float64 {
		col := make([]float64, len(rows))
		for k, i := range rows {
			col[k] = vals[i]
		}
		return col
	}
	for _, c := range f.Columns {
		out.Columns = append(out.Columns, Column{Name: c.Name, Values: pick(c.Values, left)})
	}
	for _, c := range other.Columns {
		if f.Has(c.Name) {
			continue
		}
		out.Columns = append(out.Columns, Column{Name: c.Name, Values: pick(c.Values, right)})
	}
	return out
}
