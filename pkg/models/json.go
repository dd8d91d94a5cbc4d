package models

import (
	"math"

	"github.com/guregu/null/v6"
)

// Nullable maps NaN and ±Inf to an invalid null.Float so they encode as JSON
// null instead of failing in encoding/json.
func Nullable(f float64) null.Float {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// NullableSlice applies Nullable element-wise.
func NullableSlice(vals []float64) []null.Float {
	out := make([]null.Float, len(vals))
	for i, v := range vals {
		out[i] = Nullable(v)
	}
	return out
}
