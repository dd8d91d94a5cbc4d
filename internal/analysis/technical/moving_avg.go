package technical

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// nans returns a slice of n NaNs.
func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA calculates the Simple Moving Average for the given period. The first
// period-1 values are NaN; a series shorter than period is all NaN.
func SMA(data []float64, period int) []float64 {
	n := len(data)
	result := nans(n)
	if n < period || period <= 0 {
		return result
	}

	sum := floats.Sum(data[:period])
	result[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		sum += data[i] - data[i-period]
		result[i] = sum / float64(period)
	}

	return result
}

// EMA calculates the Exponential Moving Average for the given period,
// seeded with the SMA of the first period values.
func EMA(data []float64, period int) []float64 {
	return emaFrom(data, 0, period)
}

// emaFrom computes an EMA over data[start:], leaving everything before the
// seed as NaN.
func emaFrom(data []float64, start, period int) []float64 {
	n := len(data)
	ema := nans(n)
	if period <= 0 || start < 0 || n-start < period {
		return ema
	}

	k := 2.0 / float64(period+1)
	seed := start + period - 1
	ema[seed] = floats.Sum(data[start:seed+1]) / float64(period)

	for i := seed + 1; i < n; i++ {
		ema[i] = data[i]*k + ema[i-1]*(1-k)
	}

	return ema
}

// Latest returns the last non-NaN value of vals, or NaN.
func Latest(vals []float64) float64 {
	for i := len(vals) - 1; i >= 0; i-- {
		if !math.IsNaN(vals[i]) {
			return vals[i]
		}
	}
	return math.NaN()
}
