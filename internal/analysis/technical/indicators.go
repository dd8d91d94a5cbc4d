// Package technical implements technical analysis indicators over daily
// price bars. Every function returns one value per input bar, with NaN
// where the indicator is not yet defined.
package technical

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

// RSI calculates the Relative Strength Index with Wilder's smoothing.
// Default period is 14. Returns values 0–100, first defined at index period.
func RSI(closes []float64, period int) []float64 {
	if period <= 0 {
		period = 14
	}
	n := len(closes)
	rsi := nans(n)
	if n < period+1 {
		return rsi
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	rsi[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		rsi[i] = rsiValue(avgGain, avgLoss)
	}

	return rsi
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACDResult holds the three MACD series.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD calculates the Moving Average Convergence Divergence.
// Default parameters: fast=12, slow=26, signal=9. The signal line is an
// EMA of the MACD line starting where the slow EMA is first defined.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}

	n := len(closes)
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	line := make([]float64, n)
	for i := range line {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	sig := emaFrom(line, slow-1, signal)
	hist := make([]float64, n)
	for i := range hist {
		hist[i] = line[i] - sig[i]
	}

	return MACDResult{MACD: line, Signal: sig, Histogram: hist}
}

// Bands holds Bollinger Bands.
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// BollingerBands calculates Bollinger Bands around an SMA using the
// population standard deviation of the window.
// Default: period=20, stddev multiplier=2.
func BollingerBands(closes []float64, period int, mult float64) Bands {
	if period <= 0 {
		period = 20
	}
	if mult <= 0 {
		mult = 2.0
	}

	n := len(closes)
	b := Bands{Upper: nans(n), Middle: SMA(closes, period), Lower: nans(n)}
	for i := period - 1; i < n; i++ {
		sd := stat.PopStdDev(closes[i-period+1:i+1], nil)
		b.Upper[i] = b.Middle[i] + mult*sd
		b.Lower[i] = b.Middle[i] - mult*sd
	}
	return b
}

// Position locates each close within its bands: 0 at the lower band, 1 at
// the upper. NaN where the bands are undefined or have zero width.
func (b Bands) Position(closes []float64) []float64 {
	out := nans(len(closes))
	for i, c := range closes {
		width := b.Upper[i] - b.Lower[i]
		if math.IsNaN(width) || width == 0 {
			continue
		}
		out[i] = (c - b.Lower[i]) / width
	}
	return out
}

// ATR calculates the Average True Range for the given period. The first
// value, at index period, is the mean of the true ranges of bars 1..period;
// later values use Wilder's smoothing.
func ATR(bars []models.PriceBar, period int) []float64 {
	if period <= 0 {
		period = 14
	}
	n := len(bars)
	atr := nans(n)
	if n < period+1 {
		return atr
	}

	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	atr[period] = sum / float64(period)

	for i := period + 1; i < n; i++ {
		atr[i] = (atr[i-1]*float64(period-1) + tr[i]) / float64(period)
	}

	return atr
}

// PctChange returns the percentage change between consecutive values.
// The first value is NaN.
func PctChange(data []float64) []float64 {
	out := nans(len(data))
	for i := 1; i < len(data); i++ {
		if data[i-1] != 0 {
			out[i] = (data[i]/data[i-1] - 1) * 100
		}
	}
	return out
}

// Volatility is the rolling sample standard deviation of daily returns
// over period bars, in percent. A window containing a missing return is NaN.
func Volatility(closes []float64, period int) []float64 {
	if period <= 1 {
		period = 20
	}
	returns := PctChange(closes)
	out := nans(len(closes))

window:
	for i := period - 1; i < len(returns); i++ {
		w := returns[i-period+1 : i+1]
		for _, v := range w {
			if math.IsNaN(v) {
				continue window
			}
		}
		out[i] = stat.StdDev(w, nil)
	}
	return out
}
