package technical

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Abigiya-M/News-Sentiment/internal/analysis/series"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

// Column names of the indicator frame.
const (
	ColClose         = "Close"
	ColDailyReturn   = "Daily_Return"
	ColSMA20         = "SMA_20"
	ColSMA50         = "SMA_50"
	ColEMA12         = "EMA_12"
	ColEMA26         = "EMA_26"
	ColRSI14         = "RSI_14"
	ColMACD          = "MACD"
	ColMACDSignal    = "MACD_Signal"
	ColMACDHistogram = "MACD_Histogram"
	ColBBUpper       = "BB_Upper"
	ColBBMiddle      = "BB_Middle"
	ColBBLower       = "BB_Lower"
	ColBBPosition    = "BB_Position"
	ColVolatility20  = "Volatility_20"
	ColATR14         = "ATR_14"
)

// IndicatorColumns lists the indicator columns of IndicatorFrame, excluding
// the close and the return.
var IndicatorColumns = []string{
	ColSMA20, ColSMA50, ColEMA12, ColEMA26, ColRSI14,
	ColMACD, ColMACDSignal, ColMACDHistogram,
	ColBBUpper, ColBBMiddle, ColBBLower, ColBBPosition,
	ColVolatility20, ColATR14,
}

// IndicatorFrame computes every standard indicator for bars, which must be
// in date order, into a frame indexed by bar date.
func IndicatorFrame(bars []models.PriceBar) *models.Frame {
	closes := models.Closes(bars)
	macd := MACD(closes, 12, 26, 9)
	bands := BollingerBands(closes, 20, 2)

	f := &models.Frame{Index: make([]time.Time, len(bars))}
	for i, b := range bars {
		f.Index[i] = b.Date
	}

	f.Columns = []models.Column{
		{Name: ColClose, Values: closes},
		{Name: ColDailyReturn, Values: PctChange(closes)},
		{Name: ColSMA20, Values: SMA(closes, 20)},
		{Name: ColSMA50, Values: SMA(closes, 50)},
		{Name: ColEMA12, Values: EMA(closes, 12)},
		{Name: ColEMA26, Values: EMA(closes, 26)},
		{Name: ColRSI14, Values: RSI(closes, 14)},
		{Name: ColMACD, Values: macd.MACD},
		{Name: ColMACDSignal, Values: macd.Signal},
		{Name: ColMACDHistogram, Values: macd.Histogram},
		{Name: ColBBUpper, Values: bands.Upper},
		{Name: ColBBMiddle, Values: bands.Middle},
		{Name: ColBBLower, Values: bands.Lower},
		{Name: ColBBPosition, Values: bands.Position(closes)},
		{Name: ColVolatility20, Values: Volatility(closes, 20)},
		{Name: ColATR14, Values: ATR(bars, 14)},
	}
	return f
}

// Summary reads the latest indicator values from a frame built by
// IndicatorFrame. Current values come from the last row, so they are NaN
// when the indicator is undefined there; missing columns also give NaN.
func Summary(f *models.Frame) models.IndicatorSummary {
	last := func(name string) float64 {
		vals := f.Column(name)
		if len(vals) == 0 {
			return math.NaN()
		}
		return vals[len(vals)-1]
	}

	s := models.IndicatorSummary{
		RSICurrent:    last(ColRSI14),
		RSIAverage:    math.NaN(),
		MACDCurrent:   last(ColMACD),
		PriceSMARatio: last(ColClose) / last(ColSMA20),
	}
	if rsi := series.DropNaN(f.Column(ColRSI14)); len(rsi) > 0 {
		s.RSIAverage = stat.Mean(rsi, nil)
	}
	return s
}
