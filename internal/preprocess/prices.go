package preprocess

import (
	"math"
	"sort"

	"github.com/guregu/null/v6"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// CleanPrices orders raw bars by date, keeps the last bar of any repeated
// date, forward-fills then backward-fills each missing OHLCV value and drops
// whatever is still incomplete. Bars without a date are discarded.
func (p *Preprocessor) CleanPrices(raw []models.RawPriceBar) []models.PriceBar {
	bars := make([]models.RawPriceBar, 0, len(raw))
	for _, b := range raw {
		if !b.Date.IsZero() {
			bars = append(bars, b)
		}
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	deduped := bars[:0]
	for _, b := range bars {
		if n := len(deduped); n > 0 && utils.Day(deduped[n-1].Date).Equal(utils.Day(b.Date)) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	bars = deduped

	fields := []func(*models.RawPriceBar) *null.Float{
		func(b *models.RawPriceBar) *null.Float { return &b.Open },
		func(b *models.RawPriceBar) *null.Float { return &b.High },
		func(b *models.RawPriceBar) *null.Float { return &b.Low },
		func(b *models.RawPriceBar) *null.Float { return &b.Close },
		func(b *models.RawPriceBar) *null.Float { return &b.Volume },
	}
	filled := 0
	for _, field := range fields {
		filled += fillColumn(bars, field)
	}

	out := make([]models.PriceBar, 0, len(bars))
	for _, b := range bars {
		if !b.Complete() {
			continue
		}
		out = append(out, models.PriceBar{
			Date:   b.Date,
			Open:   b.Open.Float64,
			High:   b.High.Float64,
			Low:    b.Low.Float64,
			Close:  b.Close.Float64,
			Volume: int64(math.Round(b.Volume.Float64)),
		})
	}

	p.logger.Info().
		Int("filled", filled).
		Int("dropped", len(raw)-len(out)).
		Int("rows", len(out)).
		Msg("cleaned stock data")
	return out
}

// fillColumn forward-fills then backward-fills one column in place and
// returns the number of values filled. Non-finite values count as missing.
func fillColumn(bars []models.RawPriceBar, field func(*models.RawPriceBar) *null.Float) int {
	filled := 0
	valid := func(f *null.Float) bool {
		return f.Valid && !math.IsNaN(f.Float64) && !math.IsInf(f.Float64, 0)
	}

	var last *null.Float
	for i := range bars {
		f := field(&bars[i])
		if valid(f) {
			last = f
			continue
		}
		*f = null.Float{}
		if last != nil {
			*f = null.FloatFrom(last.Float64)
			filled++
		}
	}

	var next *null.Float
	for i := len(bars) - 1; i >= 0; i-- {
		f := field(&bars[i])
		if f.Valid {
			next = f
			continue
		}
		if next != nil {
			*f = null.FloatFrom(next.Float64)
			filled++
		}
	}
	return filled
}

// DailyReturns appends the percentage change of each close over the
// previous close. The first bar's return is NaN.
func (p *Preprocessor) DailyReturns(bars []models.PriceBar) []models.ReturnBar {
	out := make([]models.ReturnBar, len(bars))
	for i, b := range bars {
		out[i] = models.ReturnBar{PriceBar: b, DailyReturn: math.NaN()}
		if i > 0 {
			out[i].DailyReturn = (b.Close/bars[i-1].Close - 1) * 100
		}
	}
	return out
}
