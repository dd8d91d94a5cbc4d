// Package models defines the core data structures used throughout News-Sentiment.
package models

import (
	"encoding/json"
	"time"

	"github.com/guregu/null/v6"
)

// RawPriceBar is a price bar as it comes off a loader. Any value may be
// missing or non-numeric, in which case it is invalid.
type RawPriceBar struct {
	Date   time.Time  `json:"date"`
	Open   null.Float `json:"open"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Close  null.Float `json:"close"`
	Volume null.Float `json:"volume"`
}

// Complete reports whether every OHLCV value is present.
func (b RawPriceBar) Complete() bool {
	return b.Open.Valid && b.High.Valid && b.Low.Valid && b.Close.Valid && b.Volume.Valid
}

// PriceBar represents a single cleaned daily bar. Within a cleaned series
// dates are strictly increasing and no value is missing.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// ReturnBar is a PriceBar with its percentage return over the previous bar.
// DailyReturn is NaN for the first bar of a series.
type ReturnBar struct {
	PriceBar
	DailyReturn float64 `json:"daily_return"`
}

func (r ReturnBar) MarshalJSON() ([]byte, error) {
	type plain ReturnBar
	return json.Marshal(struct {
		plain
		DailyReturn null.Float `json:"daily_return"`
	}{plain(r), Nullable(r.DailyReturn)})
}

// Closes extracts the close prices of a bar series.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
