package datasource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// CSVPrices implements PriceSource over a directory holding one
// <TICKER>.csv file per ticker.
type CSVPrices struct {
	dir string
}

// NewCSVPrices creates a CSV price source rooted at dir.
func NewCSVPrices(dir string) *CSVPrices {
	return &CSVPrices{dir: dir}
}

// Name returns the data source name.
func (c *CSVPrices) Name() string { return "CSV (" + c.dir + ")" }

// History returns the bars of the ticker's file that fall within
// [from, to]. Rows without a parseable date are kept for the preprocessor.
func (c *CSVPrices) History(ctx context.Context, ticker string, from, to time.Time) ([]models.RawPriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbol := utils.NormalizeTicker(ticker)
	path := filepath.Join(c.dir, symbol+".csv")
	bars, err := LoadPricesFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", symbol, ErrTickerNotFound)
	}
	if err != nil {
		return nil, err
	}

	from, to = utils.Day(from), utils.Day(to)
	out := bars[:0]
	for _, b := range bars {
		if !b.Date.IsZero() && (b.Date.Before(from) || b.Date.After(to)) {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoPriceData)
	}
	return out, nil
}
