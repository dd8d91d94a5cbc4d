package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// NewsColumns are the required columns of a news CSV.
var NewsColumns = []string{"headline", "url", "publisher", "date", "stock"}

// PriceColumns are the required columns of a price CSV.
var PriceColumns = []string{"date", "open", "high", "low", "close", "volume"}

// MissingColumnsError reports required columns absent from a CSV header.
type MissingColumnsError struct {
	Source  string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Columns, ", "))
}

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(r *csv.Reader, source string, required []string) (header, error) {
	names, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnsError{Source: source, Columns: required}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}

	h := make(header, len(names))
	for i, n := range names {
		n = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(n, "\ufeff")))
		if _, dup := h[n]; !dup {
			h[n] = i
		}
	}

	var missing []string
	for _, c := range required {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Source: source, Columns: missing}
	}
	return h, nil
}

func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

// --- News ---

// LoadNews reads news records from CSV. Unparseable dates are left as the
// zero time for the preprocessor to drop.
func LoadNews(r io.Reader, source string) ([]models.NewsRecord, error) {
	cr := newReader(r)
	h, err := readHeader(cr, source, NewsColumns)
	if err != nil {
		return nil, err
	}

	var out []models.NewsRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		ts, _ := utils.ParseTimestamp(h.get(row, "date"))
		out = append(out, models.NewsRecord{
			Headline:  h.get(row, "headline"),
			URL:       h.get(row, "url"),
			Publisher: h.get(row, "publisher"),
			Timestamp: ts,
			Stock:     h.get(row, "stock"),
		})
	}
	return out, nil
}

// LoadNewsFile reads a news CSV from disk.
func LoadNewsFile(path string) ([]models.NewsRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open news file: %w", err)
	}
	defer f.Close()
	return LoadNews(f, path)
}

// --- Prices ---

// LoadPrices reads raw price bars from CSV. Empty or non-numeric values are
// invalid; rows with an unparseable date keep the zero date.
func LoadPrices(r io.Reader, source string) ([]models.RawPriceBar, error) {
	cr := newReader(r)
	h, err := readHeader(cr, source, PriceColumns)
	if err != nil {
		return nil, err
	}

	var out []models.RawPriceBar
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		var bar models.RawPriceBar
		if ts, err := utils.ParseTimestamp(h.get(row, "date")); err == nil {
			bar.Date = utils.Day(ts)
		}
		bar.Open = parseNumber(h.get(row, "open"))
		bar.High = parseNumber(h.get(row, "high"))
		bar.Low = parseNumber(h.get(row, "low"))
		bar.Close = parseNumber(h.get(row, "close"))
		bar.Volume = parseNumber(h.get(row, "volume"))
		out = append(out, bar)
	}
	return out, nil
}

// LoadPricesFile reads a price CSV from disk.
func LoadPricesFile(path string) ([]models.RawPriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()
	return LoadPrices(f, path)
}

func parseNumber(s string) null.Float {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return null.Float{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(d.InexactFloat64())
}

// --- Writers ---

// formatNumber renders v with fixed precision. NaN and ±Inf are empty.
func formatNumber(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// WriteDailySentiment writes daily aggregates as CSV.
func WriteDailySentiment(w io.Writer, rows []models.DailySentiment) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"date", "avg_polarity", "std_polarity", "min_polarity", "max_polarity",
		"article_count", "avg_subjectivity", "positive_count", "positive_pct",
	})
	for _, r := range rows {
		_ = cw.Write([]string{
			utils.FormatDate(r.Date),
			formatNumber(r.AvgPolarity, 6),
			formatNumber(r.StdPolarity, 6),
			formatNumber(r.MinPolarity, 6),
			formatNumber(r.MaxPolarity, 6),
			strconv.Itoa(r.ArticleCount),
			formatNumber(r.AvgSubjectivity, 6),
			strconv.Itoa(r.PositiveCount),
			formatNumber(r.PositivePct, 2),
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteScoredNews writes scored headlines as CSV.
func WriteScoredNews(w io.Writer, rows []models.ScoredNews) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(append(append([]string{}, NewsColumns...), "polarity", "subjectivity", "sentiment_label"))
	for _, r := range rows {
		_ = cw.Write([]string{
			r.Headline,
			r.URL,
			r.Publisher,
			r.Timestamp.Format("2006-01-02 15:04:05-07:00"),
			r.Stock,
			formatNumber(r.Polarity, 6),
			formatNumber(r.Subjectivity, 6),
			string(r.Label),
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteReturns writes cleaned bars with their daily return as CSV.
func WriteReturns(w io.Writer, bars []models.ReturnBar) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume", "Daily_Return"})
	for _, b := range bars {
		_ = cw.Write([]string{
			utils.FormatDate(b.Date),
			formatNumber(b.Open, 4),
			formatNumber(b.High, 4),
			formatNumber(b.Low, 4),
			formatNumber(b.Close, 4),
			strconv.FormatInt(b.Volume, 10),
			formatNumber(b.DailyReturn, 6),
		})
	}
	cw.Flush()
	return cw.Error()
}
