// Package preprocess cleans raw news and price data, aligns news with the
// trading calendar and derives daily returns.
package preprocess

import (
	"sort"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/Abigiya-M/News-Sentiment/internal/logging"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// Preprocessor holds no state besides its logger; every method returns new
// slices and leaves its inputs untouched.
type Preprocessor struct {
	logger *log.Logger
}

// New creates a Preprocessor. A nil logger discards output.
func New(logger *log.Logger) *Preprocessor {
	return &Preprocessor{logger: logging.OrNop(logger)}
}

type newsKey struct {
	headline string
	ts       int64
	stock    string
}

// CleanNews trims text fields, uppercases tickers and moves timestamps to
// UTC, then drops records missing a headline, timestamp or stock and removes
// duplicates on (headline, timestamp, stock), keeping the first occurrence.
func (p *Preprocessor) CleanNews(records []models.NewsRecord) []models.NewsRecord {
	out := make([]models.NewsRecord, 0, len(records))
	seen := make(map[newsKey]struct{}, len(records))
	missing, dupes := 0, 0

	for _, r := range records {
		r.Headline = strings.TrimSpace(r.Headline)
		r.Publisher = strings.TrimSpace(r.Publisher)
		r.URL = strings.TrimSpace(r.URL)
		r.Stock = strings.ToUpper(strings.TrimSpace(r.Stock))

		if r.Headline == "" || r.Timestamp.IsZero() || r.Stock == "" {
			missing++
			continue
		}
		r.Timestamp = r.Timestamp.UTC()

		k := newsKey{r.Headline, r.Timestamp.UnixNano(), r.Stock}
		if _, ok := seen[k]; ok {
			dupes++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}

	p.logger.Info().
		Int("duplicates", dupes).
		Int("missing", missing).
		Int("remaining", len(out)).
		Msg("cleaned news data")
	return out
}

// AlignDates maps each record to the earliest trading date on or after its
// calendar date and collects the trading dates that follow within
// forwardDays calendar days. Records dated after the last trading date are
// dropped. The trading calendar is the date set of bars.
func (p *Preprocessor) AlignDates(news []models.NewsRecord, bars []models.PriceBar, forwardDays int) []models.AlignedNews {
	days := tradingDays(bars)
	out := make([]models.AlignedNews, 0, len(news))

	for _, r := range news {
		day := utils.Day(r.Timestamp)
		i := sort.Search(len(days), func(i int) bool { return !days[i].Before(day) })
		if i == len(days) {
			continue
		}
		td := days[i]
		limit := td.AddDate(0, 0, forwardDays)

		var window []time.Time
		for j := i + 1; j < len(days) && !days[j].After(limit); j++ {
			window = append(window, days[j])
		}

		out = append(out, models.AlignedNews{
			NewsRecord:    r,
			TradingDate:   td,
			ForwardWindow: window,
		})
	}

	p.logger.Info().
		Int("aligned", len(out)).
		Int("total", len(news)).
		Msg("aligned news with trading dates")
	return out
}

// tradingDays returns the sorted, distinct calendar dates of bars.
func tradingDays(bars []models.PriceBar) []time.Time {
	days := make([]time.Time, 0, len(bars))
	for _, b := range bars {
		days = append(days, utils.Day(b.Date))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	uniq := days[:0]
	for i, d := range days {
		if i == 0 || !d.Equal(uniq[len(uniq)-1]) {
			uniq = append(uniq, d)
		}
	}
	return uniq
}

// NormalizeText lowercases text and collapses runs of whitespace.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// HeadlineFeatures returns the character length and word count of every
// headline, in input order.
func HeadlineFeatures(records []models.NewsRecord) []models.HeadlineFeatures {
	out := make([]models.HeadlineFeatures, len(records))
	for i, r := range records {
		out[i] = models.HeadlineFeatures{
			Length:    len([]rune(r.Headline)),
			WordCount: len(strings.Fields(r.Headline)),
		}
	}
	return out
}
