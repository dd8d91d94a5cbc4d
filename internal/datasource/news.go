package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/Abigiya-M/News-Sentiment/internal/logging"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// Feed is an RSS/Atom news feed.
type Feed struct {
	Name string
	URL  string
}

// RSS fetches headlines from news feeds and attributes them to tickers by
// keyword.
type RSS struct {
	feeds   []Feed
	parser  *gofeed.Parser
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewRSS creates a feed source. A nil logger discards output.
func NewRSS(feeds []Feed, logger *log.Logger) *RSS {
	return &RSS{
		feeds:   feeds,
		parser:  gofeed.NewParser(),
		limiter: rate.NewLimiter(rate.Limit(2), 2), // conservative: 2 req/s
		logger:  logging.OrNop(logger),
	}
}

// Name returns the data source name.
func (n *RSS) Name() string { return "RSS feeds" }

// Headlines returns one record per (item, ticker) for every feed item that
// mentions one of tickers, newest first. Feeds that fail are skipped; an
// error is returned only when every feed fails.
func (n *RSS) Headlines(ctx context.Context, tickers []string) ([]models.NewsRecord, error) {
	var (
		out  []models.NewsRecord
		errs []error
	)
	for _, f := range n.feeds {
		items, err := n.fetch(ctx, f)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			n.logger.Warn().Err(err).Str("feed", f.Name).Msg("skipping feed")
			errs = append(errs, err)
			continue
		}
		for _, item := range items {
			for _, t := range tickers {
				symbol := utils.NormalizeTicker(t)
				if mentions(item.Headline+" "+item.summary, symbol) {
					rec := item.NewsRecord
					rec.Stock = symbol
					out = append(out, rec)
				}
			}
		}
	}
	if len(n.feeds) > 0 && len(errs) == len(n.feeds) {
		return nil, fmt.Errorf("all feeds failed: %w", errors.Join(errs...))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	n.logger.Info().Int("feeds", len(n.feeds)).Int("headlines", len(out)).Msg("fetched feed headlines")
	return out, nil
}

type feedItem struct {
	models.NewsRecord
	summary string
}

// fetch parses a feed and returns its items.
func (n *RSS) fetch(ctx context.Context, f Feed) ([]feedItem, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.Name, err)
	}

	items := make([]feedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		it := feedItem{
			NewsRecord: models.NewsRecord{
				Headline:  cleanHTML(item.Title),
				URL:       item.Link,
				Publisher: f.Name,
			},
			summary: cleanHTML(item.Description),
		}
		switch {
		case item.PublishedParsed != nil:
			it.Timestamp = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			it.Timestamp = item.UpdatedParsed.UTC()
		default:
			it.Timestamp = time.Now().UTC()
		}
		items = append(items, it)
	}
	return items, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// companyNames maps tickers to names that identify them in headlines.
var companyNames = map[string][]string{
	"AAPL":  {"apple"},
	"MSFT":  {"microsoft"},
	"GOOG":  {"google", "alphabet"},
	"GOOGL": {"google", "alphabet"},
	"AMZN":  {"amazon"},
	"META":  {"meta platforms", "facebook"},
	"NVDA":  {"nvidia"},
	"TSLA":  {"tesla"},
	"NFLX":  {"netflix"},
	"AMD":   {"advanced micro devices"},
	"INTC":  {"intel"},
	"JPM":   {"jpmorgan", "jp morgan"},
	"BAC":   {"bank of america"},
	"WMT":   {"walmart"},
	"DIS":   {"disney"},
	"KO":    {"coca-cola", "coca cola"},
}

// tickerKeywords returns search keywords for a ticker.
// For example, "AAPL" → ["aapl", "apple"].
func tickerKeywords(symbol string) []string {
	keywords := []string{strings.ToLower(symbol)}
	return append(keywords, companyNames[symbol]...)
}

// mentions reports whether text names the ticker or its company as whole
// words.
func mentions(text, symbol string) bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '&'
	})
	padded := " " + strings.Join(words, " ") + " "
	for _, kw := range tickerKeywords(symbol) {
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}
