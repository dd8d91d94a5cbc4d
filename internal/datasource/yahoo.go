package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/Abigiya-M/News-Sentiment/internal/logging"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

const (
	// DefaultYahooBaseURL is the host of the Yahoo Finance chart API.
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

	// DefaultYahooRate is the default request rate (requests per second).
	DefaultYahooRate = 2

	// DefaultCacheTTL is how long fetched price history is reused.
	DefaultCacheTTL = time.Hour
)

// Yahoo implements PriceSource using the Yahoo Finance v8 chart API.
type Yahoo struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	cache    Cache
	cacheTTL time.Duration
	logger   *log.Logger
}

// YahooOption configures a Yahoo source.
type YahooOption func(*Yahoo)

// WithBaseURL sets a custom API host.
func WithBaseURL(baseURL string) YahooOption {
	return func(y *Yahoo) { y.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) YahooOption {
	return func(y *Yahoo) { y.client = c }
}

// WithRateLimit sets the request rate. Non-positive values disable limiting.
func WithRateLimit(perSecond float64) YahooOption {
	return func(y *Yahoo) {
		if perSecond <= 0 {
			y.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := max(int(perSecond), 1)
		y.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCache caches fetched history for ttl. A nil cache disables caching.
func WithCache(c Cache, ttl time.Duration) YahooOption {
	return func(y *Yahoo) {
		y.cache = c
		y.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) YahooOption {
	return func(y *Yahoo) { y.logger = logging.OrNop(l) }
}

// NewYahoo creates a Yahoo Finance price source.
func NewYahoo(opts ...YahooOption) *Yahoo {
	y := &Yahoo{
		baseURL:  DefaultYahooBaseURL,
		client:   &http.Client{Timeout: DefaultTimeout},
		limiter:  rate.NewLimiter(rate.Limit(DefaultYahooRate), DefaultYahooRate),
		cacheTTL: DefaultCacheTTL,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the data source name.
func (y *Yahoo) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol    string `json:"symbol"`
	Currency  string `json:"currency"`
	GMTOffset int    `json:"gmtoffset"`
	Timezone  string `json:"exchangeTimezoneName"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// History returns daily bars from the chart API. Dates are exchange-local
// calendar days.
func (y *Yahoo) History(ctx context.Context, ticker string, from, to time.Time) ([]models.RawPriceBar, error) {
	symbol := utils.ToYahooSymbol(ticker)
	from, to = utils.Day(from), utils.Day(to)
	cacheKey := fmt.Sprintf("yahoo:%s:%s:%s", symbol, utils.FormatDate(from), utils.FormatDate(to))

	if bars, ok := y.cached(ctx, cacheKey); ok {
		y.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("price history cache hit")
		return bars, nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("period1", fmt.Sprint(from.Unix()))
	params.Set("period2", fmt.Sprint(to.AddDate(0, 0, 1).Unix()))
	params.Set("interval", "1d")
	params.Set("events", "history")
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(symbol), params.Encode())

	y.logger.Debug().Str("symbol", symbol).Str("from", utils.FormatDate(from)).Str("to", utils.FormatDate(to)).Msg("fetching price history")

	body, err := doGet(ctx, y.client, reqURL, "application/json")
	if err != nil {
		var httpErr *ErrHTTP
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrTickerNotFound)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	defer body.Close()

	var resp yfChartResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parse yahoo chart %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrTickerNotFound)
		}
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrTickerNotFound)
	}

	bars := parseYFBars(resp.Chart.Result[0])
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoPriceData)
	}

	y.logger.Info().Str("symbol", symbol).Int("bars", len(bars)).Msg("loaded price history")
	y.store(ctx, cacheKey, bars)
	return bars, nil
}

func (y *Yahoo) cached(ctx context.Context, key string) ([]models.RawPriceBar, bool) {
	if y.cache == nil {
		return nil, false
	}
	data, ok, err := y.cache.Get(ctx, key)
	if err != nil {
		y.logger.Warn().Err(err).Str("key", key).Msg("price cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var bars []models.RawPriceBar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, false
	}
	return bars, true
}

func (y *Yahoo) store(ctx context.Context, key string, bars []models.RawPriceBar) {
	if y.cache == nil {
		return
	}
	data, err := json.Marshal(bars)
	if err != nil {
		return
	}
	if err := y.cache.Set(ctx, key, data, y.cacheTTL); err != nil {
		y.logger.Warn().Err(err).Str("key", key).Msg("price cache write failed")
	}
}

// --- Helpers ---

// parseYFBars converts the columnar chart payload into bars. Null entries,
// common on holidays and for the current session, become invalid values.
func parseYFBars(result yfChartResult) []models.RawPriceBar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	loc := time.FixedZone(result.Meta.Timezone, result.Meta.GMTOffset)

	bars := make([]models.RawPriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bars = append(bars, models.RawPriceBar{
			Date:   utils.Day(time.Unix(ts, 0).In(loc)),
			Open:   at(q.Open, i),
			High:   at(q.High, i),
			Low:    at(q.Low, i),
			Close:  at(q.Close, i),
			Volume: at(q.Volume, i),
		})
	}
	return bars
}

func at(vals []*float64, i int) null.Float {
	if i >= len(vals) {
		return null.Float{}
	}
	return null.FloatFromPtr(vals[i])
}
