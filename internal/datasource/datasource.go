// Package datasource loads news and daily price data for the analysis
// pipeline. Prices come from the Yahoo Finance chart API or a directory of
// CSV files, news from CSV files or RSS feeds.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

// PriceSource returns raw daily bars for a ticker. Bars may contain gaps
// and are not guaranteed to be sorted; the preprocessor cleans them.
type PriceSource interface {
	// Name returns the human-readable name of this source.
	Name() string

	// History returns daily bars between from and to, both inclusive.
	History(ctx context.Context, ticker string, from, to time.Time) ([]models.RawPriceBar, error)
}

// --- Sentinel errors ---

// ErrNotSupported is returned when a source does not support a request.
var ErrNotSupported = errors.New("operation not supported by this data source")

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrNoPriceData is returned when a ticker resolves but has no bars in the
// requested range.
var ErrNoPriceData = errors.New("no price data")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is sent with every request. Yahoo rejects clients without
// a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 15 * time.Second

// doGet issues a GET accepting the given media type. Responses with status
// >= 400 become *ErrHTTP; otherwise the caller closes the body.
func doGet(ctx context.Context, client *http.Client, url, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if accept == "" {
		accept = "*/*"
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}
