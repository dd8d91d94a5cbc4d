// Package pipeline runs the full news-sentiment analysis for one or more
// tickers: cleaning, scoring, aligning, correlating and risk profiling.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/Abigiya-M/News-Sentiment/internal/analysis/correlation"
	"github.com/Abigiya-M/News-Sentiment/internal/analysis/risk"
	"github.com/Abigiya-M/News-Sentiment/internal/analysis/sentiment"
	"github.com/Abigiya-M/News-Sentiment/internal/analysis/technical"
	"github.com/Abigiya-M/News-Sentiment/internal/config"
	"github.com/Abigiya-M/News-Sentiment/internal/datasource"
	"github.com/Abigiya-M/News-Sentiment/internal/logging"
	"github.com/Abigiya-M/News-Sentiment/internal/preprocess"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// ErrNoNews is returned when no cleaned headline belongs to the ticker.
var ErrNoNews = errors.New("no news for ticker")

// Config holds the analysis parameters.
type Config struct {
	Thresholds           models.Thresholds
	RiskFreeRate         float64
	TradingDays          int
	BenchmarkReturn      float64
	ForwardDays          int
	MaxLag               int
	CorrelationThreshold float64
	Concurrency          int
}

// DefaultConfig returns the standard analysis parameters.
func DefaultConfig() Config {
	return Config{
		Thresholds:           models.DefaultThresholds(),
		RiskFreeRate:         risk.DefaultRiskFreeRate,
		TradingDays:          risk.DefaultTradingDays,
		BenchmarkReturn:      risk.DefaultBenchmarkReturn,
		ForwardDays:          5,
		MaxLag:               5,
		CorrelationThreshold: 0.3,
		Concurrency:          4,
	}
}

// ConfigFrom extracts the analysis parameters from application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Thresholds:           cfg.Sentiment.Thresholds(),
		RiskFreeRate:         cfg.Analysis.RiskFreeRate,
		TradingDays:          cfg.Analysis.TradingDays,
		BenchmarkReturn:      cfg.Analysis.BenchmarkReturn,
		ForwardDays:          cfg.Analysis.ForwardDays,
		MaxLag:               cfg.Analysis.MaxLag,
		CorrelationThreshold: cfg.Analysis.CorrelationThreshold,
		Concurrency:          cfg.Analysis.Concurrency,
	}
}

// Pipeline wires the analysis components to a price source.
type Pipeline struct {
	cfg       Config
	prices    datasource.PriceSource
	pre       *preprocess.Preprocessor
	sentiment *sentiment.Analyzer
	corr      *correlation.Analyzer
	logger    *log.Logger
	now       func() time.Time
}

// New creates a pipeline. A nil scorer uses the built-in lexicon and a nil
// logger discards output.
func New(cfg Config, prices datasource.PriceSource, scorer sentiment.Scorer, logger *log.Logger) *Pipeline {
	logger = logging.OrNop(logger)
	return &Pipeline{
		cfg:       cfg,
		prices:    prices,
		pre:       preprocess.New(logger),
		sentiment: sentiment.New(scorer, cfg.Thresholds, logger),
		corr:      correlation.New(cfg.Thresholds, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// DateRange returns the first and last calendar day of the news
// timestamps. ok is false when no record has a timestamp.
func DateRange(news []models.NewsRecord) (from, to time.Time, ok bool) {
	for _, n := range news {
		if n.Timestamp.IsZero() {
			continue
		}
		d := utils.Day(n.Timestamp)
		if !ok || d.Before(from) {
			from = d
		}
		if !ok || d.After(to) {
			to = d
		}
		ok = true
	}
	return from, to, ok
}

// Tickers returns the distinct stocks of cleaned news, sorted.
func Tickers(news []models.NewsRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range news {
		if !seen[n.Stock] {
			seen[n.Stock] = true
			out = append(out, n.Stock)
		}
	}
	sort.Strings(out)
	return out
}

// Analyze runs the full analysis for one ticker over the given news.
func (p *Pipeline) Analyze(ctx context.Context, ticker string, news []models.NewsRecord) (*models.TickerReport, error) {
	return p.analyze(ctx, utils.NormalizeTicker(ticker), p.pre.CleanNews(news))
}

// AnalyzeAll analyzes tickers concurrently, or every stock in the news
// when tickers is empty. Reports come back in ticker order; a ticker that
// fails carries its error in TickerReport.Error. Only cancellation of ctx
// fails the whole batch.
func (p *Pipeline) AnalyzeAll(ctx context.Context, news []models.NewsRecord, tickers []string) ([]*models.TickerReport, error) {
	cleaned := p.pre.CleanNews(news)
	if len(tickers) == 0 {
		tickers = Tickers(cleaned)
	}

	reports := make([]*models.TickerReport, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Concurrency, 1))

	for i, t := range tickers {
		symbol := utils.NormalizeTicker(t)
		g.Go(func() error {
			report, err := p.analyze(gctx, symbol, cleaned)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Error().Err(err).Str("ticker", symbol).Msg("ticker analysis failed")
				report = &models.TickerReport{Ticker: symbol, GeneratedAt: p.now().UTC(), Error: err.Error()}
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (p *Pipeline) analyze(ctx context.Context, symbol string, cleaned []models.NewsRecord) (*models.TickerReport, error) {
	var news []models.NewsRecord
	for _, n := range cleaned {
		if n.Stock == symbol {
			news = append(news, n)
		}
	}
	if len(news) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoNews)
	}

	from, to, _ := DateRange(news)
	to = to.AddDate(0, 0, p.cfg.ForwardDays+1)

	p.logger.Info().Str("ticker", symbol).Int("news", len(news)).
		Str("from", utils.FormatDate(from)).Str("to", utils.FormatDate(to)).Msg("analyzing ticker")

	raw, err := p.prices.History(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("load prices for %s: %w", symbol, err)
	}
	bars := p.pre.CleanPrices(raw)
	if len(bars) < 2 {
		return nil, fmt.Errorf("%s: %w (%d clean bars)", symbol, datasource.ErrNoPriceData, len(bars))
	}
	returns := p.pre.DailyReturns(bars)

	// Headlines are grouped by the trading day they can first affect.
	aligned := p.pre.AlignDates(news, bars, p.cfg.ForwardDays)
	onTradingDays := make([]models.NewsRecord, len(aligned))
	for i, a := range aligned {
		onTradingDays[i] = a.NewsRecord
		onTradingDays[i].Timestamp = a.TradingDate
	}

	scored := p.sentiment.ScoreAll(onTradingDays)
	daily := p.sentiment.AggregateDaily(scored)

	report := &models.TickerReport{
		Ticker:       symbol,
		GeneratedAt:  p.now().UTC(),
		NewsCount:    len(news),
		AlignedCount: len(aligned),
		TradingDays:  len(bars),
		Sentiment:    p.sentiment.SummaryStats(scored),
		Daily:        daily,
		Correlation:  p.corr.SentimentReturnCorrelation(daily, returns),
	}

	rows := report.Correlation.Rows
	if !report.Correlation.Empty() {
		report.Lagged = p.corr.LaggedCorrelationRows(rows, p.cfg.MaxLag)
		report.Categories = p.corr.CorrelationByCategory(rows)
	}

	indicators := technical.IndicatorFrame(bars)
	report.Indicators = technical.Summary(indicators)

	joined := correlation.SentimentFrame(rows).InnerJoin(indicators)
	report.StrongPairs = correlation.StrongestCorrelations(correlation.CorrelationMatrix(joined), p.cfg.CorrelationThreshold)

	ranked, err := correlation.CorrelateIndicators(indicators, technical.IndicatorColumns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	report.IndicatorRanking = correlation.RankIndicators(ranked)

	analyzer, err := risk.NewAnalyzer(models.Closes(bars), symbol,
		risk.WithRiskFreeRate(p.cfg.RiskFreeRate),
		risk.WithTradingDays(p.cfg.TradingDays),
		risk.WithLogger(p.logger),
	)
	if err != nil {
		p.logger.Warn().Err(err).Str("ticker", symbol).Msg("skipping risk metrics")
	} else {
		metrics := analyzer.AllMetricsWithBenchmark(p.cfg.BenchmarkReturn)
		report.Risk = &metrics
		report.RiskLevel = risk.ClassifyRiskLevel(metrics.SharpeRatio)
	}

	p.logger.Info().Str("ticker", symbol).Int("days", report.Correlation.DataPoints).
		Float64("pearson", report.Correlation.Pearson.Coefficient).Msg("ticker analysis complete")
	return report, nil
}
