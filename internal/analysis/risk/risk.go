// Package risk computes the risk/return profile of a price series.
package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/phuslu/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Abigiya-M/News-Sentiment/internal/analysis/series"
	"github.com/Abigiya-M/News-Sentiment/internal/logging"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

const (
	DefaultRiskFreeRate    = 0.02  // annual
	DefaultTradingDays     = 252   // per year
	DefaultBenchmarkReturn = 0.001 // per period

	// zeroTol is the threshold below which a deviation counts as zero.
	zeroTol = 1e-12
)

// ErrInsufficientPrices is returned when fewer than two valid prices remain.
var ErrInsufficientPrices = errors.New("insufficient price data")

// Analyzer holds an immutable price series and its simple returns.
type Analyzer struct {
	name         string
	prices       []float64
	returns      []float64
	riskFreeRate float64
	tradingDays  int
	logger       *log.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRiskFreeRate sets the annual risk-free rate.
func WithRiskFreeRate(rate float64) Option {
	return func(a *Analyzer) { a.riskFreeRate = rate }
}

// WithTradingDays sets the number of periods per year used to annualize.
func WithTradingDays(days int) Option {
	return func(a *Analyzer) {
		if days > 0 {
			a.tradingDays = days
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) { a.logger = logging.OrNop(l) }
}

// NewAnalyzer drops NaN prices and derives period returns. It fails with
// ErrInsufficientPrices when fewer than two prices remain.
func NewAnalyzer(prices []float64, name string, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		name:         name,
		riskFreeRate: DefaultRiskFreeRate,
		tradingDays:  DefaultTradingDays,
		logger:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.prices = series.DropNaN(prices)
	if len(a.prices) < 2 {
		return nil, fmt.Errorf("%s: %w (%d valid prices)", name, ErrInsufficientPrices, len(a.prices))
	}

	a.returns = make([]float64, len(a.prices)-1)
	for i := 1; i < len(a.prices); i++ {
		a.returns[i-1] = a.prices[i]/a.prices[i-1] - 1
	}

	a.logger.Debug().
		Str("name", name).
		Int("prices", len(a.prices)).
		Int("dropped", len(prices)-len(a.prices)).
		Msg("risk analyzer ready")
	return a, nil
}

// Name returns the identifier the analyzer was built with.
func (a *Analyzer) Name() string { return a.name }

// Returns returns a copy of the simple period returns.
func (a *Analyzer) Returns() []float64 {
	return append([]float64(nil), a.returns...)
}

// ════════════════════════════════════════════════════════════════════
// Risk-adjusted ratios
// ════════════════════════════════════════════════════════════════════

// dailyRiskFree converts the annual risk-free rate to a per-period rate.
func (a *Analyzer) dailyRiskFree() float64 {
	return math.Pow(1+a.riskFreeRate, 1/float64(a.tradingDays)) - 1
}

func (a *Analyzer) annualizer() float64 {
	return math.Sqrt(float64(a.tradingDays))
}

// SharpeRatio is the annualized mean excess return per unit of excess
// return volatility. NaN for constant returns.
func (a *Analyzer) SharpeRatio() float64 {
	rf := a.dailyRiskFree()
	excess := make([]float64, len(a.returns))
	for i, r := range a.returns {
		excess[i] = r - rf
	}

	mean, sd := stat.PopMeanStdDev(excess, nil)
	if sd < zeroTol {
		return math.NaN()
	}
	return mean / sd * a.annualizer()
}

// SortinoRatio is like SharpeRatio but penalizes only returns below the
// per-period risk-free rate. NaN without downside observations or when the
// downside deviation is zero.
func (a *Analyzer) SortinoRatio() float64 {
	rf := a.dailyRiskFree()
	var downside []float64
	for _, r := range a.returns {
		if r < rf {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return math.NaN()
	}

	dd := stat.PopStdDev(downside, nil) * a.annualizer()
	if dd < zeroTol {
		return math.NaN()
	}
	return (stat.Mean(a.returns, nil) - rf) / dd * a.annualizer()
}

// ────────────────────────────────────────────────────────────────────
// Drawdown
// ────────────────────────────────────────────────────────────────────

// MaxDrawdown returns the deepest fall of the compounded return series
// from its running peak, as a percentage. Always <= 0.
func (a *Analyzer) MaxDrawdown() float64 {
	growth := make([]float64, len(a.returns))
	for i, r := range a.returns {
		growth[i] = 1 + r
	}
	cum := floats.CumProd(make([]float64, len(growth)), growth)

	peak := math.Inf(-1)
	worst := 0.0
	for _, c := range cum {
		if c > peak {
			peak = c
		}
		if dd := (c - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst * 100
}

// annualizedReturn compounds the mean period return over a year.
func (a *Analyzer) annualizedReturn() float64 {
	return math.Pow(1+stat.Mean(a.returns, nil), float64(a.tradingDays)) - 1
}

// CalmarRatio is the annualized return over the absolute max drawdown.
// NaN when there was no drawdown.
func (a *Analyzer) CalmarRatio() float64 {
	mdd := a.MaxDrawdown()
	if math.Abs(mdd) < zeroTol {
		return math.NaN()
	}
	return a.annualizedReturn() / math.Abs(mdd)
}

// ────────────────────────────────────────────────────────────────────
// Return statistics
// ────────────────────────────────────────────────────────────────────

// WinRate returns the percentage of periods with a positive return.
func (a *Analyzer) WinRate() float64 {
	wins := 0
	for _, r := range a.returns {
		if r > 0 {
			wins++
		}
	}
	return series.Pct(wins, len(a.returns))
}

// ProfitFactor is the sum of gains over the absolute sum of losses. NaN
// when no period lost.
func (a *Analyzer) ProfitFactor() float64 {
	var gains, losses float64
	for _, r := range a.returns {
		switch {
		case r > 0:
			gains += r
		case r < 0:
			losses += -r
		}
	}
	if losses == 0 {
		return math.NaN()
	}
	return gains / losses
}

// InformationRatio measures the excess return over a per-period benchmark
// against the tracking error. NaN when the tracking error is zero.
func (a *Analyzer) InformationRatio(benchmark float64) float64 {
	active := make([]float64, len(a.returns))
	for i, r := range a.returns {
		active[i] = r - benchmark
	}

	te := stat.PopStdDev(active, nil) * a.annualizer()
	if te < zeroTol {
		return math.NaN()
	}
	return (stat.Mean(a.returns, nil) - benchmark) / te * a.annualizer()
}

// ════════════════════════════════════════════════════════════════════
// Summary
// ════════════════════════════════════════════════════════════════════

// AllMetrics bundles returns, volatility and every ratio. The information
// ratio uses DefaultBenchmarkReturn.
func (a *Analyzer) AllMetrics() models.RiskMetrics {
	return a.AllMetricsWithBenchmark(DefaultBenchmarkReturn)
}

// AllMetricsWithBenchmark is AllMetrics with an explicit benchmark return.
func (a *Analyzer) AllMetricsWithBenchmark(benchmark float64) models.RiskMetrics {
	first, last := a.prices[0], a.prices[len(a.prices)-1]

	m := models.RiskMetrics{
		Name:                a.name,
		TotalReturnPct:      (last - first) / first * 100,
		AnnualizedReturnPct: a.annualizedReturn() * 100,
		VolatilityPct:       stat.PopStdDev(a.returns, nil) * a.annualizer() * 100,
		SharpeRatio:         a.SharpeRatio(),
		SortinoRatio:        a.SortinoRatio(),
		MaxDrawdownPct:      a.MaxDrawdown(),
		CalmarRatio:         a.CalmarRatio(),
		WinRatePct:          a.WinRate(),
		ProfitFactor:        a.ProfitFactor(),
		InformationRatio:    a.InformationRatio(benchmark),
	}

	a.logger.Info().
		Str("name", a.name).
		Float64("sharpe", m.SharpeRatio).
		Float64("max_drawdown_pct", m.MaxDrawdownPct).
		Msg("computed risk metrics")
	return m
}

// ClassifyRiskLevel buckets a Sharpe ratio. NaN is NEGATIVE.
func ClassifyRiskLevel(sharpe float64) models.RiskLevel {
	switch {
	case sharpe > 2.0:
		return models.RiskExcellent
	case sharpe > 1.5:
		return models.RiskGood
	case sharpe > 1.0:
		return models.RiskAcceptable
	case sharpe > 0:
		return models.RiskWeak
	default:
		return models.RiskNegative
	}
}
