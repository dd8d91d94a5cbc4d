package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/guregu/null/v6"
)

// SentimentLabel is the discrete class of a polarity score.
type SentimentLabel string

const (
	LabelPositive SentimentLabel = "positive"
	LabelNegative SentimentLabel = "negative"
	LabelNeutral  SentimentLabel = "neutral"
)

// Labels lists every label in reporting order.
var Labels = []SentimentLabel{LabelPositive, LabelNegative, LabelNeutral}

// Thresholds holds the polarity cut-offs that turn a score into a label.
// The same value is shared by scoring and by category statistics.
type Thresholds struct {
	Positive float64 `json:"positive" mapstructure:"positive_threshold"`
	Negative float64 `json:"negative" mapstructure:"negative_threshold"`
}

// DefaultThresholds returns the ±0.1 cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{Positive: 0.1, Negative: -0.1}
}

// Label classifies a polarity. Both bounds are exclusive, so a polarity
// exactly on a threshold is neutral. NaN is neutral.
func (t Thresholds) Label(polarity float64) SentimentLabel {
	switch {
	case polarity > t.Positive:
		return LabelPositive
	case polarity < t.Negative:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// SentimentScore is the result of scoring one piece of text.
type SentimentScore struct {
	Polarity     float64        `json:"polarity"`     // -1.0 to +1.0
	Subjectivity float64        `json:"subjectivity"` // 0.0 to 1.0
	Label        SentimentLabel `json:"label"`
}

// ScoredNews is a news record with its sentiment attached.
type ScoredNews struct {
	NewsRecord
	Polarity     float64        `json:"polarity"`
	Subjectivity float64        `json:"subjectivity"`
	Label        SentimentLabel `json:"sentiment_label"`
}

// DailySentiment aggregates all articles of one calendar day.
type DailySentiment struct {
	Date            time.Time `json:"date"`
	AvgPolarity     float64   `json:"avg_polarity"`
	StdPolarity     float64   `json:"std_polarity"` // sample std, NaN for a single article
	MinPolarity     float64   `json:"min_polarity"`
	MaxPolarity     float64   `json:"max_polarity"`
	ArticleCount    int       `json:"article_count"`
	AvgSubjectivity float64   `json:"avg_subjectivity"`
	PositiveCount   int       `json:"positive_count"`
	PositivePct     float64   `json:"positive_pct"`
}

func (d DailySentiment) MarshalJSON() ([]byte, error) {
	type plain DailySentiment
	return json.Marshal(struct {
		plain
		AvgPolarity     null.Float `json:"avg_polarity"`
		StdPolarity     null.Float `json:"std_polarity"`
		MinPolarity     null.Float `json:"min_polarity"`
		MaxPolarity     null.Float `json:"max_polarity"`
		AvgSubjectivity null.Float `json:"avg_subjectivity"`
		PositivePct     null.Float `json:"positive_pct"`
	}{
		plain(d),
		Nullable(d.AvgPolarity), Nullable(d.StdPolarity),
		Nullable(d.MinPolarity), Nullable(d.MaxPolarity),
		Nullable(d.AvgSubjectivity), Nullable(d.PositivePct),
	})
}

// StockDateSentiment is a DailySentiment restricted to one ticker.
type StockDateSentiment struct {
	Stock     string         `json:"stock"`
	Sentiment DailySentiment `json:"sentiment"`
}

// SentimentStats summarizes a whole set of scored articles.
type SentimentStats struct {
	TotalArticles   int     `json:"total_articles"`
	AvgPolarity     float64 `json:"avg_polarity"`
	MedianPolarity  float64 `json:"median_polarity"`
	StdPolarity     float64 `json:"std_polarity"`
	PositiveCount   int     `json:"positive_count"`
	NegativeCount   int     `json:"negative_count"`
	NeutralCount    int     `json:"neutral_count"`
	AvgSubjectivity float64 `json:"avg_subjectivity"`
	PositivePct     float64 `json:"positive_pct"`
	NegativePct     float64 `json:"negative_pct"`
	NeutralPct      float64 `json:"neutral_pct"`
}

func (s SentimentStats) MarshalJSON() ([]byte, error) {
	type plain SentimentStats
	return json.Marshal(struct {
		plain
		AvgPolarity     null.Float `json:"avg_polarity"`
		MedianPolarity  null.Float `json:"median_polarity"`
		StdPolarity     null.Float `json:"std_polarity"`
		AvgSubjectivity null.Float `json:"avg_subjectivity"`
		PositivePct     null.Float `json:"positive_pct"`
		NegativePct     null.Float `json:"negative_pct"`
		NeutralPct      null.Float `json:"neutral_pct"`
	}{
		plain(s),
		Nullable(s.AvgPolarity), Nullable(s.MedianPolarity), Nullable(s.StdPolarity),
		Nullable(s.AvgSubjectivity),
		Nullable(s.PositivePct), Nullable(s.NegativePct), Nullable(s.NeutralPct),
	})
}

// ── Correlation ──

// CorrelationResult is a coefficient with its two-sided p-value.
type CorrelationResult struct {
	Coefficient float64 `json:"coefficient"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

func (c CorrelationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Coefficient null.Float `json:"coefficient"`
		PValue      null.Float `json:"p_value"`
		Significant bool       `json:"significant"`
	}{Nullable(c.Coefficient), Nullable(c.PValue), c.Significant})
}

// SentimentReturnRow is one day where both sentiment and a return exist.
type SentimentReturnRow struct {
	Date        time.Time      `json:"date"`
	Sentiment   DailySentiment `json:"sentiment"`
	Label       SentimentLabel `json:"sentiment_label"`
	DailyReturn float64        `json:"daily_return"`
}

func (r SentimentReturnRow) MarshalJSON() ([]byte, error) {
	type plain SentimentReturnRow
	return json.Marshal(struct {
		plain
		DailyReturn null.Float `json:"daily_return"`
	}{plain(r), Nullable(r.DailyReturn)})
}

// SentimentReturnCorrelation is the outcome of joining daily sentiment with
// daily returns. The zero value is the empty result.
type SentimentReturnCorrelation struct {
	Pearson    CorrelationResult    `json:"pearson"`
	Spearman   CorrelationResult    `json:"spearman"`
	StartDate  time.Time            `json:"start_date"`
	EndDate    time.Time            `json:"end_date"`
	DataPoints int                  `json:"data_points"`
	Rows       []SentimentReturnRow `json:"rows,omitempty"`
}

// EmptyCorrelation is the result for fewer than two joined days. Its
// coefficients and p-values are NaN.
func EmptyCorrelation() SentimentReturnCorrelation {
	undefined := CorrelationResult{Coefficient: math.NaN(), PValue: math.NaN()}
	return SentimentReturnCorrelation{Pearson: undefined, Spearman: undefined}
}

// Empty reports whether too few days joined to compute anything.
func (s SentimentReturnCorrelation) Empty() bool { return s.DataPoints == 0 }

// Results returns the Pearson and Spearman results, undefined (NaN) when the
// correlation is empty, including the zero value.
func (s SentimentReturnCorrelation) Results() (pearson, spearman CorrelationResult) {
	if s.Empty() {
		undefined := CorrelationResult{Coefficient: math.NaN(), PValue: math.NaN()}
		return undefined, undefined
	}
	return s.Pearson, s.Spearman
}

func (s SentimentReturnCorrelation) MarshalJSON() ([]byte, error) {
	type plain SentimentReturnCorrelation
	pearson, spearman := s.Results()
	return json.Marshal(struct {
		plain
		Pearson  CorrelationResult `json:"pearson"`
		Spearman CorrelationResult `json:"spearman"`
	}{plain(s), pearson, spearman})
}

// LagCorrelation is the correlation of sentiment at t-Lag with returns at t.
type LagCorrelation struct {
	Lag int `json:"lag"`
	CorrelationResult
}

func (l LagCorrelation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lag         int        `json:"lag"`
		Coefficient null.Float `json:"coefficient"`
		PValue      null.Float `json:"p_value"`
		Significant bool       `json:"significant"`
	}{l.Lag, Nullable(l.Coefficient), Nullable(l.PValue), l.Significant})
}

// CategoryReturnStats describes returns on days of one sentiment label.
type CategoryReturnStats struct {
	Label              SentimentLabel `json:"sentiment_label"`
	AvgReturn          float64        `json:"avg_return"`
	MedianReturn       float64        `json:"median_return"`
	StdReturn          float64        `json:"std_return"`
	DaysCount          int            `json:"days_count"`
	PositiveReturnDays int            `json:"positive_return_days"`
	PositiveReturnPct  float64        `json:"positive_return_pct"`
}

func (c CategoryReturnStats) MarshalJSON() ([]byte, error) {
	type plain CategoryReturnStats
	return json.Marshal(struct {
		plain
		AvgReturn         null.Float `json:"avg_return"`
		MedianReturn      null.Float `json:"median_return"`
		StdReturn         null.Float `json:"std_return"`
		PositiveReturnPct null.Float `json:"positive_return_pct"`
	}{
		plain(c),
		Nullable(c.AvgReturn), Nullable(c.MedianReturn),
		Nullable(c.StdReturn), Nullable(c.PositiveReturnPct),
	})
}

// CorrelationPair is one off-diagonal cell of a correlation matrix.
type CorrelationPair struct {
	First  string  `json:"first"`
	Second string  `json:"second"`
	Value  float64 `json:"value"`
}

// IndicatorCorrelation is the correlation of an indicator with daily returns.
type IndicatorCorrelation struct {
	Indicator   string  `json:"indicator"`
	Coefficient float64 `json:"coefficient"`
}

func (i IndicatorCorrelation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Indicator   string     `json:"indicator"`
		Coefficient null.Float `json:"coefficient"`
	}{i.Indicator, Nullable(i.Coefficient)})
}

// ── Risk ──

// RiskMetrics bundles the risk/return profile of a price series.
type RiskMetrics struct {
	Name                string  `json:"name"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	VolatilityPct       float64 `json:"volatility_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	SortinoRatio        float64 `json:"sortino_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	CalmarRatio         float64 `json:"calmar_ratio"`
	WinRatePct          float64 `json:"win_rate_pct"`
	ProfitFactor        float64 `json:"profit_factor"`
	InformationRatio    float64 `json:"information_ratio"`
}

func (r RiskMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name                string     `json:"name"`
		TotalReturnPct      null.Float `json:"total_return_pct"`
		AnnualizedReturnPct null.Float `json:"annualized_return_pct"`
		VolatilityPct       null.Float `json:"volatility_pct"`
		SharpeRatio         null.Float `json:"sharpe_ratio"`
		SortinoRatio        null.Float `json:"sortino_ratio"`
		MaxDrawdownPct      null.Float `json:"max_drawdown_pct"`
		CalmarRatio         null.Float `json:"calmar_ratio"`
		WinRatePct          null.Float `json:"win_rate_pct"`
		ProfitFactor        null.Float `json:"profit_factor"`
		InformationRatio    null.Float `json:"information_ratio"`
	}{
		r.Name,
		Nullable(r.TotalReturnPct), Nullable(r.AnnualizedReturnPct), Nullable(r.VolatilityPct),
		Nullable(r.SharpeRatio), Nullable(r.SortinoRatio), Nullable(r.MaxDrawdownPct),
		Nullable(r.CalmarRatio), Nullable(r.WinRatePct), Nullable(r.ProfitFactor),
		Nullable(r.InformationRatio),
	})
}

// RiskLevel buckets a Sharpe ratio.
type RiskLevel string

const (
	RiskExcellent  RiskLevel = "EXCELLENT"
	RiskGood       RiskLevel = "GOOD"
	RiskAcceptable RiskLevel = "ACCEPTABLE"
	RiskWeak       RiskLevel = "WEAK"
	RiskNegative   RiskLevel = "NEGATIVE"
)

// Description returns a human-readable explanation of the bucket.
func (l RiskLevel) Description() string {
	switch l {
	case RiskExcellent:
		return "Very high risk-adjusted returns"
	case RiskGood:
		return "High risk-adjusted returns"
	case RiskAcceptable:
		return "Moderate risk-adjusted returns"
	case RiskWeak:
		return "Low risk-adjusted returns"
	default:
		return "Negative risk-adjusted returns"
	}
}

// IndicatorSummary is a snapshot of the latest technical readings.
type IndicatorSummary struct {
	RSICurrent    float64 `json:"rsi_current"`
	RSIAverage    float64 `json:"rsi_average"`
	MACDCurrent   float64 `json:"macd_current"`
	PriceSMARatio float64 `json:"price_sma_ratio"`
}

func (s IndicatorSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RSICurrent    null.Float `json:"rsi_current"`
		RSIAverage    null.Float `json:"rsi_average"`
		MACDCurrent   null.Float `json:"macd_current"`
		PriceSMARatio null.Float `json:"price_sma_ratio"`
	}{Nullable(s.RSICurrent), Nullable(s.RSIAverage), Nullable(s.MACDCurrent), Nullable(s.PriceSMARatio)})
}

// ── Report ──

// TickerReport holds everything computed for one ticker in a pipeline run.
type TickerReport struct {
	Ticker           string                     `json:"ticker"`
	GeneratedAt      time.Time                  `json:"generated_at"`
	NewsCount        int                        `json:"news_count"`
	AlignedCount     int                        `json:"aligned_count"`
	TradingDays      int                        `json:"trading_days"`
	Sentiment        SentimentStats             `json:"sentiment"`
	Daily            []DailySentiment           `json:"daily,omitempty"`
	Correlation      SentimentReturnCorrelation `json:"correlation"`
	Lagged           []LagCorrelation           `json:"lagged,omitempty"`
	Categories       []CategoryReturnStats      `json:"categories,omitempty"`
	StrongPairs      []CorrelationPair          `json:"strong_pairs,omitempty"`
	IndicatorRanking []IndicatorCorrelation     `json:"indicator_ranking,omitempty"`
	Indicators       IndicatorSummary           `json:"indicators"`
	Risk             *RiskMetrics               `json:"risk,omitempty"`
	RiskLevel        RiskLevel                  `json:"risk_level,omitempty"`
	Error            string                     `json:"error,omitempty"`
}
