// Package correlation relates daily news sentiment to stock returns and
// technical indicators.
package correlation

import (
	"math"
	"sort"
	"time"

	"github.com/phuslu/log"
	"gonum.org/v1/gonum/stat"

	"github.com/Abigiya-M/News-Sentiment/internal/analysis/series"
	"github.com/Abigiya-M/News-Sentiment/internal/logging"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// Analyzer computes sentiment/return statistics. Rows are labelled with
// the same thresholds the sentiment scorer uses.
type Analyzer struct {
	thresholds models.Thresholds
	logger     *log.Logger
}

// New creates an Analyzer. A nil logger discards output.
func New(thresholds models.Thresholds, logger *log.Logger) *Analyzer {
	return &Analyzer{thresholds: thresholds, logger: logging.OrNop(logger)}
}

func newResult(coef, p float64) models.CorrelationResult {
	return models.CorrelationResult{
		Coefficient: coef,
		PValue:      p,
		Significant: !math.IsNaN(p) && p < SignificanceLevel,
	}
}

// SentimentReturnCorrelation inner-joins daily sentiment with daily returns
// on calendar date and correlates average polarity with the return. With
// fewer than two joined days it returns the empty result.
func (a *Analyzer) SentimentReturnCorrelation(daily []models.DailySentiment, returns []models.ReturnBar) models.SentimentReturnCorrelation {
	a.logger.Info().Msg("analyzing sentiment-return correlation")

	byDate := make(map[time.Time]float64, len(returns))
	for _, r := range returns {
		byDate[utils.Day(r.Date)] = r.DailyReturn
	}

	var rows []models.SentimentReturnRow
	for _, d := range daily {
		ret, ok := byDate[utils.Day(d.Date)]
		if !ok {
			continue
		}
		rows = append(rows, models.SentimentReturnRow{
			Date:        utils.Day(d.Date),
			Sentiment:   d,
			Label:       a.thresholds.Label(d.AvgPolarity),
			DailyReturn: ret,
		})
	}

	if len(rows) < 2 {
		a.logger.Warn().Int("rows", len(rows)).Msg("insufficient data for correlation analysis")
		return models.EmptyCorrelation()
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	pol, ret := make([]float64, len(rows)), make([]float64, len(rows))
	for i, r := range rows {
		pol[i], ret[i] = r.Sentiment.AvgPolarity, r.DailyReturn
	}

	return models.SentimentReturnCorrelation{
		Pearson:    newResult(Pearson(pol, ret)),
		Spearman:   newResult(Spearman(pol, ret)),
		StartDate:  rows[0].Date,
		EndDate:    rows[len(rows)-1].Date,
		DataPoints: len(rows),
		Rows:       rows,
	}
}

// LaggedCorrelation pairs sentiment at t-lag with returns at t for every
// lag from 0 to maxLag and reports the Pearson correlation of each.
func (a *Analyzer) LaggedCorrelation(sentiment, returns []float64, maxLag int) []models.LagCorrelation {
	a.logger.Info().Int("max_lag", maxLag).Msg("calculating lagged correlations")

	out := make([]models.LagCorrelation, 0, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		out = append(out, models.LagCorrelation{
			Lag:               lag,
			CorrelationResult: newResult(Pearson(series.Shift(sentiment, lag), returns)),
		})
	}
	return out
}

// LaggedCorrelationRows runs LaggedCorrelation over joined rows in date order.
func (a *Analyzer) LaggedCorrelationRows(rows []models.SentimentReturnRow, maxLag int) []models.LagCorrelation {
	pol, ret := make([]float64, len(rows)), make([]float64, len(rows))
	for i, r := range rows {
		pol[i], ret[i] = r.Sentiment.AvgPolarity, r.DailyReturn
	}
	return a.LaggedCorrelation(pol, ret, maxLag)
}

// CorrelationByCategory splits rows by sentiment label and describes the
// returns of each non-empty split, in positive, negative, neutral order.
// Missing returns count towards DaysCount but not the statistics.
func (a *Analyzer) CorrelationByCategory(rows []models.SentimentReturnRow) []models.CategoryReturnStats {
	a.logger.Info().Msg("analyzing returns by sentiment category")

	groups := make(map[models.SentimentLabel][]float64)
	for _, r := range rows {
		groups[r.Label] = append(groups[r.Label], r.DailyReturn)
	}

	var out []models.CategoryReturnStats
	for _, label := range models.Labels {
		members := groups[label]
		if len(members) == 0 {
			continue
		}
		valid := series.DropNaN(members)

		st := models.CategoryReturnStats{
			Label:        label,
			AvgReturn:    math.NaN(),
			MedianReturn: series.Median(valid),
			StdReturn:    math.NaN(),
			DaysCount:    len(members),
		}
		if len(valid) > 0 {
			st.AvgReturn = stat.Mean(valid, nil)
		}
		if len(valid) > 1 {
			st.StdReturn = stat.StdDev(valid, nil)
		}
		for _, v := range valid {
			if v > 0 {
				st.PositiveReturnDays++
			}
		}
		st.PositiveReturnPct = series.Pct(st.PositiveReturnDays, len(members))
		out = append(out, st)
	}
	return out
}

// SentimentFrame lays joined rows out as a date-indexed numeric frame.
func SentimentFrame(rows []models.SentimentReturnRow) *models.Frame {
	cols := map[string][]float64{}
	names := []string{
		"avg_polarity", "std_polarity", "min_polarity", "max_polarity",
		"article_count", "avg_subjectivity", "positive_pct", "daily_return",
	}
	for _, n := range names {
		cols[n] = make([]float64, len(rows))
	}

	f := &models.Frame{Index: make([]time.Time, len(rows))}
	for i, r := range rows {
		s := r.Sentiment
		f.Index[i] = r.Date
		cols["avg_polarity"][i] = s.AvgPolarity
		cols["std_polarity"][i] = s.StdPolarity
		cols["min_polarity"][i] = s.MinPolarity
		cols["max_polarity"][i] = s.MaxPolarity
		cols["article_count"][i] = float64(s.ArticleCount)
		cols["avg_subjectivity"][i] = s.AvgSubjectivity
		cols["positive_pct"][i] = s.PositivePct
		cols["daily_return"][i] = r.DailyReturn
	}
	for _, n := range names {
		f.Columns = append(f.Columns, models.Column{Name: n, Values: cols[n]})
	}
	return f
}
