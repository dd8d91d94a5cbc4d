// Package sentiment scores news headlines and aggregates the scores by day
// and by ticker.
package sentiment

import (
	"math"
	"sort"
	"time"

	"github.com/phuslu/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Abigiya-M/News-Sentiment/internal/analysis/series"
	"github.com/Abigiya-M/News-Sentiment/internal/logging"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
	"github.com/Abigiya-M/News-Sentiment/pkg/utils"
)

// Analyzer attaches sentiment to news and folds it into daily statistics.
type Analyzer struct {
	scorer     Scorer
	thresholds models.Thresholds
	logger     *log.Logger
}

// New creates an Analyzer. A nil scorer falls back to the lexicon scorer
// and a nil logger discards output.
func New(scorer Scorer, thresholds models.Thresholds, logger *log.Logger) *Analyzer {
	if scorer == nil {
		scorer = NewLexiconScorer()
	}
	return &Analyzer{
		scorer:     scorer,
		thresholds: thresholds,
		logger:     logging.OrNop(logger),
	}
}

// Thresholds returns the label cut-offs in use.
func (a *Analyzer) Thresholds() models.Thresholds { return a.thresholds }

// Score scores one text and labels it.
func (a *Analyzer) Score(text string) models.SentimentScore {
	p, s := a.scorer.Score(text)
	p = clamp(p, -1, 1)
	s = clamp(s, 0, 1)
	return models.SentimentScore{
		Polarity:     p,
		Subjectivity: s,
		Label:        a.thresholds.Label(p),
	}
}

// ScoreAll scores every headline.
func (a *Analyzer) ScoreAll(records []models.NewsRecord) []models.ScoredNews {
	a.logger.Info().Int("headlines", len(records)).Msg("analyzing sentiment")

	out := make([]models.ScoredNews, len(records))
	for i, r := range records {
		sc := a.Score(r.Headline)
		out[i] = models.ScoredNews{
			NewsRecord:   r,
			Polarity:     sc.Polarity,
			Subjectivity: sc.Subjectivity,
			Label:        sc.Label,
		}
	}
	return out
}

// AggregateDaily groups scored news by calendar date, read in each
// record's own time zone, and returns one row per date in date order.
func (a *Analyzer) AggregateDaily(scored []models.ScoredNews) []models.DailySentiment {
	groups := make(map[time.Time][]models.ScoredNews)
	for _, s := range scored {
		d := utils.Day(s.Timestamp)
		groups[d] = append(groups[d], s)
	}

	out := make([]models.DailySentiment, 0, len(groups))
	for d, members := range groups {
		out = append(out, fold(d, members))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	a.logger.Debug().Int("days", len(out)).Msg("aggregated daily sentiment")
	return out
}

type stockDay struct {
	date  time.Time
	stock string
}

// AggregateByStockDate groups scored news by (date, stock), ordered by date
// then stock.
func (a *Analyzer) AggregateByStockDate(scored []models.ScoredNews) []models.StockDateSentiment {
	groups := make(map[stockDay][]models.ScoredNews)
	for _, s := range scored {
		k := stockDay{utils.Day(s.Timestamp), s.Stock}
		groups[k] = append(groups[k], s)
	}

	out := make([]models.StockDateSentiment, 0, len(groups))
	for k, members := range groups {
		out = append(out, models.StockDateSentiment{Stock: k.stock, Sentiment: fold(k.date, members)})
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Sentiment.Date, out[j].Sentiment.Date
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].Stock < out[j].Stock
	})
	return out
}

// fold reduces a non-empty group to its daily statistics.
func fold(date time.Time, members []models.ScoredNews) models.DailySentiment {
	pol := make([]float64, len(members))
	subj := make([]float64, len(members))
	positive := 0
	for i, m := range members {
		pol[i] = m.Polarity
		subj[i] = m.Subjectivity
		if m.Label == models.LabelPositive {
			positive++
		}
	}

	d := models.DailySentiment{
		Date:            date,
		AvgPolarity:     stat.Mean(pol, nil),
		StdPolarity:     stat.StdDev(pol, nil),
		MinPolarity:     math.NaN(),
		MaxPolarity:     math.NaN(),
		ArticleCount:    len(members),
		AvgSubjectivity: stat.Mean(subj, nil),
		PositiveCount:   positive,
		PositivePct:     series.Pct(positive, len(members)),
	}
	if len(pol) > 0 {
		d.MinPolarity = floats.Min(pol)
		d.MaxPolarity = floats.Max(pol)
	}
	return d
}

// SummaryStats computes corpus-wide label counts and polarity statistics.
// Every average and percentage is NaN for empty input.
func (a *Analyzer) SummaryStats(scored []models.ScoredNews) models.SentimentStats {
	n := len(scored)
	st := models.SentimentStats{
		TotalArticles:   n,
		AvgPolarity:     math.NaN(),
		MedianPolarity:  math.NaN(),
		StdPolarity:     math.NaN(),
		AvgSubjectivity: math.NaN(),
	}

	pol := make([]float64, n)
	subj := make([]float64, n)
	for i, s := range scored {
		pol[i] = s.Polarity
		subj[i] = s.Subjectivity
		switch s.Label {
		case models.LabelPositive:
			st.PositiveCount++
		case models.LabelNegative:
			st.NegativeCount++
		default:
			st.NeutralCount++
		}
	}

	if n > 0 {
		st.AvgPolarity = stat.Mean(pol, nil)
		st.MedianPolarity = series.Median(pol)
		st.AvgSubjectivity = stat.Mean(subj, nil)
	}
	if n > 1 {
		st.StdPolarity = stat.StdDev(pol, nil)
	}
	st.PositivePct = series.Pct(st.PositiveCount, n)
	st.NegativePct = series.Pct(st.NegativeCount, n)
	st.NeutralPct = series.Pct(st.NeutralCount, n)
	return st
}
