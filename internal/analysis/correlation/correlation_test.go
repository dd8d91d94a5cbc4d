package correlation

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

var nan = math.NaN()

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

// ── Coefficients ──

func TestPearsonPerfect(t *testing.T) {
	r, p := Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	assert.InDelta(t, 1.0, r, 1e-12)
	assert.InDelta(t, 0.0, p, 1e-9)

	r, _ = Pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	assert.InDelta(t, -1.0, r, 1e-12)
}

func TestPearsonKnownPValue(t *testing.T) {
	r, p := Pearson([]float64{1, 2, 3, 4, 5}, []float64{2, 1, 4, 3, 5})
	assert.InDelta(t, 0.8, r, 1e-12)
	assert.InDelta(t, 0.1041, p, 1e-3)
}

func TestPearsonTwoPairs(t *testing.T) {
	r, p := Pearson([]float64{1, 2}, []float64{3, 5})
	assert.InDelta(t, 1.0, math.Abs(r), 1e-12)
	assert.Equal(t, 1.0, p)
}

func TestPearsonDegenerate(t *testing.T) {
	tests := map[string][2][]float64{
		"empty":          {nil, nil},
		"single pair":    {{1}, {2}},
		"nan pairs":      {{1, nan, 3}, {nan, 2, nan}},
		"constant x":     {{1, 1, 1}, {1, 2, 3}},
		"constant y":     {{1, 2, 3}, {4, 4, 4}},
		"one after drop": {{1, 2, nan}, {nan, 5, 6}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r, p := Pearson(tt[0], tt[1])
			assert.True(t, math.IsNaN(r))
			assert.True(t, math.IsNaN(p))
			r, p = Spearman(tt[0], tt[1])
			assert.True(t, math.IsNaN(r))
			assert.True(t, math.IsNaN(p))
		})
	}
}

func TestPearsonSymmetric(t *testing.T) {
	x := []float64{0.1, -0.3, 0.25, nan, 0.4, -0.05}
	y := []float64{1.2, -0.8, 0.3, 2.0, 0.9, nan}
	rxy, pxy := Pearson(x, y)
	ryx, pyx := Pearson(y, x)
	assert.InDelta(t, rxy, ryx, 1e-12)
	assert.InDelta(t, pxy, pyx, 1e-12)
	assert.LessOrEqual(t, math.Abs(rxy), 1.0)
}

func TestSpearmanMonotone(t *testing.T) {
	r, _ := Spearman([]float64{1, 2, 3, 4, 5}, []float64{1, 4, 9, 16, 25})
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestRankTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, rank([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, rank([]float64{9, 1, 5}))
}

// ── Sentiment vs returns ──

func daily(d int, p float64) models.DailySentiment {
	return models.DailySentiment{Date: day(d), AvgPolarity: p, ArticleCount: 1}
}

func ret(d int, r float64) models.ReturnBar {
	return models.ReturnBar{PriceBar: models.PriceBar{Date: day(d).Add(16 * time.Hour)}, DailyReturn: r}
}

func TestSentimentReturnCorrelation(t *testing.T) {
	a := New(models.DefaultThresholds(), nil)
	got := a.SentimentReturnCorrelation(
		[]models.DailySentiment{daily(4, -0.3), daily(2, 0.5), daily(3, 0.0), daily(8, 0.2)},
		[]models.ReturnBar{ret(2, 1.5), ret(3, 0.2), ret(4, -1.0), ret(5, 0.7)},
	)

	require.Equal(t, 3, got.DataPoints)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, day(2), got.StartDate)
	assert.Equal(t, day(4), got.EndDate)
	assert.Equal(t, day(3), got.Rows[1].Date)
	assert.Equal(t, models.LabelPositive, got.Rows[0].Label)
	assert.Equal(t, models.LabelNeutral, got.Rows[1].Label)
	assert.Equal(t, models.LabelNegative, got.Rows[2].Label)
	assert.Greater(t, got.Pearson.Coefficient, 0.9)
	assert.InDelta(t, 1.0, got.Spearman.Coefficient, 1e-12)
	assert.False(t, got.Empty())
}

func TestSentimentReturnCorrelationEmpty(t *testing.T) {
	a := New(models.DefaultThresholds(), nil)
	got := a.SentimentReturnCorrelation(
		[]models.DailySentiment{daily(2, 0.5), daily(9, 0.1)},
		[]models.ReturnBar{ret(2, 1.0), ret(3, 2.0)},
	)
	assert.True(t, got.Empty())
	assert.Empty(t, got.Rows)
	assert.True(t, got.StartDate.IsZero())
	assert.True(t, math.IsNaN(got.Pearson.Coefficient))
	assert.True(t, math.IsNaN(got.Pearson.PValue))
	assert.True(t, math.IsNaN(got.Spearman.Coefficient))
	assert.True(t, math.IsNaN(got.Spearman.PValue))
	assert.False(t, got.Pearson.Significant)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	var decoded struct {
		Pearson  map[string]any `json:"pearson"`
		Spearman map[string]any `json:"spearman"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded.Pearson["coefficient"])
	assert.Nil(t, decoded.Pearson["p_value"])
	assert.Nil(t, decoded.Spearman["p_value"])

	assert.True(t, a.SentimentReturnCorrelation(nil, nil).Empty())
}

func TestSentimentReturnCorrelationKeepsMissingReturns(t *testing.T) {
	a := New(models.DefaultThresholds(), nil)
	got := a.SentimentReturnCorrelation(
		[]models.DailySentiment{daily(2, 0.5), daily(3, 0.1), daily(4, -0.2)},
		[]models.ReturnBar{ret(2, nan), ret(3, 1.0), ret(4, -1.0)},
	)
	assert.Equal(t, 3, got.DataPoints)
	assert.Equal(t, 1.0, got.Pearson.PValue, "two usable pairs")

	_, err := json.Marshal(got)
	require.NoError(t, err)
}

func TestLaggedCorrelation(t *testing.T) {
	a := New(models.DefaultThresholds(), nil)
	sentiment := []float64{0.1, -0.2, 0.3, 0.05, -0.1, 0.4, -0.3}
	returns := []float64{nan, 1, -2, 3, 0.5, -1, 4}

	got := a.LaggedCorrelation(sentiment, returns, 2)
	require.Len(t, got, 3)
	for i, l := range got {
		assert.Equal(t, i, l.Lag)
	}
	assert.InDelta(t, 1.0, got[1].Coefficient, 1e-12)
	assert.True(t, got[1].Significant)
	assert.Less(t, math.Abs(got[0].Coefficient), 1.0)
}

func TestLaggedCorrelationConstant(t *testing.T) {
	a := New(models.DefaultThresholds(), nil)
	got := a.LaggedCorrelation([]float64{0.2, 0.2, 0.2, 0.2, 0.2}, []float64{1, -1, 2, 0, 3}, 2)
	require.Len(t, got, 3)
	for _, l := range got {
		assert.True(t, math.IsNaN(l.Coefficient), "lag %d", l.Lag)
		assert.True(t, math.IsNaN(l.PValue), "lag %d", l.Lag)
		assert.False(t, l.Significant)
	}
}

func TestLaggedCorrelationRows(t *testing.T) {
	a := New(models.DefaultThresholds(), nil)
	rows := []models.SentimentReturnRow{
		{Sentiment: daily(2, 0.1), DailyReturn: 1},
		{Sentiment: daily(3, 0.2), DailyReturn: 2},
		{Sentiment: daily(4, 0.4), DailyReturn: 4},
	}
	got := a.LaggedCorrelationRows(rows, 0)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].Coefficient, 1e-12)
}

func TestCorrelationByCategory(t *testing.T) {
	a := New(models.DefaultThresholds(), nil)
	rows := []models.SentimentReturnRow{
		{Label: models.LabelPositive, DailyReturn: 1},
		{Label: models.LabelNegative, DailyReturn: -1},
		{Label: models.LabelPositive, DailyReturn: 2},
		{Label: models.LabelPositive, DailyReturn: nan},
	}

	got := a.CorrelationByCategory(rows)
	require.Len(t, got, 2)

	pos := got[0]
	assert.Equal(t, models.LabelPositive, pos.Label)
	assert.Equal(t, 3, pos.DaysCount)
	assert.InDelta(t, 1.5, pos.AvgReturn, 1e-12)
	assert.InDelta(t, 1.5, pos.MedianReturn, 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), pos.StdReturn, 1e-12)
	assert.Equal(t, 2, pos.PositiveReturnDays)
	assert.InDelta(t, 66.6667, pos.PositiveReturnPct, 1e-3)

	neg := got[1]
	assert.Equal(t, models.LabelNegative, neg.Label)
	assert.Equal(t, -1.0, neg.AvgReturn)
	assert.True(t, math.IsNaN(neg.StdReturn))
	assert.Equal(t, 0.0, neg.PositiveReturnPct)

	assert.Empty(t, a.CorrelationByCategory(nil))
}

func TestSentimentFrame(t *testing.T) {
	rows := []models.SentimentReturnRow{
		{Date: day(2), Sentiment: models.DailySentiment{AvgPolarity: 0.1, ArticleCount: 3}, DailyReturn: 1},
		{Date: day(3), Sentiment: models.DailySentiment{AvgPolarity: 0.2, ArticleCount: 1}, DailyReturn: nan},
	}
	f := SentimentFrame(rows)
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []time.Time{day(2), day(3)}, f.Index)
	assert.Equal(t, []float64{3, 1}, f.Column("article_count"))
	assert.True(t, math.IsNaN(f.Column("daily_return")[1]))
	assert.Len(t, f.Columns, 8)
}

// ── Matrix ──

func sampleFrame(t *testing.T) *models.Frame {
	t.Helper()
	var f models.Frame
	require.NoError(t, f.Add("a", []float64{1, 2, 3, 4, 5, 6}))
	require.NoError(t, f.Add("b", []float64{2, 4, 6, 8, 10, 12}))
	require.NoError(t, f.Add("c", []float64{6, 4, 5, 3, 1, 2}))
	require.NoError(t, f.Add("d", []float64{7, 7, 7, 7, 7, 7}))
	require.NoError(t, f.Add("e", []float64{1, 3, 2, 5, 4, nan}))
	return &f
}

func TestCorrelationMatrix(t *testing.T) {
	m := CorrelationMatrix(sampleFrame(t))
	require.Equal(t, 5, m.Len())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, m.Names())

	for i := 0; i < m.Len(); i++ {
		for j := 0; j < m.Len(); j++ {
			a, b := m.At(i, j), m.At(j, i)
			if math.IsNaN(a) {
				assert.True(t, math.IsNaN(b))
				continue
			}
			assert.Equal(t, a, b)
		}
	}

	v, ok := m.Get("a", "b")
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.True(t, math.IsNaN(m.At(3, 3)), "constant column has no self correlation")
	d, _ := m.Get("a", "d")
	assert.True(t, math.IsNaN(d))

	_, ok = m.Get("a", "missing")
	assert.False(t, ok)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"columns":["a","b","c","d","e"]`)
	assert.Contains(t, string(data), "null")
}

func TestCorrelationMatrixEmpty(t *testing.T) {
	m := CorrelationMatrix(&models.Frame{})
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, StrongestCorrelations(m, 0.1))
	_, err := json.Marshal(m)
	assert.NoError(t, err)
}

func TestStrongestCorrelations(t *testing.T) {
	m := CorrelationMatrix(sampleFrame(t))
	pairs := StrongestCorrelations(m, 0.5)
	require.NotEmpty(t, pairs)

	assert.Equal(t, "a", pairs[0].First)
	assert.Equal(t, "b", pairs[0].Second)
	for i, p := range pairs {
		assert.GreaterOrEqual(t, math.Abs(p.Value), 0.5)
		assert.NotEqual(t, "d", p.First)
		assert.NotEqual(t, "d", p.Second)
		v, ok := m.Get(p.First, p.Second)
		require.True(t, ok)
		assert.Equal(t, v, p.Value)
		if i > 0 {
			assert.LessOrEqual(t, math.Abs(p.Value), math.Abs(pairs[i-1].Value))
		}
	}

	assert.Empty(t, StrongestCorrelations(m, 1.5))
}

func TestStrongestCorrelationsComplete(t *testing.T) {
	m := CorrelationMatrix(sampleFrame(t))
	const threshold = 0.5

	want := 0
	for i := 0; i < m.Len(); i++ {
		for j := i + 1; j < m.Len(); j++ {
			if math.Abs(m.At(i, j)) >= threshold {
				want++
			}
		}
	}
	pairs := StrongestCorrelations(m, threshold)
	require.Len(t, pairs, want)

	// b is 2a, so (a,c)/(b,c) and (a,e)/(b,e) tie exactly and keep column order
	got := make([]string, len(pairs))
	for i, p := range pairs {
		got[i] = p.First + p.Second
	}
	assert.Equal(t, []string{"ab", "ac", "bc", "ce", "ae", "be"}, got)
	assert.Equal(t, pairs[1].Value, pairs[2].Value)
	assert.Equal(t, pairs[4].Value, pairs[5].Value)
}

// ── Indicators ──

func TestCorrelateIndicators(t *testing.T) {
	var f models.Frame
	require.NoError(t, f.Add("Daily_Return", []float64{nan, 1, -1, 2, -2, 3}))
	require.NoError(t, f.Add("Momentum", []float64{nan, 2, -2, 4, -4, 6}))
	require.NoError(t, f.Add("Sparse", []float64{nan, nan, nan, 1, 2, nan}))
	require.NoError(t, f.Add("Flat", []float64{5, 5, 5, 5, 5, 5}))

	got, err := CorrelateIndicators(&f, []string{"Momentum", "Sparse", "Missing", "Flat"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Momentum", got[0].Indicator)
	assert.InDelta(t, 1.0, got[0].Coefficient, 1e-12)
	assert.Equal(t, "Flat", got[1].Indicator)
	assert.True(t, math.IsNaN(got[1].Coefficient))
}

func TestCorrelateIndicatorsDerivesReturns(t *testing.T) {
	var f models.Frame
	require.NoError(t, f.Add("Close", []float64{100, 110, 99, 108.9, 98.01}))
	require.NoError(t, f.Add("Signal", []float64{0, 1, -1, 1, -1}))

	got, err := CorrelateIndicators(&f, []string{"Signal"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].Coefficient, 1e-9)
}

func TestCorrelateIndicatorsNoReturns(t *testing.T) {
	var f models.Frame
	require.NoError(t, f.Add("RSI_14", []float64{50, 60}))
	_, err := CorrelateIndicators(&f, []string{"RSI_14"})
	assert.True(t, errors.Is(err, ErrNoReturnColumn))
}

func TestRankIndicators(t *testing.T) {
	in := []models.IndicatorCorrelation{
		{Indicator: "a", Coefficient: 0.1},
		{Indicator: "b", Coefficient: nan},
		{Indicator: "c", Coefficient: -0.7},
		{Indicator: "d", Coefficient: 0.4},
	}
	got := RankIndicators(in)
	names := make([]string, len(got))
	for i, g := range got {
		names[i] = g.Indicator
	}
	assert.Equal(t, []string{"c", "d", "a", "b"}, names)
	assert.Equal(t, "a", in[0].Indicator, "input untouched")
}
