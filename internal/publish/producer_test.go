package publish

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testProducer(w *fakeWriter) *Producer {
	p := newProducer(w, "ticker-reports", nil)
	p.now = func() time.Time { return time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestPublishReport(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w)

	report := &models.TickerReport{
		Ticker: "AAPL",
		Correlation: models.SentimentReturnCorrelation{
			Pearson:    models.CorrelationResult{Coefficient: 0.4, PValue: math.NaN()},
			DataPoints: 12,
		},
		RiskLevel: models.RiskGood,
	}
	require.NoError(t, p.PublishReport(context.Background(), report))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "AAPL", string(w.msgs[0].Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, EventTickerAnalyzed, decoded["event_type"])
	assert.Equal(t, 0.4, decoded["pearson"])
	assert.Nil(t, decoded["p_value"])
	assert.Equal(t, float64(12), decoded["data_points"])
	assert.Equal(t, string(models.RiskGood), decoded["risk_level"])
	assert.Equal(t, "2024-04-01T12:00:00Z", decoded["timestamp"])
	assert.NotNil(t, decoded["report"])
}

func TestPublishFailedReport(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w)

	ev := p.Event(&models.TickerReport{Ticker: "ZZZZ", Error: "ticker not found"})
	assert.Equal(t, EventTickerFailed, ev.EventType)
	assert.Equal(t, "ticker not found", ev.Error)
	assert.Nil(t, ev.Report)
	assert.False(t, ev.Pearson.Valid)
}

func TestEventEmptyCorrelation(t *testing.T) {
	p := testProducer(&fakeWriter{})

	ev := p.Event(&models.TickerReport{Ticker: "AAPL"})
	assert.Equal(t, EventTickerAnalyzed, ev.EventType)
	assert.False(t, ev.Pearson.Valid)
	assert.False(t, ev.PValue.Valid)
	assert.Equal(t, 0, ev.DataPoints)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["pearson"])
	assert.Nil(t, decoded["p_value"])
}

func TestPublishReportsBatch(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w)

	reports := []*models.TickerReport{{Ticker: "AAPL"}, {Ticker: "MSFT", Error: "boom"}}
	require.NoError(t, p.PublishReports(context.Background(), reports))
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "MSFT", string(w.msgs[1].Key))

	require.NoError(t, p.PublishReports(context.Background(), nil))
	assert.Len(t, w.msgs, 2)
}

func TestPublishWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	err := testProducer(w).PublishReport(context.Background(), &models.TickerReport{Ticker: "AAPL"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write message to kafka")
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, testProducer(w).Close())
	assert.True(t, w.closed)
}
