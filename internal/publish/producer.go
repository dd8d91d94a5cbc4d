// Package publish emits Kafka events for completed ticker analyses.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"github.com/phuslu/log"
	"github.com/segmentio/kafka-go"

	"github.com/Abigiya-M/News-Sentiment/internal/logging"
	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

// Event types.
const (
	EventTickerAnalyzed = "TICKER_ANALYZED"
	EventTickerFailed   = "TICKER_FAILED"
)

// ReportEvent is the JSON value of a published message.
type ReportEvent struct {
	EventType  string               `json:"event_type"`
	Ticker     string               `json:"ticker"`
	Pearson    null.Float           `json:"pearson"`
	PValue     null.Float           `json:"p_value"`
	DataPoints int                  `json:"data_points"`
	RiskLevel  models.RiskLevel     `json:"risk_level,omitempty"`
	Error      string               `json:"error,omitempty"`
	Report     *models.TickerReport `json:"report,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
}

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes report events to a Kafka topic.
type Producer struct {
	writer messageWriter
	topic  string
	logger *log.Logger
	now    func() time.Time
}

// NewProducer creates a producer writing to topic on brokers.
func NewProducer(brokers []string, topic string, logger *log.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return newProducer(writer, topic, logger)
}

func newProducer(w messageWriter, topic string, logger *log.Logger) *Producer {
	return &Producer{writer: w, topic: topic, logger: logging.OrNop(logger), now: time.Now}
}

// Event builds the event for a report. Failed reports produce a
// TICKER_FAILED event without the report body.
func (p *Producer) Event(report *models.TickerReport) ReportEvent {
	ev := ReportEvent{
		EventType: EventTickerAnalyzed,
		Ticker:    report.Ticker,
		Timestamp: p.now().UTC(),
	}
	if report.Error != "" {
		ev.EventType = EventTickerFailed
		ev.Error = report.Error
		return ev
	}
	pearson, _ := report.Correlation.Results()
	ev.Pearson = models.Nullable(pearson.Coefficient)
	ev.PValue = models.Nullable(pearson.PValue)
	ev.DataPoints = report.Correlation.DataPoints
	ev.RiskLevel = report.RiskLevel
	ev.Report = report
	return ev
}

// PublishReport writes one event keyed by ticker, so every event of a
// ticker lands on the same partition.
func (p *Producer) PublishReport(ctx context.Context, report *models.TickerReport) error {
	return p.PublishReports(ctx, []*models.TickerReport{report})
}

// PublishReports writes one event per report in a single batch.
func (p *Producer) PublishReports(ctx context.Context, reports []*models.TickerReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(reports))
	for _, r := range reports {
		data, err := json.Marshal(p.Event(r))
		if err != nil {
			return fmt.Errorf("failed to marshal event for %s: %w", r.Ticker, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.Ticker), Value: data})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	p.logger.Info().Str("topic", p.topic).Int("events", len(msgs)).Msg("published report events")
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
