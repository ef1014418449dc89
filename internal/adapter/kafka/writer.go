package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/tsunami-risk-service/internal/config"
	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
)

// Writer produces alert events to a Kafka topic.
// It implements pipeline.AlertSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured alert topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishAlerts serializes and publishes alerts in a single WriteMessages call.
func (w *Writer) PublishAlerts(ctx context.Context, alerts []domain.AlertEvent) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(alerts))
	for i := range alerts {
		msg, err := serializeToMessage(alerts[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write alerts: %w", err)
	}
	w.logger.Debug("alerts published", "count", len(alerts), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AlertEvent into a Kafka message keyed by
// alert id.
func serializeToMessage(alert domain.AlertEvent) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(alert.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_tier", Value: []byte(alert.Tier)},
			{Key: "issued_at", Value: []byte(alert.IssuedAt.Format(time.RFC3339))},
		},
	}, nil
}
