package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/neo-risk-service/internal/config"
	"github.com/couchcryptid/neo-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// unscored is the risk_level header for records without a close approach.
const unscored = "unscored"

// Writer produces assessment messages to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured assessment topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes the assessed objects and writes them in a single
// WriteMessages call. Messages are keyed by NEO ID so every assessment of
// one object lands on the same partition.
func (w *Writer) Publish(ctx context.Context, assessed []domain.AssessedNeo) error {
	if len(assessed) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(assessed))
	for i := range assessed {
		msg, err := serializeToMessage(assessed[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d assessments: %w", len(msgs), err)
	}
	w.logger.Debug("published assessments", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AssessedNeo into a Kafka message.
func serializeToMessage(a domain.AssessedNeo) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment %s: %w", a.Neo.ID, err)
	}
	level := unscored
	if a.Risk != nil {
		level = string(a.Risk.Level)
	}
	return kafkago.Message{
		Key:   []byte(a.Neo.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(level)},
			{Key: "assessed_at", Value: []byte(a.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
