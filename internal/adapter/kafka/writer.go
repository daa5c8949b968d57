package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/heat-risk-service/internal/config"
	"github.com/couchcryptid/heat-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes assessments to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes assessed submissions to the sink topic
// in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, batch []domain.AssessedSubmission) error {
	if len(batch) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch))
	for i := range batch {
		msg, err := serializeToMessage(batch[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d assessments: %w", len(msgs), err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AssessedSubmission into a Kafka message keyed
// by submission ID, so redeliveries of one submission stay on one partition.
func serializeToMessage(a domain.AssessedSubmission) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment %s: %w", a.Submission.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(a.Submission.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(a.Result.Category.String())},
			{Key: "risk", Value: []byte(a.Result.Risk)},
			{Key: "assessed_at", Value: []byte(a.Result.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
