package kafka

import (
	"context"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafkago.Writer the forwarder needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter returns a producer for brokers. Messages carry their own topic,
// and are partitioned by key so events for one order or item stay ordered.
func NewWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// NoopWriter logs messages without sending them to Kafka. Used when no
// brokers are configured.
type NoopWriter struct {
	logger *slog.Logger
}

func NewNoopWriter(logger *slog.Logger) *NoopWriter {
	return &NoopWriter{logger: logger}
}

func (n *NoopWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, msg := range msgs {
		n.logger.DebugContext(ctx, "kafka disabled, dropping message",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"bytes", len(msg.Value),
		)
	}
	return nil
}

func (n *NoopWriter) Close() error {
	return nil
}
