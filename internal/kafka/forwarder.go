package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dejobratic/fulfillment/internal/events"
	"github.com/dejobratic/fulfillment/internal/orders/domain"
	"github.com/dejobratic/fulfillment/internal/telemetry"
)

const eventHeader = "event-name"

// Forwarder copies outbound workflow events from the bus to Kafka topics named
// "<prefix>.<event name>".
type Forwarder struct {
	writer      Writer
	topicPrefix string
	metrics     *Metrics
	logger      *slog.Logger
}

func NewForwarder(writer Writer, topicPrefix string, metrics *Metrics, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		writer:      writer,
		topicPrefix: topicPrefix,
		metrics:     metrics,
		logger:      logger,
	}
}

// Register subscribes the forwarder to inventory.decrement and order.approved.
func (f *Forwarder) Register(bus *events.Bus) {
	events.Subscribe(bus, func(ctx context.Context, e domain.InventoryDecrement) error {
		return f.forward(ctx, e, e.ItemID)
	})
	events.Subscribe(bus, func(ctx context.Context, e domain.OrderApproved) error {
		return f.forward(ctx, e, e.OrderID)
	})
}

// Topic returns the Kafka topic used for events named name.
func (f *Forwarder) Topic(name events.Name) string {
	if f.topicPrefix == "" {
		return string(name)
	}
	return f.topicPrefix + "." + string(name)
}

func (f *Forwarder) forward(ctx context.Context, event events.Event, key string) error {
	name := event.EventName()
	topic := f.Topic(name)

	ctx, span := telemetry.StartProducerSpan(ctx, "kafka", topic, key)
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("event.type", string(name)))

	payload, err := json.Marshal(event)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	msg := kafkago.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: []kafkago.Header{{Key: eventHeader, Value: []byte(name)}},
	}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(&msg.Headers))

	start := time.Now()
	err = f.writer.WriteMessages(ctx, msg)
	f.metrics.RecordPublish(ctx, topic, len(payload), time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		f.logger.ErrorContext(ctx, "kafka write failed", "topic", topic, "key", key, "error", err)
		return fmt.Errorf("write %s to %s: %w", name, topic, err)
	}

	f.logger.DebugContext(ctx, "event forwarded", "topic", topic, "key", key)
	telemetry.SetSpanSuccess(span)
	return nil
}

// headerCarrier adapts Kafka message headers to propagation.TextMapCarrier.
type headerCarrier []kafkago.Header

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafkago.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
