package events

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records publish latency and delivery failures per event name.
type Metrics struct {
	publishDuration    metric.Float64Histogram
	subscriberFailures metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.publishDuration, err = meter.Float64Histogram(
		"event_publish_duration_seconds",
		metric.WithDescription("Time spent dispatching an event to all subscribers"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create event_publish_duration histogram: %w", err)
	}

	m.subscriberFailures, err = meter.Int64Counter(
		"event_subscriber_failures_total",
		metric.WithDescription("Subscriber invocations that returned an error or panicked"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create event_subscriber_failures_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordPublish(ctx context.Context, name Name, durationSeconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.publishDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("event", string(name)),
		attribute.String("status", status),
	))
}

// RecordSubscriberFailures adds one failure per *SubscriberError found in err.
func (m *Metrics) RecordSubscriberFailures(ctx context.Context, name Name, err error) {
	if n := countSubscriberErrors(err); n > 0 {
		m.subscriberFailures.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String("event", string(name)),
		))
	}
}

func countSubscriberErrors(err error) int {
	if err == nil {
		return 0
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		n := 0
		for _, e := range joined.Unwrap() {
			n += countSubscriberErrors(e)
		}
		return n
	}
	if _, ok := err.(*SubscriberError); ok {
		return 1
	}
	return 0
}
