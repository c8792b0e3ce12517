package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/fulfillment/internal/events"
	"github.com/dejobratic/fulfillment/internal/orders/ports"
	"github.com/dejobratic/fulfillment/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableEventBus traces and times every publish made through it. Because
// dispatch is synchronous, subscriber spans nest under the publish span.
type ObservableEventBus struct {
	bus     ports.EventPublisher
	metrics *events.Metrics
}

func NewObservableEventBus(bus ports.EventPublisher, metrics *events.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) Publish(ctx context.Context, event events.Event) error {
	name := event.EventName()

	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish "+string(name))
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("event.type", string(name)))

	start := time.Now()
	err := e.bus.Publish(ctx, event)
	e.metrics.RecordPublish(ctx, name, time.Since(start).Seconds(), err == nil)

	if err != nil {
		e.metrics.RecordSubscriberFailures(ctx, name, err)
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
