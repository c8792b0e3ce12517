package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/fulfillment/internal/events"
	"github.com/dejobratic/fulfillment/internal/orders/domain"
	"github.com/dejobratic/fulfillment/internal/orders/metrics"
	"github.com/dejobratic/fulfillment/internal/orders/ports"
	"github.com/dejobratic/fulfillment/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableOrderCreatedHandler struct {
	handler OrderCreatedHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableOrderCreatedHandler(handler OrderCreatedHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableOrderCreatedHandler {
	return &ObservableOrderCreatedHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableOrderCreatedHandler) Handle(ctx context.Context, event domain.OrderCreated) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderCoordinator.OnOrderCreated")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", event.OrderID),
		attribute.Int("order.items", len(event.Items)),
	)

	start := time.Now()
	outcome := "error"
	defer func() {
		o.metrics.RecordWorkflowDuration(ctx, time.Since(start).Seconds())
		o.metrics.RecordOrderProcessed(ctx, outcome)
	}()

	o.logger.InfoContext(ctx, "order received",
		"order_id", event.OrderID,
		"items", len(event.Items),
	)

	order, err := o.handler.Handle(ctx, event)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		attrs := []any{"error", err, "order_id", event.OrderID}
		if order != nil {
			attrs = append(attrs, "status", string(order.Status))
		}
		o.logger.ErrorContext(ctx, "order workflow failed", attrs...)
		return order, err
	}

	telemetry.AddSpanAttributes(span, attribute.String("order.status", string(order.Status)))
	telemetry.AddSpanEvent(span, "order.approved")

	o.logger.InfoContext(ctx, "order approved", "order_id", order.ID)

	outcome = string(order.Status)
	telemetry.SetSpanSuccess(span)

	return order, nil
}

// DecrementCountingPublisher counts inventory units as each decrement event is
// published, so decrements emitted before an aborted workflow are counted too.
type DecrementCountingPublisher struct {
	next    ports.EventPublisher
	metrics *metrics.Metrics
}

func NewDecrementCountingPublisher(next ports.EventPublisher, metrics *metrics.Metrics) *DecrementCountingPublisher {
	return &DecrementCountingPublisher{
		next:    next,
		metrics: metrics,
	}
}

func (p *DecrementCountingPublisher) Publish(ctx context.Context, event events.Event) error {
	if decrement, ok := event.(domain.InventoryDecrement); ok {
		p.metrics.RecordInventoryDecrement(ctx, decrement.Quantity)
	}
	return p.next.Publish(ctx, event)
}
