package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersProcessedTotal    metric.Int64Counter
	workflowDuration        metric.Float64Histogram
	inventoryDecrementUnits metric.Int64Counter
	repositoryDuration      metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersProcessedTotal, err = meter.Int64Counter(
		"orders_processed_total",
		metric.WithDescription("Orders that went through the fulfillment workflow"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_processed_total counter: %w", err)
	}

	m.workflowDuration, err = meter.Float64Histogram(
		"order_workflow_duration_seconds",
		metric.WithDescription("Duration of the order created to approved workflow"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_workflow_duration histogram: %w", err)
	}

	m.inventoryDecrementUnits, err = meter.Int64Counter(
		"inventory_decrement_units_total",
		metric.WithDescription("Item units requested from inventory by published decrement events"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create inventory_decrement_units_total counter: %w", err)
	}

	m.repositoryDuration, err = meter.Float64Histogram(
		"order_repository_duration_seconds",
		metric.WithDescription("Order repository operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_repository_duration histogram: %w", err)
	}

	return m, nil
}

// RecordOrderProcessed counts a finished workflow; status is the order status
// reached, or "error" when the workflow aborted.
func (m *Metrics) RecordOrderProcessed(ctx context.Context, status string) {
	m.ordersProcessedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordWorkflowDuration(ctx context.Context, durationSeconds float64) {
	m.workflowDuration.Record(ctx, durationSeconds)
}

// RecordInventoryDecrement counts units requested from inventory. Item IDs are
// not used as labels; there is one series for the whole catalogue.
func (m *Metrics) RecordInventoryDecrement(ctx context.Context, quantity int) {
	m.inventoryDecrementUnits.Add(ctx, int64(quantity))
}

func (m *Metrics) RecordRepositoryOperation(ctx context.Context, operation string, durationSeconds float64) {
	m.repositoryDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}
