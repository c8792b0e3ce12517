package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/dejobratic/fulfillment/internal/orders/domain"
	"github.com/dejobratic/fulfillment/internal/orders/metrics"
	"github.com/dejobratic/fulfillment/internal/orders/ports"
	"github.com/dejobratic/fulfillment/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *metrics.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *metrics.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Save(ctx context.Context, order domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Save")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.status", string(order.Status)),
		attribute.Int("order.items", len(order.Items)),
	)

	start := time.Now()
	err := r.repo.Save(ctx, order)
	r.metrics.RecordRepositoryOperation(ctx, "save", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetByID")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("order.id", id))

	start := time.Now()
	order, err := r.repo.GetByID(ctx, id)
	r.metrics.RecordRepositoryOperation(ctx, "get_by_id", time.Since(start).Seconds())

	switch {
	case errors.Is(err, ports.ErrNotFound):
		telemetry.AddSpanAttributes(span, attribute.Bool("order.found", false))
		return nil, err
	case err != nil:
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Bool("order.found", true))
	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.List")
	defer span.End()

	start := time.Now()
	orders, err := r.repo.List(ctx)
	r.metrics.RecordRepositoryOperation(ctx, "list", time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}
