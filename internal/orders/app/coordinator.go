package app

import (
	"context"
	"log/slog"

	"github.com/dejobratic/fulfillment/internal/events"
	"github.com/dejobratic/fulfillment/internal/orders/app/commands"
	"github.com/dejobratic/fulfillment/internal/orders/app/queries"
	"github.com/dejobratic/fulfillment/internal/orders/domain"
	"github.com/dejobratic/fulfillment/internal/orders/metrics"
	"github.com/dejobratic/fulfillment/internal/orders/ports"
)

// Coordinator reacts to created orders by requesting inventory decrements and
// approving the order. It owns the order registry behind repo.
type Coordinator struct {
	onCreated commands.OrderCreatedHandler
	getOrder  *queries.GetOrderQueryHandler
	list      *queries.ListOrdersQueryHandler
}

// NewCoordinator wires the workflow handler and the read side over repo.
func NewCoordinator(
	repo ports.OrderRepository,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Coordinator {
	counted := commands.NewDecrementCountingPublisher(publisher, metrics)
	coreHandler := commands.NewProcessOrderCreatedHandler(repo, counted)
	observableHandler := commands.NewObservableOrderCreatedHandler(coreHandler, logger, metrics)

	return &Coordinator{
		onCreated: observableHandler,
		getOrder:  queries.NewGetOrderQueryHandler(repo),
		list:      queries.NewListOrdersQueryHandler(repo),
	}
}

// Register subscribes the coordinator to order.created on bus.
func (c *Coordinator) Register(bus *events.Bus) {
	events.Subscribe(bus, c.OnOrderCreated)
}

// OnOrderCreated runs the workflow for a single order.created event. Errors
// flow back through the bus to whoever published the event.
func (c *Coordinator) OnOrderCreated(ctx context.Context, event domain.OrderCreated) error {
	_, err := c.onCreated.Handle(ctx, event)
	return err
}

// GetAllOrders returns every order seen so far, in no particular order.
func (c *Coordinator) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return c.list.Handle(ctx)
}

// GetOrder returns the order with id, or nil when it has never been seen.
func (c *Coordinator) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return c.getOrder.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}
