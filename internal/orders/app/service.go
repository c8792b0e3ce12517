package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/fulfillment/internal/orders/domain"
	"github.com/dejobratic/fulfillment/internal/orders/ports"
)

// ErrOrderNotRecorded is returned when order.created was published but no
// subscriber stored the order.
var ErrOrderNotRecorded = errors.New("order was not recorded by any subscriber")

// Service bundles use cases for handling orders via the API.
type Service struct {
	coordinator *Coordinator
	events      ports.EventPublisher
	idemStore   ports.IdempotencyStore
}

// NewService wires required dependencies.
func NewService(
	coordinator *Coordinator,
	events ports.EventPublisher,
	idem ports.IdempotencyStore,
) *Service {
	return &Service{
		coordinator: coordinator,
		events:      events,
		idemStore:   idem,
	}
}

// PlaceOrderInput captures payload for placing an order.
type PlaceOrderInput struct {
	OrderID string            `json:"order_id"`
	Items   []domain.LineItem `json:"items"`
}

// PlaceOrder announces a new order on the bus and returns the order as the
// coordinator left it. Dispatch is synchronous, so on success the order is
// already approved.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	candidate := domain.NewOrder(input.OrderID, input.Items, time.Now().UTC())
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	event := domain.OrderCreated{OrderID: input.OrderID, Items: domain.CopyItems(input.Items)}
	if err := s.events.Publish(ctx, event); err != nil {
		return nil, fmt.Errorf("publish order created: %w", err)
	}

	order, err := s.coordinator.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotRecorded
	}

	return order, nil
}

// GetOrder retrieves an order by ID; nil when unknown.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.coordinator.GetOrder(ctx, id)
}

// ListOrders returns every known order.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.coordinator.GetAllOrders(ctx)
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
