package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dejobratic/fulfillment/internal/orders/domain"
	"github.com/dejobratic/fulfillment/internal/orders/ports"
)

// OrderCreatedHandler runs the fulfillment workflow for a newly created order.
// The returned order reflects how far the workflow got, even on error.
type OrderCreatedHandler interface {
	Handle(ctx context.Context, event domain.OrderCreated) (*domain.Order, error)
}

type ProcessOrderCreatedHandler struct {
	repo   ports.OrderRepository
	events ports.EventPublisher
}

func NewProcessOrderCreatedHandler(
	repo ports.OrderRepository,
	events ports.EventPublisher,
) *ProcessOrderCreatedHandler {
	return &ProcessOrderCreatedHandler{
		repo:   repo,
		events: events,
	}
}

// Handle records the order, asks inventory to decrement each line item, then
// approves the order and announces it. A failed publish aborts the workflow;
// decrements already emitted are not compensated.
func (h *ProcessOrderCreatedHandler) Handle(ctx context.Context, event domain.OrderCreated) (*domain.Order, error) {
	order := domain.NewOrder(event.OrderID, event.Items, time.Now().UTC())
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	for _, item := range order.Items {
		decrement := domain.InventoryDecrement{ItemID: item.ItemID, Quantity: item.Quantity}
		if err := h.events.Publish(ctx, decrement); err != nil {
			return &order, fmt.Errorf("publish inventory decrement for item %s: %w", item.ItemID, err)
		}
	}

	// Stock is never checked, so every order that gets here is approved.
	// There is no path to a rejected order yet.
	if err := order.Approve(time.Now().UTC()); err != nil {
		return &order, err
	}

	if err := h.repo.Save(ctx, order); err != nil {
		return &order, fmt.Errorf("save approved order: %w", err)
	}

	approved := domain.OrderApproved{OrderID: order.ID, Items: domain.CopyItems(order.Items)}
	if err := h.events.Publish(ctx, approved); err != nil {
		return &order, fmt.Errorf("publish order approved: %w", err)
	}

	return &order, nil
}
