package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OrderStatus captures where an order is in the fulfillment workflow.
type OrderStatus string

const (
	StatusCreated  OrderStatus = "CREATED"
	StatusApproved OrderStatus = "APPROVED"
)

var (
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// LineItem pairs an item identifier with a requested quantity.
type LineItem struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Order is the unit the coordinator drives through fulfillment. Items are
// fixed at creation; only Status changes afterwards.
type Order struct {
	ID        string      `json:"id"`
	Items     []LineItem  `json:"items"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewOrder builds an order in the CREATED state. The items slice is copied.
func NewOrder(id string, items []LineItem, now time.Time) Order {
	return Order{
		ID:        id,
		Items:     CopyItems(items),
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: order_id is required", ErrInvalidOrder)
	}
	for i, item := range o.Items {
		if strings.TrimSpace(item.ItemID) == "" {
			return fmt.Errorf("%w: items[%d].item_id is required", ErrInvalidOrder, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: items[%d].quantity must be at least 1", ErrInvalidOrder, i)
		}
	}
	return nil
}

// Approve moves a CREATED order to APPROVED.
func (o *Order) Approve(now time.Time) error {
	if o.Status != StatusCreated {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusApproved)
	}
	o.Status = StatusApproved
	o.UpdatedAt = now
	return nil
}

// IsTerminal indicates whether the order can still change status.
func (o Order) IsTerminal() bool {
	return o.Status == StatusApproved
}

// Clone returns a copy that shares no memory with o.
func (o Order) Clone() Order {
	o.Items = CopyItems(o.Items)
	return o
}

func CopyItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
