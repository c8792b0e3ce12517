package domain

import "github.com/dejobratic/fulfillment/internal/events"

const (
	EventOrderCreated       events.Name = "order.created"
	EventInventoryDecrement events.Name = "inventory.decrement"
	EventOrderApproved      events.Name = "order.approved"
)

// OrderCreated is published by whoever creates an order. The coordinator is its only subscriber.
type OrderCreated struct {
	OrderID string     `json:"order_id"`
	Items   []LineItem `json:"items"`
}

func (OrderCreated) EventName() events.Name { return EventOrderCreated }

// InventoryDecrement asks the inventory subsystem to remove stock for one line item.
type InventoryDecrement struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

func (InventoryDecrement) EventName() events.Name { return EventInventoryDecrement }

// OrderApproved announces that an order passed fulfillment and may be shipped.
type OrderApproved struct {
	OrderID string     `json:"order_id"`
	Items   []LineItem `json:"items"`
}

func (OrderApproved) EventName() events.Name { return EventOrderApproved }
