package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/fulfillment/internal/orders/domain"
)

// OrderRepository holds the coordinator's order registry.
type OrderRepository interface {
	// Save stores the order, replacing any order with the same ID.
	Save(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns every stored order in no particular order.
	List(ctx context.Context) ([]domain.Order, error)
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
)
