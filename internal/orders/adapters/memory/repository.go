package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/fulfillment/internal/orders/domain"
	"github.com/dejobratic/fulfillment/internal/orders/ports"
)

// Repository is the process-lifetime order registry. Orders are copied on the
// way in and out so callers never share item slices with the store.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewRepository constructs an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

// Save stores the order, overwriting any previous entry with the same ID.
func (r *Repository) Save(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order.Clone()
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := order.Clone()
	return &clone, nil
}

// List returns a snapshot of all stored orders in map iteration order.
func (r *Repository) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		result = append(result, order.Clone())
	}
	return result, nil
}
