package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/fulfillment/internal/orders/ports"
)

// Store keeps idempotent responses for the lifetime of the process.
type Store struct {
	mu    sync.Mutex
	items map[string]ports.StoredResponse
}

func NewStore() *Store {
	return &Store{items: make(map[string]ports.StoredResponse)}
}

// Get returns nil, nil when nothing is stored for key.
func (s *Store) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	value.Body = append([]byte(nil), value.Body...)
	return &value, nil
}

// Save ignores later responses for a key that is already stored.
func (s *Store) Save(_ context.Context, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; exists {
		return nil
	}
	response.Body = append([]byte(nil), response.Body...)
	s.items[key] = response
	return nil
}
