package ports

import "context"

// StoredResponse is the response replayed when a client retries order placement with the same key.
type StoredResponse struct {
	StatusCode int
	Body       []byte
	OrderID    string
}

// IdempotencyStore remembers responses keyed by the client's Idempotency-Key header.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	// Save keeps the first response stored for a key.
	Save(ctx context.Context, key string, response StoredResponse) error
}
