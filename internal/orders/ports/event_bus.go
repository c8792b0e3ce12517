package ports

import (
	"context"

	"github.com/dejobratic/fulfillment/internal/events"
)

// EventPublisher emits workflow events to whoever subscribed to them.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}
