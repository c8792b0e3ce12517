package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Name identifies an event kind on the bus.
type Name string

// Event is implemented by every payload that travels over the bus.
type Event interface {
	EventName() Name
}

// Handler reacts to a published event.
type Handler func(ctx context.Context, event Event) error

var (
	// ErrUnexpectedPayload is returned by typed handlers that receive a payload of another Go type.
	ErrUnexpectedPayload = errors.New("unexpected event payload")
)

// SubscriberError describes a failure of a single handler during Publish.
type SubscriberError struct {
	Event Name
	Index int
	Err   error
}

func (e *SubscriberError) Error() string {
	return fmt.Sprintf("subscriber %d for %s: %v", e.Index, e.Event, e.Err)
}

func (e *SubscriberError) Unwrap() error {
	return e.Err
}

// Bus is an in-process publish/subscribe registry. Handlers run synchronously,
// on the publishing goroutine, in registration order.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Name][]Handler
	logger      *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report subscriber failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBus constructs an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[Name][]Handler),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register appends handler to the subscriber list for name. The same handler
// may be registered more than once and is then invoked once per registration.
func (b *Bus) Register(name Name, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[name] = append(b.subscribers[name], handler)
}

// Subscribers reports how many handlers are registered for name.
func (b *Bus) Subscribers(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[name])
}

// Publish invokes every handler registered for the event's name. A failing or
// panicking handler does not prevent the remaining ones from running; all
// failures are joined into the returned error.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return errors.New("publish nil event")
	}
	name := event.EventName()

	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[name]...)
	b.mu.RUnlock()

	var errs []error
	for i, handler := range handlers {
		if err := invoke(ctx, handler, event); err != nil {
			b.logger.ErrorContext(ctx, "event subscriber failed",
				"event", string(name),
				"subscriber", i,
				"error", err,
			)
			errs = append(errs, &SubscriberError{Event: name, Index: i, Err: err})
		}
	}

	return errors.Join(errs...)
}

func invoke(ctx context.Context, handler Handler, event Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return handler(ctx, event)
}

// Subscribe registers a handler typed on the payload T. The event name is
// taken from T's zero value, so T must be a value type whose EventName does
// not depend on its fields.
func Subscribe[T Event](b *Bus, fn func(ctx context.Context, event T) error) {
	var zero T
	b.Register(zero.EventName(), func(ctx context.Context, event Event) error {
		typed, ok := event.(T)
		if !ok {
			return fmt.Errorf("%w: want %T, got %T", ErrUnexpectedPayload, zero, event)
		}
		return fn(ctx, typed)
	})
}
