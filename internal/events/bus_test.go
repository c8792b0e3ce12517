package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dejobratic/fulfillment/internal/events"
)

type pinged struct {
	Seq int
}

func (pinged) EventName() events.Name { return "test.pinged" }

type ponged struct{}

func (ponged) EventName() events.Name { return "test.ponged" }

// impostor reuses pinged's name with a different Go type.
type impostor struct{}

func (impostor) EventName() events.Name { return "test.pinged" }

func TestBusPublish(t *testing.T) {
	t.Run("is a no-op without subscribers", func(t *testing.T) {
		bus := events.NewBus()

		if err := bus.Publish(context.Background(), pinged{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("invokes subscribers in registration order", func(t *testing.T) {
		bus := events.NewBus()
		var calls []string

		bus.Register("test.pinged", func(_ context.Context, _ events.Event) error {
			calls = append(calls, "first")
			return nil
		})
		bus.Register("test.pinged", func(_ context.Context, _ events.Event) error {
			calls = append(calls, "second")
			return nil
		})

		if err := bus.Publish(context.Background(), pinged{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
			t.Errorf("expected [first second], got %v", calls)
		}
	})

	t.Run("invokes a duplicated registration once per registration", func(t *testing.T) {
		bus := events.NewBus()
		count := 0
		handler := func(_ context.Context, _ events.Event) error {
			count++
			return nil
		}

		bus.Register("test.pinged", handler)
		bus.Register("test.pinged", handler)

		if err := bus.Publish(context.Background(), pinged{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if count != 2 {
			t.Errorf("expected 2 invocations, got %d", count)
		}
	})

	t.Run("only dispatches to subscribers of the published name", func(t *testing.T) {
		bus := events.NewBus()
		pings, pongs := 0, 0

		bus.Register("test.pinged", func(_ context.Context, _ events.Event) error {
			pings++
			return nil
		})
		bus.Register("test.ponged", func(_ context.Context, _ events.Event) error {
			pongs++
			return nil
		})

		_ = bus.Publish(context.Background(), ponged{})

		if pings != 0 || pongs != 1 {
			t.Errorf("expected 0 pings and 1 pong, got %d and %d", pings, pongs)
		}
	})

	t.Run("keeps running subscribers after one fails", func(t *testing.T) {
		bus := events.NewBus()
		failure := errors.New("stock service down")
		secondRan := false

		bus.Register("test.pinged", func(_ context.Context, _ events.Event) error {
			return failure
		})
		bus.Register("test.pinged", func(_ context.Context, _ events.Event) error {
			secondRan = true
			return nil
		})

		err := bus.Publish(context.Background(), pinged{})

		if !errors.Is(err, failure) {
			t.Fatalf("expected error to wrap subscriber failure, got %v", err)
		}
		if !secondRan {
			t.Error("expected second subscriber to run")
		}

		var subErr *events.SubscriberError
		if !errors.As(err, &subErr) {
			t.Fatalf("expected SubscriberError, got %T", err)
		}
		if subErr.Event != "test.pinged" || subErr.Index != 0 {
			t.Errorf("expected failure at test.pinged/0, got %s/%d", subErr.Event, subErr.Index)
		}
	})

	t.Run("converts a panicking subscriber into an error", func(t *testing.T) {
		bus := events.NewBus()
		secondRan := false

		bus.Register("test.pinged", func(_ context.Context, _ events.Event) error {
			panic("boom")
		})
		bus.Register("test.pinged", func(_ context.Context, _ events.Event) error {
			secondRan = true
			return nil
		})

		err := bus.Publish(context.Background(), pinged{})

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !secondRan {
			t.Error("expected second subscriber to run")
		}
	})

	t.Run("supports publishing from inside a subscriber", func(t *testing.T) {
		bus := events.NewBus()
		var order []string

		bus.Register("test.pinged", func(ctx context.Context, _ events.Event) error {
			order = append(order, "ping")
			return bus.Publish(ctx, ponged{})
		})
		bus.Register("test.ponged", func(_ context.Context, _ events.Event) error {
			order = append(order, "pong")
			return nil
		})

		if err := bus.Publish(context.Background(), pinged{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(order) != 2 || order[0] != "ping" || order[1] != "pong" {
			t.Errorf("expected [ping pong], got %v", order)
		}
	})

	t.Run("rejects a nil event", func(t *testing.T) {
		bus := events.NewBus()

		if err := bus.Publish(context.Background(), nil); err == nil {
			t.Error("expected error for nil event")
		}
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("delivers the typed payload", func(t *testing.T) {
		bus := events.NewBus()
		var got pinged

		events.Subscribe(bus, func(_ context.Context, event pinged) error {
			got = event
			return nil
		})

		if err := bus.Publish(context.Background(), pinged{Seq: 7}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got.Seq != 7 {
			t.Errorf("expected seq 7, got %d", got.Seq)
		}
		if n := bus.Subscribers("test.pinged"); n != 1 {
			t.Errorf("expected 1 subscriber, got %d", n)
		}
	})

	t.Run("reports a payload of the wrong type", func(t *testing.T) {
		bus := events.NewBus()

		events.Subscribe(bus, func(_ context.Context, _ pinged) error {
			t.Error("typed handler should not run")
			return nil
		})

		err := bus.Publish(context.Background(), impostor{})

		if !errors.Is(err, events.ErrUnexpectedPayload) {
			t.Errorf("expected ErrUnexpectedPayload, got %v", err)
		}
	})
}

func TestBusConcurrentAccess(t *testing.T) {
	bus := events.NewBus()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Register("test.pinged", func(_ context.Context, _ events.Event) error {
				return nil
			})
		}()
		go func(seq int) {
			defer wg.Done()
			_ = bus.Publish(context.Background(), pinged{Seq: seq})
		}(i)
	}
	wg.Wait()

	if n := bus.Subscribers("test.pinged"); n != 20 {
		t.Errorf("expected 20 subscribers, got %d", n)
	}
}
