package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testEvent(eventType string) Event {
	e := NewBaseEvent(eventType, "ref_1", "test")
	return &e
}

func TestBus_Emit(t *testing.T) {
	t.Run("calls handlers in registration order", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		var calls []string
		bus.Register(NewHandlerFunc([]string{"a"}, func(ctx context.Context, e Event) error {
			calls = append(calls, "first")
			return nil
		}))
		bus.Register(NewHandlerFunc([]string{"a", "b"}, func(ctx context.Context, e Event) error {
			calls = append(calls, "second:"+e.EventType())
			return nil
		}))

		assert.NoError(t, bus.Emit(context.Background(), testEvent("a")))
		assert.NoError(t, bus.Emit(context.Background(), testEvent("b")))
		assert.Equal(t, []string{"first", "second:a", "second:b"}, calls)
	})

	t.Run("no handlers is a no-op", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		assert.NoError(t, bus.Emit(context.Background(), testEvent("none")))
	})

	t.Run("handler errors are isolated", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		called := false
		bus.Register(NewHandlerFunc([]string{"a"}, func(ctx context.Context, e Event) error {
			return errors.New("boom")
		}))
		bus.Register(NewHandlerFunc([]string{"a"}, func(ctx context.Context, e Event) error {
			called = true
			return nil
		}))

		assert.NoError(t, bus.Emit(context.Background(), testEvent("a")))
		assert.True(t, called)
	})

	t.Run("panics are recovered", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		bus.Register(NewHandlerFunc([]string{"a"}, func(ctx context.Context, e Event) error {
			panic("listener bug")
		}))

		assert.NotPanics(t, func() {
			assert.NoError(t, bus.Emit(context.Background(), testEvent("a")))
		})
	})

	t.Run("rejection is reported after all handlers ran", func(t *testing.T) {
		bus := NewBus(zap.NewNop())
		called := false
		bus.Register(NewHandlerFunc([]string{"a"}, func(ctx context.Context, e Event) error {
			return ErrRejected
		}))
		bus.Register(NewHandlerFunc([]string{"a"}, func(ctx context.Context, e Event) error {
			called = true
			return nil
		}))

		err := bus.Emit(context.Background(), testEvent("a"))
		assert.ErrorIs(t, err, ErrRejected)
		assert.True(t, called)
	})
}
