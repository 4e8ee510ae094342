package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrRejected is returned by a listener to veto the action following an event.
var ErrRejected = errors.New("rejected by listener")

// Bus is a synchronous in-process hook registry.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewBus creates a new event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Register registers a handler for the events it handles.
func (b *Bus) Register(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, eventType := range handler.Handles() {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
		b.logger.Debug("registered event handler",
			zap.String("event_type", eventType),
		)
	}
}

// Emit dispatches an event to all registered handlers in registration order.
// Handler failures are logged and do not stop the others. If any handler
// rejected the event, Emit returns ErrRejected after all handlers ran.
func (b *Bus) Emit(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	b.logger.Debug("emitting event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("reference", event.Reference()),
		zap.String("object", event.ObjectKind()),
		zap.Int("handler_count", len(handlers)),
	)

	var rejected bool
	for _, handler := range handlers {
		if err := b.invoke(ctx, handler, event); err != nil {
			if errors.Is(err, ErrRejected) {
				rejected = true
				continue
			}
			b.logger.Error("event handler failed",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}

	if rejected {
		return ErrRejected
	}
	return nil
}

// invoke runs a handler, turning a panic into an error.
func (b *Bus) invoke(ctx context.Context, handler Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}
