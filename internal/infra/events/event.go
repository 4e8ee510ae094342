package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is a hook notification about a processor object.
type Event interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time

	// Reference is the processor id of the object the event is about, for
	// example an invoice or webhook event id. It may be empty.
	Reference() string
	// ObjectKind names the kind of object behind Reference ("invoice").
	ObjectKind() string
}

// BaseEvent carries the fields every hook event shares. Embed it by value.
type BaseEvent struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	At      time.Time `json:"occurred_at"`
	Ref     string    `json:"reference,omitempty"`
	RefKind string    `json:"object"`
}

func (e BaseEvent) EventID() uuid.UUID    { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.At }
func (e BaseEvent) Reference() string     { return e.Ref }
func (e BaseEvent) ObjectKind() string    { return e.RefKind }

// NewBaseEvent stamps a new event id and the current time.
func NewBaseEvent(eventType, reference, kind string) BaseEvent {
	return BaseEvent{
		ID:      uuid.New(),
		Type:    eventType,
		At:      time.Now().UTC(),
		Ref:     reference,
		RefKind: kind,
	}
}
