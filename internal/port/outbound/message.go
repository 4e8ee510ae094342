package outbound

import (
	"context"

	"github.com/uniedit/paysync/internal/infra/events"
)

// HookPublisherPort notifies host collaborators of reconciliation milestones.
type HookPublisherPort interface {
	// Emit delivers the event to every listener registered for its type.
	// It returns events.ErrRejected when a listener vetoed the default action.
	Emit(ctx context.Context, event events.Event) error
}
