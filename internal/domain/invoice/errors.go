package invoice

import "errors"

// Domain errors for invoice reconciliation.
var (
	// ErrSubscriptionNotFound is returned when a paid invoice references a
	// subscription that never became visible locally.
	ErrSubscriptionNotFound = errors.New("subscription not found for invoice")
)
