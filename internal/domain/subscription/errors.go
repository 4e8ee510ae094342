package subscription

import "errors"

// Domain errors for subscription reconciliation.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrNoLineItem           = errors.New("processor subscription has no line item")
	ErrGatewayMismatch      = errors.New("subscription belongs to another gateway")
)
