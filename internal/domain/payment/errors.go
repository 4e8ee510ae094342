package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrCustomer is returned when the processor customer could not be resolved.
	ErrCustomer = errors.New("customer error")

	// ErrNotSupported is returned when a transaction cannot be processed by this gateway.
	ErrNotSupported = errors.New("operation not supported")

	// ErrIntentNotFound is returned when no stored intent matches a reference.
	ErrIntentNotFound = errors.New("payment intent not found")

	// ErrRequestRejected is returned when a listener vetoed the outbound request.
	ErrRequestRejected = errors.New("payment request rejected")
)

// GatewayError is an unstructured processor failure. It is fatal for the caller.
type GatewayError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error.
func (e *GatewayError) Unwrap() error {
	return e.Err
}
