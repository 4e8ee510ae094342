package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by adapters and handlers.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrNotSupported = errors.New("not supported")
	ErrBadGateway   = errors.New("processor failure")
)

// Error codes carried in AppError.Code.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// statusBySentinel maps sentinel errors to HTTP status codes. Order matters
// for errors that wrap more than one sentinel.
var statusBySentinel = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrValidation, http.StatusUnprocessableEntity},
	{ErrNotSupported, http.StatusUnprocessableEntity},
	{ErrBadGateway, http.StatusBadGateway},
}

// AppError is an error with an HTTP status and a stable code.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Err        error          `json:"-"`

	kind error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError by code and the sentinel the error was built
// with, otherwise defers to the wrapped error.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	if e.kind != nil && e.kind == target {
		return true
	}
	return errors.Is(e.Err, target)
}

// WithDetails attaches field-level details.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// WithError replaces the wrapped error. Code-based matching still applies.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// ErrorResponse is the JSON envelope of an AppError.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the body of ErrorResponse.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse converts the error to its JSON envelope.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: e.Code, Message: e.Message, Details: e.Details}}
}

func newAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: status, Err: err, kind: err}
}

// ValidationError reports a record or request that failed validation.
func ValidationError(message string) *AppError {
	return newAppError(CodeValidation, message, http.StatusUnprocessableEntity, ErrValidation)
}

// GetStatusCode returns the HTTP status for err.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

