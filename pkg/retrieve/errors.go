package retrieve

import (
	"errors"
	"fmt"
)

// ValidationError is a missing, malformed, or out-of-range parameter.
// No fetch is attempted when one is returned.
type ValidationError struct {
	Param  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return "Invalid parameter: " + e.Param
	}
	return fmt.Sprintf("Invalid parameter: %s (%s)", e.Param, e.Reason)
}

// ClassifiedError is an upstream error tagged with a resource category.
// *metabase.APIError implements it.
type ClassifiedError interface {
	error
	ErrorCategory() string
	HTTPStatus() int
	IsRetryable() bool
}

// TotalFailureError reports that every ID of a batch failed.
type TotalFailureError struct {
	Model     Model
	Attempted int
	Err       error
}

// Error implements the error interface.
func (e *TotalFailureError) Error() string {
	return fmt.Sprintf("failed to retrieve any %s (%d requested): %v", e.Model, e.Attempted, e.Err)
}

// Unwrap returns the first underlying error.
func (e *TotalFailureError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// totalFailure returns first as-is when it is classified so callers can
// branch on its category, and wraps it otherwise.
func totalFailure(model Model, attempted int, first error) error {
	var classified ClassifiedError
	if errors.As(first, &classified) {
		return first
	}
	return &TotalFailureError{Model: model, Attempted: attempted, Err: first}
}
