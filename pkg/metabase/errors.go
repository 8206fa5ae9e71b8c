package metabase

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory represents a classification of upstream failures.
type ErrorCategory string

const (
	// CategoryNotFound represents 404 responses.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryAuth represents 401/403 responses.
	CategoryAuth ErrorCategory = "auth"

	// CategoryClient represents other 4xx responses.
	CategoryClient ErrorCategory = "client"

	// CategoryRateLimit represents 429 responses.
	CategoryRateLimit ErrorCategory = "rate_limit"

	// CategoryServer represents 5xx responses.
	CategoryServer ErrorCategory = "server"

	// CategoryNetwork represents transport failures and timeouts.
	CategoryNetwork ErrorCategory = "network"
)

// ErrContextCancelled is returned when the context is cancelled during retry backoff.
var ErrContextCancelled = errors.New("context cancelled")

// APIError is a classified failure of one upstream call.
type APIError struct {
	Category   ErrorCategory
	StatusCode int
	Resource   string
	ID         int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	subject := fmt.Sprintf("%s %d", e.Resource, e.ID)
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("metabase %s error: %s: %s: %v", e.Category, subject, e.Message, e.Err)
		}
		return fmt.Sprintf("metabase %s error: %s: %s", e.Category, subject, e.Message)
	}
	return fmt.Sprintf("metabase %s error (status %d): %s: %s", e.Category, e.StatusCode, subject, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ErrorCategory returns the classification as a string.
func (e *APIError) ErrorCategory() string {
	return string(e.Category)
}

// HTTPStatus returns the upstream status code, 0 for transport failures.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// IsRetryable reports whether another attempt could succeed.
func (e *APIError) IsRetryable() bool {
	return shouldRetry(e.Category)
}

// IsNotFound reports whether err is a classified 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Category == CategoryNotFound
}

// classifyStatus maps an HTTP error status to a category.
func classifyStatus(statusCode int) ErrorCategory {
	switch {
	case statusCode == http.StatusNotFound:
		return CategoryNotFound
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return CategoryAuth
	case statusCode == http.StatusTooManyRequests:
		return CategoryRateLimit
	case statusCode >= 500:
		return CategoryServer
	default:
		return CategoryClient
	}
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(category ErrorCategory) bool {
	switch category {
	case CategoryServer, CategoryRateLimit, CategoryNetwork:
		return true
	default:
		// 4xx answers will not change on a second attempt
		return false
	}
}
