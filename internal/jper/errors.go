package jper

import (
	"fmt"

	"github.com/tphakala/swordgate/internal/errors"
)

var (
	// ErrNotFound means the router has no notification with that id.
	ErrNotFound = errors.NewStd("notification not found")
	// ErrUnauthorized means the router rejected the forwarded API key.
	ErrUnauthorized = errors.NewStd("router rejected credentials")
)

// ValidationError carries the router's explanation for rejecting a deposit.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ErrorCategory implements errors.CategorizedError.
func (e *ValidationError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryValidation
}

// StatusError is a router response the client has no specific meaning for.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("router returned HTTP %d: %s", e.StatusCode, e.Body)
}

// getErrorCategory maps a router HTTP status to an error category.
func getErrorCategory(statusCode int) errors.ErrorCategory {
	switch {
	case statusCode == 401 || statusCode == 403:
		return errors.CategoryAuth
	case statusCode == 404:
		return errors.CategoryNotFound
	case statusCode == 400:
		return errors.CategoryValidation
	case statusCode == 429:
		return errors.CategoryLimit
	case statusCode >= 500:
		return errors.CategoryIntegration
	default:
		return errors.CategoryHTTP
	}
}
