package sword

import (
	"fmt"
	"net/http"

	"github.com/tphakala/swordgate/internal/errors"
)

// ErrorURIBadRequest is the SWORD error code for rejected content.
const ErrorURIBadRequest = "http://purl.org/net/sword/error/ErrorBadRequest"

const (
	backingAuthor       = "JPER"
	validationTreatment = "validation failed"
)

var (
	// ErrNotFound means the id, collection or media resource does not exist.
	ErrNotFound = errors.NewStd("not found")
	// ErrUnauthorized means the router refused the forwarded credentials.
	ErrUnauthorized = errors.NewStd("unauthorized")
	// ErrNotImplemented is returned by SWORD operations the router has no counterpart for.
	ErrNotImplemented = errors.NewStd("operation not implemented")
)

// ValidationError is the router's rejection of deposited content.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// SwordError is a failure that maps onto a SWORD error response. When Empty is
// set the response carries only the status; otherwise it carries an error document.
type SwordError struct {
	Status    int
	ErrorURI  string
	Message   string
	Author    string
	Treatment string
	Empty     bool
}

func (e *SwordError) Error() string {
	if e.Empty {
		return fmt.Sprintf("sword error %d", e.Status)
	}
	return fmt.Sprintf("sword error %d (%s): %s", e.Status, e.ErrorURI, e.Message)
}

// newBadRequest builds the error document answer for rejected content.
func newBadRequest(message string) *SwordError {
	return &SwordError{
		Status:    http.StatusBadRequest,
		ErrorURI:  ErrorURIBadRequest,
		Message:   message,
		Author:    backingAuthor,
		Treatment: validationTreatment,
	}
}

// StatusCode maps an adapter error onto its HTTP status. Anything outside the
// taxonomy is a server error, never a 404.
func StatusCode(err error) int {
	var swordErr *SwordError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &swordErr):
		return swordErr.Status
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
