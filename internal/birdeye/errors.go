package birdeye

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned when the client is built without an API key
var ErrMissingAPIKey = errors.New("BIRDSEYE_API_KEY not set in environment variables")

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 1024

// APIError is returned for non-2xx responses
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("birdeye %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsRetryable reports whether the request may succeed if repeated
func (e *APIError) IsRetryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// IsAPIError reports whether err carries an APIError with the given status.
// A zero status matches any APIError.
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return status == 0 || apiErr.Status == status
}
