package integrations

import (
	"net/http"
	"time"

	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
)

const httpTimeout = 30 * time.Second

// Sentinel errors carry an error code, so both errors.Is(err, ErrNotFound)
// and apperr.Is(err, apperr.ErrCodeNotFound) work on wrapped results.
var (
	// ErrNotFound is returned when the requested resource doesn't exist.
	ErrNotFound error = apperr.New(apperr.ErrCodeNotFound, "resource not found")

	// ErrUnauthorized is returned when the credential is missing or rejected.
	ErrUnauthorized error = apperr.New(apperr.ErrCodeUnauthorized, "unauthorized")

	// ErrNetwork is returned for transport failures and non-success responses.
	ErrNetwork error = apperr.New(apperr.ErrCodeNetwork, "network error")

	// ErrMalformed is returned when a response payload has an unexpected shape.
	ErrMalformed error = apperr.New(apperr.ErrCodeMalformedResponse, "malformed response")
)

// NewHTTPClient creates an HTTP client with the standard timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
