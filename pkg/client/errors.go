package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/journalapp/journal-server/pkg/editor"
)

// Error codes the client reacts to.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeValidation   = "VALIDATION"
	CodeNotFound     = "NOT_FOUND"
)

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps the status to an editor sentinel error.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return editor.ErrNotFound
	case e.Status == http.StatusForbidden:
		return editor.ErrForbidden
	case e.Status == http.StatusUnauthorized:
		return editor.ErrUnauthorized
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnprocessableEntity:
		return editor.ErrValidation
	case e.Status >= 500:
		return editor.ErrNetwork
	}
	return nil
}

// Temporary reports whether repeating the request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Retryable reports whether err is a transient failure: a network error,
// a 5xx or a 429. Everything else fails immediately.
func Retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return errors.Is(err, editor.ErrNetwork)
}
