package store

import (
	"fmt"
	"net/http"
)

// Error is a persistence error carrying the HTTP status it maps to.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same status code, so entity specific
// variants satisfy errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound      = &Error{Code: http.StatusNotFound, Message: "resource not found"}
	ErrAlreadyExists = &Error{Code: http.StatusConflict, Message: "resource already exists"}
	ErrInvalidInput  = &Error{Code: http.StatusBadRequest, Message: "invalid input"}
)

// Entity specific not-found errors. All match ErrNotFound under errors.Is.
var (
	ErrUserNotFound     = ErrNotFound.WithMessage("user not found")
	ErrSessionNotFound  = ErrNotFound.WithMessage("session not found")
	ErrNotebookNotFound = ErrNotFound.WithMessage("notebook not found")
	ErrPageNotFound     = ErrNotFound.WithMessage("page not found")
	ErrElementNotFound  = ErrNotFound.WithMessage("element not found")
	ErrMediaNotFound    = ErrNotFound.WithMessage("media not found")
	ErrEmailTaken       = ErrAlreadyExists.WithMessage("email already registered")
)
