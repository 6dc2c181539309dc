package editor

import (
	"errors"
	"fmt"
)

// Sentinel errors. Backends wrap their failures so errors.Is classifies them.
var (
	ErrNotFound     = errors.New("element not found")
	ErrForbidden    = errors.New("permission denied")
	ErrValidation   = errors.New("invalid element")
	ErrNetwork      = errors.New("network error")
	ErrUnauthorized = errors.New("not authenticated")

	// ErrElementGone is returned by undo/redo when the target element no
	// longer exists. The history entry is dropped.
	ErrElementGone = errors.New("element no longer exists")

	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrGestureActive is returned when undo/redo is attempted mid-gesture.
	ErrGestureActive = errors.New("gesture in progress")

	// ErrNoPage is returned by mutations before a page is loaded.
	ErrNoPage = errors.New("no page loaded")
)

// ValidationError names the field that failed a local check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
