package store

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityErrorsMatchSentinels(t *testing.T) {
	for _, err := range []error{ErrUserNotFound, ErrSessionNotFound, ErrNotebookNotFound, ErrPageNotFound, ErrElementNotFound, ErrMediaNotFound} {
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrAlreadyExists)
	}
	assert.ErrorIs(t, ErrEmailTaken, ErrAlreadyExists)
}

func TestError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := fmt.Errorf("save element: %w", ErrInvalidInput.WithCause(cause))

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, cause)

	var storeErr *Error
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, http.StatusBadRequest, storeErr.HTTPCode())
	assert.Equal(t, "invalid input: disk I/O error", storeErr.Error())
}
