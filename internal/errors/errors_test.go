package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeHTTPStatus(t *testing.T) {
	tests := map[Code]int{
		CodeNotFound:           http.StatusNotFound,
		CodeAlreadyExists:      http.StatusConflict,
		CodeForbidden:          http.StatusForbidden,
		CodeValidation:         http.StatusBadRequest,
		CodeTokenExpired:       http.StatusUnauthorized,
		CodeInvalidCredentials: http.StatusUnauthorized,
		CodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
		CodeUnsupportedMedia:   http.StatusUnsupportedMediaType,
		CodeRateLimited:        http.StatusTooManyRequests,
		CodeInternal:           http.StatusInternalServerError,
		Code("SOMETHING_ELSE"):  http.StatusInternalServerError,
	}

	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), code)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := NotFoundf("element %s not found", "el_1")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrForbidden))

	wrapped := fmt.Errorf("update element: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestWithCauseAndDetails(t *testing.T) {
	cause := New("disk full")
	err := Internal("save media").WithCause(cause).WithDetails(map[string]string{"key": "abc"})

	assert.Equal(t, "save media: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, map[string]string{"key": "abc"}, err.Details)
}

func TestWrap(t *testing.T) {
	cause := New("boom")
	err := Wrapf(cause, CodeConflict, "page %d", 3)

	assert.Equal(t, CodeConflict, err.Code)
	assert.Equal(t, "page 3: boom", err.Error())
	assert.Equal(t, http.StatusConflict, err.HTTPStatus())
}
