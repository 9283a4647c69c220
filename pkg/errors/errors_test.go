package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: fmt.Errorf("db down")}
	assert.Equal(t, "INTERNAL_ERROR: boom: db down", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "shop not found"}
	assert.Equal(t, "NOT_FOUND: shop not found", bare.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		status   int
		code     string
		sentinel error
	}{
		{"not found", NotFound("shop", "s-1"), http.StatusNotFound, "NOT_FOUND", ErrNotFound},
		{"already exists", AlreadyExists("product", "id", "p-1"), http.StatusConflict, "ALREADY_EXISTS", ErrAlreadyExists},
		{"invalid input", InvalidInput("shop id is required"), http.StatusBadRequest, "INVALID_INPUT", ErrInvalidInput},
		{"unauthorized", Unauthorized("login first"), http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized},
		{"forbidden", Forbidden("not your shop"), http.StatusForbidden, "FORBIDDEN", ErrForbidden},
		{"conflict", Conflict("stale"), http.StatusConflict, "CONFLICT", ErrConflict},
		{"upstream", Upstream("image upload failed", errors.New("timeout")), http.StatusInternalServerError, "UPSTREAM_ERROR", ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("shop", "abc")
	assert.Equal(t, "shop with id abc not found", err.Message)
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Upstream("image upload failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestWithDetails_DoesNotMutateOriginal(t *testing.T) {
	base := InvalidInput("bad rows")
	detailed := base.WithDetails([]string{"row 2"})

	require.NotNil(t, detailed.Details)
	assert.Nil(t, base.Details)
	assert.Equal(t, base.Code, detailed.Code)
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("get shop: %w", ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Wrap(ErrInvalidInput, "parse file")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrServiceUnavail))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestHTTPStatus_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("create product: %w", Forbidden("nope"))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(err))
}
