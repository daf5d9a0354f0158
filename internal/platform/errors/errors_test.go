package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		typ    ErrorType
		status int
	}{
		{"validation", ValidationError("bad anchor"), TypeValidation, http.StatusBadRequest},
		{"forbidden", ForbiddenError("no session"), TypeForbidden, http.StatusForbidden},
		{"not found", NotFoundError("missing"), TypeNotFound, http.StatusNotFound},
		{"internal", InternalError("boom", nil), TypeInternal, http.StatusInternalServerError},
		{"external", ExternalError("redis down", nil), TypeExternal, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.Contains(t, tt.err.Error(), string(tt.typ))
		})
	}
}

func TestHTTPStatus_UnknownType(t *testing.T) {
	err := &Error{Type: "mystery", Message: "?"}
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestError_IncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExternalError("anchor store unavailable", cause)

	assert.Equal(t, "external: anchor store unavailable: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWithField_Chains(t *testing.T) {
	err := ValidationError("anchor too long").
		WithField("length", 300).
		WithField("session_id", "abc")

	assert.Equal(t, 300, err.Fields["length"])
	assert.Equal(t, "abc", err.Fields["session_id"])
}

func TestToResponse_OmitsFields(t *testing.T) {
	err := InternalError("failed to save anchor", errors.New("secret detail")).WithField("session_id", "abc")

	resp := err.ToResponse()
	assert.Equal(t, "failed to save anchor", resp.Error)
	assert.Equal(t, TypeInternal, resp.Type)
}

func TestAsStructuredError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, AsStructuredError(nil))
	})

	t.Run("structured passes through", func(t *testing.T) {
		orig := NotFoundError("gone")
		assert.Same(t, orig, AsStructuredError(orig))
	})

	t.Run("wrapped structured is unwrapped", func(t *testing.T) {
		orig := ValidationError("bad")
		got := AsStructuredError(fmt.Errorf("handler: %w", orig))
		assert.Same(t, orig, got)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		plain := errors.New("disk full")
		got := AsStructuredError(plain)
		require.NotNil(t, got)
		assert.Equal(t, TypeInternal, got.Type)
		assert.Equal(t, "internal server error", got.Message)
		assert.ErrorIs(t, got, plain)
	})
}
