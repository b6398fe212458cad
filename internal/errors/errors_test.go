package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Is(t *testing.T) {
	err := NewNotFoundError("log entry")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))

	wrapped := fmt.Errorf("delete: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestAppError_IsInternal(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError(cause)

	assert.True(t, errors.Is(err, ErrDatabaseError))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "validation: bad ratio", NewValidationError("bad ratio").Error())
	assert.Equal(t, "database: Database operation failed (internal: boom)",
		NewDatabaseError(errors.New("boom")).Error())
}

func TestAppError_SourcePointsAtCaller(t *testing.T) {
	err := NewValidationError("x")
	assert.True(t, strings.Contains(err.Source, "errors_test.go"), err.Source)
}

func TestAppError_LogFields(t *testing.T) {
	err := NewExternalAPIError(errors.New("quota"), "gemini")
	fields := err.LogFields()

	require.Equal(t, 0, len(fields)%2)
	joined := fmt.Sprint(fields...)
	assert.Contains(t, joined, "gemini")
	assert.Contains(t, joined, "quota")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("x"), http.StatusBadRequest},
		{"conflict", NewConflictError("x"), http.StatusConflict},
		{"not found", NewNotFoundError("alarm"), http.StatusNotFound},
		{"permission", NewPermissionError("x"), http.StatusUnauthorized},
		{"external", NewExternalAPIError(errors.New("x"), "gemini"), http.StatusBadGateway},
		{"database", NewDatabaseError(errors.New("x")), http.StatusInternalServerError},
		{"timeout", NewTimeoutError("carb estimation"), http.StatusGatewayTimeout},
		{"plain", errors.New("x"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NewNotFoundError("user")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "alarm not found", PublicMessage(NewNotFoundError("alarm")))
	assert.Equal(t, "Internal server error", PublicMessage(NewDatabaseError(errors.New("secret dsn"))))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("plain")))
}

func TestHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	h.Handle(context.Background(), NewValidationError("bad input"))
	h.Handle(context.Background(), errors.New("plain failure"))
	h.Handle(context.Background(), nil)

	out := buf.String()
	assert.Contains(t, out, "Validation error")
	assert.Contains(t, out, "Unhandled error")
	assert.Contains(t, out, "plain failure")
}
