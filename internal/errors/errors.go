package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeExternal   ErrorType = "external_api"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

func newAt(skip int, errorType ErrorType, code, message string, internal error) *AppError {
	_, file, line, _ := runtime.Caller(skip)
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: internal,
		Source:   fmt.Sprintf("%s:%d", file, line),
		Context:  make(map[string]interface{}),
	}
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation:
		h.logger.WarnContext(ctx, "Validation error", err.LogFields()...)
	case ErrorTypeNotFound:
		h.logger.InfoContext(ctx, "Not found", err.LogFields()...)
	case ErrorTypePermission:
		h.logger.WarnContext(ctx, "Permission error", err.LogFields()...)
	case ErrorTypeDatabase, ErrorTypeExternal, ErrorTypeInternal, ErrorTypeTimeout:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// Sentinels for errors.Is. Never return these directly, use the constructors below.
var (
	ErrValidation    = &AppError{Type: ErrorTypeValidation, Code: "VALIDATION"}
	ErrNotFound      = &AppError{Type: ErrorTypeNotFound, Code: "NOT_FOUND"}
	ErrDatabaseError = &AppError{Type: ErrorTypeDatabase, Code: "DB_ERROR"}
	ErrExternalAPI   = &AppError{Type: ErrorTypeExternal, Code: "EXTERNAL_API"}
	ErrUnauthorized  = &AppError{Type: ErrorTypePermission, Code: "UNAUTHORIZED"}
	ErrConflict      = &AppError{Type: ErrorTypeValidation, Code: "CONFLICT"}
	ErrTimeout       = &AppError{Type: ErrorTypeTimeout, Code: "TIMEOUT"}
	ErrInternal      = &AppError{Type: ErrorTypeInternal, Code: "INTERNAL"}
)

func NewValidationError(message string) *AppError {
	return newAt(2, ErrorTypeValidation, "VALIDATION", message, nil)
}

func NewConflictError(message string) *AppError {
	return newAt(2, ErrorTypeValidation, "CONFLICT", message, nil)
}

func NewNotFoundError(resource string) *AppError {
	return newAt(2, ErrorTypeNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), nil).
		WithContext("resource", resource)
}

func NewDatabaseError(err error) *AppError {
	return newAt(2, ErrorTypeDatabase, "DB_ERROR", "Database operation failed", err)
}

func NewExternalAPIError(err error, api string) *AppError {
	return newAt(2, ErrorTypeExternal, "EXTERNAL_API", fmt.Sprintf("%s API error", api), err).
		WithContext("api", api)
}

func NewPermissionError(message string) *AppError {
	return newAt(2, ErrorTypePermission, "UNAUTHORIZED", message, nil)
}

func NewTimeoutError(operation string) *AppError {
	return newAt(2, ErrorTypeTimeout, "TIMEOUT", fmt.Sprintf("%s operation timed out", operation), nil).
		WithContext("operation", operation)
}

func NewInternalError(err error) *AppError {
	return newAt(2, ErrorTypeInternal, "INTERNAL", "Internal server error", err)
}

// HTTPStatus maps an error to the status code the API responds with
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case ErrorTypeValidation:
		if appErr.Code == "CONFLICT" {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypePermission:
		return http.StatusUnauthorized
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to end users
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypePermission:
			return appErr.Message
		}
	}
	return "Internal server error"
}
