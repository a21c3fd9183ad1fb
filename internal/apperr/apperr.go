// Package apperr provides the typed domain errors surfaced by the API.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned to clients.
const (
	CodeValidation    = "VALIDATION_FAILED"
	CodeAuthorization = "NOT_AUTHORIZED"
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeConflict      = "WRITE_CONFLICT"
	CodeNotFound      = "NOT_FOUND"
)

// AppError is a structured application error with an HTTP status, a
// machine-readable code, and optional structured params for client display.
type AppError struct {
	Code       string         `json:"code"`             // Machine-readable error code.
	Message    string         `json:"message"`          // Human-readable message.
	HTTPStatus int            `json:"-"`                // HTTP status to respond with.
	Params     map[string]any `json:"params,omitempty"` // Structured context for the client.
	Err        error          `json:"-"`                // Wrapped underlying error.
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation creates a 400 error for malformed or missing input.
func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Authorization creates a 403 error carrying the specific denial reason.
func Authorization(reason string) *AppError {
	return &AppError{Code: CodeAuthorization, Message: reason, HTTPStatus: http.StatusForbidden}
}

// QuotaExceeded creates a 409 error carrying the current count and limit.
func QuotaExceeded(current, max int) *AppError {
	return &AppError{
		Code:       CodeQuotaExceeded,
		Message:    fmt.Sprintf("reporter quota reached (%d of %d)", current, max),
		HTTPStatus: http.StatusConflict,
		Params:     map[string]any{"current": current, "max": max},
	}
}

// Conflict creates a 503 error for a write that lost a serialization race.
// The client may safely retry the same request later.
func Conflict(message string, err error) *AppError {
	return &AppError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusServiceUnavailable, Err: err}
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound}
}

// As extracts an AppError when err wraps one.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
