package utils

import (
	"errors"
	"net/http"
)

// APIError is an error that carries the HTTP status it should be reported with.
// Handlers convert it into the {statusCode, message, success:false} envelope.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates an APIError with the given status and message.
func NewAPIError(status int, message string) *APIError {
	return &APIError{StatusCode: status, Message: message}
}

func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, message)
}

func Unauthorized(message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, message)
}

func NotFound(message string) *APIError {
	return NewAPIError(http.StatusNotFound, message)
}

func Conflict(message string) *APIError {
	return NewAPIError(http.StatusConflict, message)
}

// Internal wraps cause so it can be logged; only message reaches the client.
func Internal(message string, cause error) *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, Message: message, Err: cause}
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
