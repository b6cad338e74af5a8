package apperror

import "net/http"

// Error is an error that carries the HTTP status it must be rendered with.
// Validation rules and middleware return it to force a terminal response
// instead of being aggregated into a field-error map.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a status-tagged error.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// NotFound creates a 404 error.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}
