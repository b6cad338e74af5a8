// Package httputil holds the JSON response envelope shared by handlers and
// middleware.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vasapolrittideah/twitter-api/internal/message"
	"github.com/vasapolrittideah/twitter-api/internal/validate"
	"github.com/vasapolrittideah/twitter-api/pkg/apperror"
)

// Response is the success envelope.
type Response struct {
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
}

// ErrorResponse is the error envelope. Errors is present only for the
// aggregated-validation case.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, msg string, result any) {
	JSON(w, http.StatusOK, Response{Message: msg, Result: result})
}

// Error classifies err and writes the matching error envelope: a
// status-tagged error is forwarded as-is, aggregated validation failures
// become a 422 with the per-field map, and anything unrecognized falls
// through to a generic 500.
func Error(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		JSON(w, appErr.Status, ErrorResponse{Message: appErr.Message})
		return
	}

	var fieldErrors validate.Errors
	if errors.As(err, &fieldErrors) {
		JSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Message: message.ValidationError,
			Errors:  fieldErrors,
		})
		return
	}

	JSON(w, http.StatusInternalServerError, ErrorResponse{Message: message.InternalError})
}
