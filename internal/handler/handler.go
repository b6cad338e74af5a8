// Package handler wires the HTTP endpoints: each route runs its declarative
// validation schema, then the handler body consumes the validated request
// and the claims the gate attached.
package handler

import (
	"net/http"

	"github.com/vasapolrittideah/twitter-api/internal/httputil"
	"github.com/vasapolrittideah/twitter-api/internal/validate"
)

// Stash keys under which validation rules leave decoded values for the
// handler body.
const (
	stashUser                = "user"
	stashRefreshTokenClaims  = "decoded_refresh_token"
	stashEmailVerifyClaims   = "decoded_email_verify_token"
	stashForgotPasswordClaim = "decoded_forgot_password_token"
)

// validated runs a schema before the handler. Recoverable failures render
// as one aggregated 422; a status-tagged error renders as-is and the
// handler is never invoked.
func validated(schema validate.Schema, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := validate.NewRequest(r)
		if err != nil {
			httputil.Error(w, err)
			return
		}

		if err := schema.Run(r.Context(), req); err != nil {
			httputil.Error(w, err)
			return
		}

		next(w, r.WithContext(validate.WithRequest(r.Context(), req)))
	}
}
