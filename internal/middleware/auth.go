// Package middleware is the authorization gate: it consumes decoded token
// claims to admit or reject a request before the handler runs.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vasapolrittideah/twitter-api/internal/httputil"
	"github.com/vasapolrittideah/twitter-api/internal/message"
	"github.com/vasapolrittideah/twitter-api/pkg/auth"
)

type contextKey struct{}

var claimsKey = contextKey{}

// ClaimsFromContext returns the decoded access-token claims attached by
// RequireAccessToken, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *auth.TokenClaims {
	claims, _ := ctx.Value(claimsKey).(*auth.TokenClaims)
	return claims
}

// WithClaims attaches decoded claims to a context. Exposed for tests.
func WithClaims(ctx context.Context, claims *auth.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// RequireAccessToken extracts the bearer token, verifies it as an access
// token and attaches the decoded claims to the request context. An absent
// or malformed header is a 401 with a fixed message; a failed verification
// is a 401 carrying the capitalized library message, so an expired token
// reads differently from a tampered one.
func RequireAccessToken(jwtAuth *auth.JWTAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.JSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
					Message: message.AccessTokenRequired,
				})
				return
			}

			claims, err := jwtAuth.Verify(token, auth.AccessToken)
			if err != nil {
				httputil.JSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
					Message: auth.ErrorMessage(err),
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireVerified rejects requests whose decoded claims do not carry the
// Verified status. It must run after RequireAccessToken.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || claims.Verify != auth.Verified {
			httputil.JSON(w, http.StatusForbidden, httputil.ErrorResponse{
				Message: message.UserNotVerified,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// OptionalAuth runs the inner gate only when an Authorization header is
// present, otherwise the request passes through anonymously. Used by
// endpoints that behave differently for guests, such as view counting.
func OptionalAuth(inner func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		gated := inner(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			gated.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
