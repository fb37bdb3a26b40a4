package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/licorgest/licorgest/pkg/response"
	"github.com/licorgest/licorgest/pkg/session"
)

type tokenKey struct{}

// RequireToken guards protected routes. The bearer token may arrive either in
// the Authorization header or in the server-side session (where login stores
// it). The token itself is only decoded, never verified here — the remote
// auth service owns verification via /auth/verify-token.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token == "" {
			token = session.FromCtx(r).Token()
		}

		if token == "" {
			response.Unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), tokenKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromCtx returns the bearer token stashed by RequireToken, or "".
func TokenFromCtx(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok {
		return t
	}
	return ""
}
