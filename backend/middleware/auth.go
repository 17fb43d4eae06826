// ABOUTME: Session middleware reading the signed token cookie
// ABOUTME: Attaches the verified bearer token to the request context

package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// TokenCookieName is the cookie holding the signed bearer token
const TokenCookieName = "token"

// TokenVerifier checks a cookie value and returns the token it carries
type TokenVerifier interface {
	Verify(value string) (string, bool)
}

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const tokenKey contextKey = "token"

// Session returns middleware that verifies the token cookie. A valid cookie
// puts its token on the request context; a missing, forged or expired
// cookie leaves the request anonymous.
func Session(v TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(TokenCookieName)
			if err != nil || cookie.Value == "" || v == nil {
				next(w, r)
				return
			}

			token, ok := v.Verify(cookie.Value)
			if !ok {
				slog.Debug("Ignoring invalid token cookie", "path", sanitizePath(r.URL.Path))
				next(w, r)
				return
			}

			next(w, r.WithContext(WithToken(r.Context(), token)))
		}
	}
}

// RequireSession rejects anonymous requests with 401
func RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if GetToken(r) == "" {
			writeJSONError(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// WithToken returns a context carrying token
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// GetToken returns the verified token for r, or "" for anonymous requests
func GetToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}
