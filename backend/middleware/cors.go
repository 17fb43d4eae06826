// ABOUTME: CORS middleware for cross-origin storefront frontends
// ABOUTME: Echoes allow-listed origins with credentials so the token cookie travels

package middleware

import (
	"net/http"
	"slices"
)

// CORSWithConfig returns middleware that allows the listed origins.
// Requests from other origins get no CORS headers. OPTIONS preflight
// requests are answered with 204 without calling the wrapped handler.
func CORSWithConfig(allowedOrigins []string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(allowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next(w, r)
		}
	}
}
