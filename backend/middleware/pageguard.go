// ABOUTME: Request-time page guard in front of page routes
// ABOUTME: Redirects anonymous visitors off protected pages and signed-in visitors off auth pages

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/markalston/storefront/guard"
)

// PageGuard applies the shared page rules using the session attached by
// Session. Must run after Session in the chain.
func PageGuard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := guard.State{Authenticated: GetToken(r) != ""}

		decision := guard.Decide(state, r.URL.Path)
		if decision.Allowed() {
			next(w, r)
			return
		}

		slog.Debug("Page guard redirect",
			"path", sanitizePath(r.URL.Path),
			"to", decision.RedirectTo,
		)
		w.Header().Set("x-middleware-cache", "no-cache")
		http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
	}
}
