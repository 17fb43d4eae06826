// ABOUTME: Declarative route tables for API endpoints and guarded pages
// ABOUTME: Defines all routes with their HTTP methods, handlers and rate-limit class

package handlers

import (
	"net/http"
	"slices"

	"github.com/markalston/storefront/guard"
)

// RateClass selects which limiter guards a route
type RateClass int

const (
	// RateDefault is the general per-session limit
	RateDefault RateClass = iota
	// RateAuth is the stricter per-IP limit for credential endpoints
	RateAuth
)

// Route defines an endpoint with its HTTP method and handler.
type Route struct {
	Method    string           // HTTP method (GET, POST, etc.)
	Path      string           // ServeMux pattern path (e.g., "/api/v1/products/{id}")
	Handler   http.HandlerFunc // Handler function
	Rate      RateClass        // Limiter class
	Protected bool             // Requires a verified session
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Catalog
		{Method: http.MethodGet, Path: "/api/v1/products", Handler: h.Products},
		{Method: http.MethodGet, Path: "/api/v1/products/{id}", Handler: h.Product},
		{Method: http.MethodGet, Path: "/api/v1/categories", Handler: h.Categories},

		// Auth
		{Method: http.MethodPost, Path: "/api/v1/auth/login", Handler: h.Login, Rate: RateAuth},
		{Method: http.MethodPost, Path: "/api/v1/auth/logout", Handler: h.Logout},
		{Method: http.MethodGet, Path: "/api/v1/auth/profile", Handler: h.Profile, Protected: true},
		{Method: http.MethodPost, Path: "/api/v1/users", Handler: h.CreateUser, Rate: RateAuth},
	}
}

// PageRoutes returns the page-prop routes that run behind the page guard.
// Every guarded prefix is registered with its subtree so nested pages reach
// the guard instead of falling through to a 404.
func (h *Handler) PageRoutes() []Route {
	routes := []Route{
		{Method: http.MethodGet, Path: "/{$}", Handler: h.HomePage},
	}
	for _, prefix := range slices.Concat(guard.ProtectedPrefixes, guard.AuthPrefixes) {
		handler := h.StaticPage
		if prefix == "/profile" {
			handler = h.ProfilePage
		}
		routes = append(routes,
			Route{Method: http.MethodGet, Path: prefix, Handler: handler},
			Route{Method: http.MethodGet, Path: prefix + "/", Handler: handler},
		)
	}
	return routes
}
