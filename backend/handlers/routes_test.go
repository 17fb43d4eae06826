// ABOUTME: Tests for route table definitions
// ABOUTME: Verifies all routes have required fields and no duplicates

package handlers

import (
	"strings"
	"testing"
)

func TestRoutes_AllRoutesHaveRequiredFields(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)
	routes := h.Routes()

	if len(routes) == 0 {
		t.Fatal("Routes() returned empty slice")
	}

	for i, route := range routes {
		if route.Method == "" {
			t.Errorf("Route %d: Method is empty", i)
		}
		if route.Handler == nil {
			t.Errorf("Route %d: Handler is nil", i)
		}
		if !strings.HasPrefix(route.Path, "/api/v1/") {
			t.Errorf("Route %d: Path %q must start with /api/v1/", i, route.Path)
		}
	}
}

func TestRoutes_NoDuplicatePaths(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	seen := make(map[string]bool)
	for _, route := range append(h.Routes(), h.PageRoutes()...) {
		key := route.Method + " " + route.Path
		if seen[key] {
			t.Errorf("Duplicate route: %s", key)
		}
		seen[key] = true
	}
}

func TestRoutes_ExpectedEndpoints(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	expected := map[string]bool{
		"GET /api/v1/health":        false,
		"GET /api/v1/products":      false,
		"GET /api/v1/products/{id}": false,
		"GET /api/v1/categories":    false,
		"POST /api/v1/auth/login":   false,
		"POST /api/v1/auth/logout":  false,
		"GET /api/v1/auth/profile":  false,
		"POST /api/v1/users":        false,
	}

	for _, route := range h.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := expected[key]; ok {
			expected[key] = true
		} else {
			t.Errorf("Unexpected route: %s", key)
		}
	}

	for endpoint, found := range expected {
		if !found {
			t.Errorf("Missing expected endpoint: %s", endpoint)
		}
	}
}

func TestRoutes_RateClassesAndProtection(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	for _, route := range h.Routes() {
		credential := route.Path == "/api/v1/auth/login" || route.Path == "/api/v1/users"
		if credential != (route.Rate == RateAuth) {
			t.Errorf("%s %s: unexpected rate class %d", route.Method, route.Path, route.Rate)
		}
		if route.Protected != (route.Path == "/api/v1/auth/profile") {
			t.Errorf("%s %s: unexpected Protected=%v", route.Method, route.Path, route.Protected)
		}
	}
}

func TestPageRoutes(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	want := []string{
		"/{$}",
		"/cart", "/cart/",
		"/profile", "/profile/",
		"/checkout", "/checkout/",
		"/login", "/login/",
		"/signup", "/signup/",
	}
	routes := h.PageRoutes()
	if len(routes) != len(want) {
		t.Fatalf("Expected %d page routes, got %d", len(want), len(routes))
	}
	for i, route := range routes {
		if route.Path != want[i] || route.Method != "GET" || route.Handler == nil {
			t.Errorf("Page route %d: got %s %s, want GET %s", i, route.Method, route.Path, want[i])
		}
	}
}
