// ABOUTME: Tests for the token cookie session middleware
// ABOUTME: Verifies valid, forged and missing cookies and the RequireSession gate

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockVerifier accepts values of the form "signed:<token>"
type mockVerifier struct {
	VerifyFunc func(value string) (string, bool)
}

func (m *mockVerifier) Verify(value string) (string, bool) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(value)
	}
	token, ok := strings.CutPrefix(value, "signed:")
	return token, ok && token != ""
}

func serveSession(t *testing.T, cookie string) string {
	t.Helper()
	var got string
	handler := Session(&mockVerifier{})(func(w http.ResponseWriter, r *http.Request) {
		got = GetToken(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: cookie})
	}
	handler(httptest.NewRecorder(), req)
	return got
}

func TestSession_ValidCookie(t *testing.T) {
	if got := serveSession(t, "signed:abc.def"); got != "abc.def" {
		t.Errorf("GetToken() = %q, want %q", got, "abc.def")
	}
}

func TestSession_ForgedCookie(t *testing.T) {
	if got := serveSession(t, "abc.def"); got != "" {
		t.Errorf("GetToken() = %q, want anonymous", got)
	}
}

func TestSession_NoCookie(t *testing.T) {
	if got := serveSession(t, ""); got != "" {
		t.Errorf("GetToken() = %q, want anonymous", got)
	}
}

func TestSession_NilVerifier(t *testing.T) {
	var got string
	handler := Session(nil)(func(w http.ResponseWriter, r *http.Request) {
		got = GetToken(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "signed:abc"})
	handler(httptest.NewRecorder(), req)

	if got != "" {
		t.Errorf("GetToken() = %q, want anonymous without a verifier", got)
	}
}

func TestRequireSession_RejectsAnonymous(t *testing.T) {
	called := false
	handler := RequireSession(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if called {
		t.Error("Handler should not run for anonymous requests")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["error"] != "Not authenticated" || body["code"] != float64(401) {
		t.Errorf("Unexpected body %v", body)
	}
}

func TestRequireSession_AllowsSession(t *testing.T) {
	called := false
	handler := RequireSession(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req = req.WithContext(WithToken(req.Context(), "abc"))
	handler(httptest.NewRecorder(), req)

	if !called {
		t.Error("Handler should run for requests with a session")
	}
}
