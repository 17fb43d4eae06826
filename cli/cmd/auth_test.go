// ABOUTME: Tests for the account commands
// ABOUTME: Verifies login messages, callbacks, signup validation and logout

package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLogin_Success(t *testing.T) {
	shop := useShop(t)

	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf, "jane@mail.com", "Secret123", ""); code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Logged in as Jane <jane@mail.com>") {
		t.Errorf("unexpected output %q", buf.String())
	}

	// The next command restores the session from the stored token
	buf.Reset()
	if code := runProfile(context.Background(), &buf); code != 0 {
		t.Fatalf("expected profile to succeed, got %d\n%s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Role:   customer") {
		t.Errorf("unexpected profile output %q", buf.String())
	}

	shop.mu.Lock()
	defer shop.mu.Unlock()
	last := shop.authHeaders[len(shop.authHeaders)-1]
	if last != "Bearer "+testToken {
		t.Errorf("expected bearer token on restore, got %q", last)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	useShop(t)

	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf, "jane@mail.com", "nope", ""); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	// The catalog's bare "Unauthorized" gives way to the canned 401 text
	if strings.TrimSpace(buf.String()) != "Incorrect email or password" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLogin_Callback(t *testing.T) {
	useShop(t)

	var buf bytes.Buffer
	runLogin(context.Background(), &buf, "jane@mail.com", "Secret123", "/cart")
	if !strings.Contains(buf.String(), "Continue with: storefront cart") {
		t.Errorf("expected continue hint, got %q", buf.String())
	}

	buf.Reset()
	useShop(t)
	runLogin(context.Background(), &buf, "jane@mail.com", "Secret123", "https://evil.example.com")
	if strings.Contains(buf.String(), "Continue with") {
		t.Errorf("expected external callback to be ignored, got %q", buf.String())
	}
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	useShop(t)
	login(t)

	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf, "jane@mail.com", "Secret123", ""); code != 0 {
		t.Errorf("expected exit 0, got %d", code)
	}
	if !strings.Contains(buf.String(), "You are already logged in.") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestProfile_RequiresLogin(t *testing.T) {
	useShop(t)

	var buf bytes.Buffer
	if code := runProfile(context.Background(), &buf); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "--callback-url /profile") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLogout_ClearsSessionAndCart(t *testing.T) {
	useShop(t)
	var discard bytes.Buffer
	runCartAdd(context.Background(), &discard, "1", 1)
	login(t)

	var buf bytes.Buffer
	if code := runLogout(&buf); code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, buf.String())
	}

	buf.Reset()
	if code := runProfile(context.Background(), &buf); code != 1 {
		t.Errorf("expected profile to require login after logout, got %d", code)
	}

	jsonOutput = true
	buf.Reset()
	runStatus(context.Background(), &buf)
	if !strings.Contains(buf.String(), `"cart_items": 0`) {
		t.Errorf("expected empty cart after logout\n%s", buf.String())
	}
}

func TestSignup(t *testing.T) {
	shop := useShop(t)

	var buf bytes.Buffer
	if code := runSignup(context.Background(), &buf, "Jo", "jo@mail.com", "Passw0rd"); code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Account created for Jo") {
		t.Errorf("unexpected output %q", buf.String())
	}

	shop.mu.Lock()
	defer shop.mu.Unlock()
	if shop.createdUser == nil || shop.createdUser.Avatar == "" {
		t.Errorf("expected a default avatar to be sent, got %+v", shop.createdUser)
	}
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"short", "Pa1", "Password must be at least 8 characters long"},
		{"no upper", "password1", "Password must contain at least one uppercase letter"},
		{"no digit", "Password", "Password must contain at least one number"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			shop := useShop(t)

			var buf bytes.Buffer
			if code := runSignup(context.Background(), &buf, "Jo", "jo@mail.com", tc.password); code != 1 {
				t.Errorf("expected exit 1, got %d", code)
			}
			if strings.TrimSpace(buf.String()) != tc.want {
				t.Errorf("expected %q, got %q", tc.want, buf.String())
			}
			if shop.createdUser != nil {
				t.Error("expected no request for invalid input")
			}
		})
	}
}

func TestCommandFor(t *testing.T) {
	tests := map[string]string{
		"/cart":      "cart",
		"/cart/42":   "cart",
		"/checkout":  "checkout",
		"/profile":   "profile",
		"/":          "products",
		"/cartoon/1": "products",
	}
	for path, want := range tests {
		if got := commandFor(path); got != want {
			t.Errorf("commandFor(%q) = %q, want %q", path, got, want)
		}
	}
}
