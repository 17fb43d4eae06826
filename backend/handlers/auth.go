// ABOUTME: Auth handlers implementing the BFF cookie pattern
// ABOUTME: Proxies login, profile and signup and owns the signed token cookie

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/markalston/storefront/backend/middleware"
	"github.com/markalston/storefront/backend/models"
	"github.com/markalston/storefront/backend/services"
)

// Login authenticates with the catalog API and sets the token cookie.
// The cookie is only set once the profile fetch succeeds.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	token, err := h.catalog.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var upErr *services.UpstreamError
		switch {
		case errors.Is(err, services.ErrNoToken):
			slog.Error("Login returned no token", "email", req.Email)
			h.writeError(w, err.Error(), http.StatusBadGateway)
		case errors.As(err, &upErr) && upErr.Status < http.StatusInternalServerError:
			slog.Warn("Authentication failed", "email", req.Email, "status", upErr.Status)
			msg := upstreamMessage(upErr, "Incorrect email or password")
			h.writeJSON(w, upErr.Status, models.LoginResponse{Success: false, Error: msg})
		default:
			h.writeUpstreamError(w, err, "Login failed")
		}
		return
	}

	user, err := h.catalog.Profile(r.Context(), token)
	if err != nil {
		slog.Warn("Profile fetch after login failed", "email", req.Email, "error", err)
		h.writeUpstreamError(w, err, "Failed to load profile")
		return
	}

	h.setTokenCookie(w, token)

	h.writeJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		User:    user,
	})
}

// Logout clears the token cookie. Safe to call without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Profile returns the signed-in user. An upstream 401 also clears the cookie.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.catalog.Profile(r.Context(), middleware.GetToken(r))
	if err != nil {
		var upErr *services.UpstreamError
		if errors.As(err, &upErr) && upErr.Status == http.StatusUnauthorized {
			h.clearTokenCookie(w)
			h.writeError(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		h.writeUpstreamError(w, err, "Failed to load profile")
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

// CreateUser registers an account. It does not sign the new user in.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		h.writeError(w, "All fields are required", http.StatusBadRequest)
		return
	}
	req.Avatar = models.DefaultAvatar

	user, err := h.catalog.CreateUser(r.Context(), req)
	if err != nil {
		h.writeUpstreamError(w, err, "Invalid data provided. Please check your information")
		return
	}

	slog.Info("Account created", "user_id", user.ID)
	h.writeJSON(w, http.StatusCreated, user)
}

// setTokenCookie sets the signed token cookie
func (h *Handler) setTokenCookie(w http.ResponseWriter, token string) {
	ttl := h.signer.TTL()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    h.signer.Sign(token),
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   h.cookieSecure(),
		SameSite: http.SameSiteStrictMode,
	})
}

// clearTokenCookie expires the token cookie
func (h *Handler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookieSecure(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) cookieSecure() bool {
	return h.cfg != nil && h.cfg.CookieSecure
}
