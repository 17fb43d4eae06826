// ABOUTME: Bearer token persistence on top of the cookie jar
// ABOUTME: Writes the "token" cookie with a 7-day expiry and strict same-site

package storage

import (
	"net/http"
	"time"
)

const (
	// TokenCookieName is the cookie holding the bearer token
	TokenCookieName = "token"
	// TokenTTL is how long a persisted token lives
	TokenTTL = 7 * 24 * time.Hour
)

// TokenStore persists the session token as a cookie
type TokenStore struct {
	jar    Cookies
	secure bool
	now    func() time.Time
}

// NewTokenStore creates a token store. secure sets the cookie's Secure flag
// and should be true in production.
func NewTokenStore(jar Cookies, secure bool) *TokenStore {
	return &TokenStore{jar: jar, secure: secure, now: time.Now}
}

// Token returns the persisted token, or "" when none is held
func (t *TokenStore) Token() (string, error) {
	c, err := t.jar.GetCookie(TokenCookieName)
	if err != nil || c == nil {
		return "", err
	}
	return c.Value, nil
}

// SetToken persists a token for TokenTTL
func (t *TokenStore) SetToken(token string) error {
	return t.jar.SetCookie(Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  t.now().Add(TokenTTL),
		Secure:   t.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// RemoveToken deletes the persisted token
func (t *TokenStore) RemoveToken() error {
	return t.jar.RemoveCookie(TokenCookieName)
}
