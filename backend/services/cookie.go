// ABOUTME: Signs and verifies the token cookie with keyed BLAKE2b
// ABOUTME: Cookie values carry the bearer token, an expiry and a MAC over both

package services

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// CookieSigner produces token cookie values of the form <token>.<expires-unix>.<mac>
type CookieSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewCookieSigner creates a signer. key must be 1 to 64 bytes.
func NewCookieSigner(key []byte, ttl time.Duration) (*CookieSigner, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("cookie key is empty")
	}
	if _, err := blake2b.New256(key); err != nil {
		return nil, fmt.Errorf("invalid cookie key: %w", err)
	}
	return &CookieSigner{key: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns how long a signed value stays valid
func (s *CookieSigner) TTL() time.Duration {
	return s.ttl
}

// Sign returns the cookie value for token
func (s *CookieSigner) Sign(token string) string {
	expires := s.now().Add(s.ttl).Unix()
	payload := token + "." + strconv.FormatInt(expires, 10)
	return payload + "." + s.mac(payload)
}

// Verify returns the token carried by value when the MAC matches and the
// value has not expired.
func (s *CookieSigner) Verify(value string) (string, bool) {
	payload, mac, ok := cutLast(value)
	if !ok {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(mac), []byte(s.mac(payload))) != 1 {
		return "", false
	}

	token, rawExpiry, ok := cutLast(payload)
	if !ok || token == "" {
		return "", false
	}
	expires, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil || !s.now().Before(time.Unix(expires, 0)) {
		return "", false
	}
	return token, true
}

func (s *CookieSigner) mac(payload string) string {
	h, _ := blake2b.New256(s.key)
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// cutLast splits at the last dot; JWT tokens contain dots of their own
func cutLast(s string) (string, string, bool) {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
