// ABOUTME: Persistent client-side storage ports: a key-value item store and a cookie jar
// ABOUTME: Resolves the default data directory following the XDG spec

package storage

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AppName names the data directory under the XDG config home
const AppName = "storefront"

// Items is a string key-value store with local storage semantics.
// A missing key is reported through ok, not an error.
type Items interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Cookies is a named cookie jar. Expired cookies read as absent.
type Cookies interface {
	GetCookie(name string) (*Cookie, error)
	SetCookie(c Cookie) error
	RemoveCookie(name string) error
}

// Cookie is a persisted cookie with its attributes
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Expires  time.Time
	Secure   bool
	SameSite http.SameSite
}

// Expired reports whether the cookie has passed its expiry at now.
// A zero expiry never expires.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// DefaultDataDir returns the default data directory following XDG spec
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

func sameSiteString(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteLaxMode:
		return "lax"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return ""
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
