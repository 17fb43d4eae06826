// ABOUTME: Page access rules shared by the backend pre-render check and the CLI
// ABOUTME: Maps session state and a path to an optional redirect target

package guard

import (
	"net/url"
	"strings"
)

const (
	// LoginPath is where unauthenticated visitors of protected pages are sent
	LoginPath = "/login"
	// HomePath is where authenticated visitors of auth pages are sent
	HomePath = "/"
	// CallbackParam carries the original path through the login redirect
	CallbackParam = "callbackUrl"
)

// ProtectedPrefixes require an authenticated session
var ProtectedPrefixes = []string{"/cart", "/profile", "/checkout"}

// AuthPrefixes are only useful without a session
var AuthPrefixes = []string{"/login", "/signup"}

// State is the part of the session a guard needs
type State struct {
	Authenticated bool
	Loading       bool
}

// Decision is the outcome of a guard check.
// Pending means the session is still restoring and no decision can be made yet.
type Decision struct {
	RedirectTo string
	Pending    bool
}

// Allowed reports whether the visitor may stay on the requested path
func (d Decision) Allowed() bool {
	return !d.Pending && d.RedirectTo == ""
}

// Decide applies the page rules to a path
func Decide(s State, path string) Decision {
	if s.Loading {
		return Decision{Pending: true}
	}

	if IsProtected(path) && !s.Authenticated {
		return Decision{RedirectTo: LoginRedirect(path)}
	}

	if IsAuthPage(path) && s.Authenticated {
		return Decision{RedirectTo: HomePath}
	}

	return Decision{}
}

// IsProtected reports whether path falls under a protected prefix
func IsProtected(path string) bool {
	return matchesAny(path, ProtectedPrefixes)
}

// IsAuthPage reports whether path falls under an auth prefix
func IsAuthPage(path string) bool {
	return matchesAny(path, AuthPrefixes)
}

// LoginRedirect builds the login URL carrying the original path
func LoginRedirect(from string) string {
	if from == "" || from == LoginPath {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{CallbackParam: {from}}.Encode()
}

// CallbackTarget returns the post-login destination encoded in a login URL.
// Only local paths are honoured; anything else falls back to HomePath.
func CallbackTarget(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return HomePath
	}
	target := values.Get(CallbackParam)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return HomePath
	}
	return target
}

// matchesAny matches whole path segments so /cart matches /cart/x but not /cartoon
func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
