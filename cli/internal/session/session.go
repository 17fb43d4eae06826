// ABOUTME: Session controller: restores, establishes and tears down the authenticated session
// ABOUTME: Owns the token lifecycle, the profile, and the loading flag page guards wait on

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/markalston/storefront/cli/internal/client"
	"github.com/markalston/storefront/guard"
)

// ErrNoToken is returned when a login response carries no access token
var ErrNoToken = errors.New("login failed: no token")

// API is the part of the HTTP client the session needs
type API interface {
	Login(ctx context.Context, email, password string) (*oauth2.Token, error)
	Profile(ctx context.Context) (*client.User, error)
	CreateUser(ctx context.Context, nu client.NewUser) (*client.User, error)
	SetAuthToken(token string)
	ClearAuthToken()
}

// TokenStore persists the bearer token
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	RemoveToken() error
}

// CartClearer empties the cart on logout
type CartClearer interface {
	Clear() error
}

// Phase is the session state machine position
type Phase int

const (
	Unauthenticated Phase = iota
	Restoring
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is a point-in-time snapshot of the session
type State struct {
	Phase           Phase
	IsAuthenticated bool
	IsLoading       bool
	User            *client.User
}

// Guard converts the snapshot to page guard input
func (s State) Guard() guard.State {
	return guard.State{Authenticated: s.IsAuthenticated, Loading: s.IsLoading}
}

// Controller owns the session state
type Controller struct {
	api    API
	tokens TokenStore
	cart   CartClearer
	logger *slog.Logger

	mu          sync.Mutex
	phase       Phase
	user        *client.User
	loading     bool
	initialized bool
}

// New creates a session controller. It reports IsLoading until Initialize
// has finished. cart may be nil.
func New(api API, tokens TokenStore, cart CartClearer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		api:     api,
		tokens:  tokens,
		cart:    cart,
		logger:  logger,
		loading: true,
	}
}

// State returns a snapshot of the session
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Phase:           c.phase,
		IsAuthenticated: c.phase == Authenticated,
		IsLoading:       c.loading,
		User:            c.user,
	}
}

// Initialize restores a persisted session. It runs once per controller;
// later calls return immediately. Restore failures are logged, never returned.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return
	}
	c.initialized = true
	c.mu.Unlock()

	token, err := c.tokens.Token()
	if err != nil {
		c.logger.Warn("reading persisted token failed", "error", err)
	}
	if token == "" {
		c.mu.Lock()
		c.phase = Unauthenticated
		c.loading = false
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.phase = Restoring
	c.mu.Unlock()

	c.api.SetAuthToken(token)
	user, err := c.api.Profile(ctx)
	if err != nil {
		c.logger.Warn("session restore failed", "error", err)
		c.cleanup()
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.phase = Authenticated
	c.user = user
	c.loading = false
	c.mu.Unlock()
	c.logger.Info("session restored", "user_id", user.ID)
}

// Login exchanges credentials for a token, persists it and loads the profile.
// Credential failures come back as *LoginError; a profile failure after a
// token was issued is returned as is.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	tok, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.logger.Info("login rejected", "error", err)
		return newLoginError(err)
	}
	if tok == nil || tok.AccessToken == "" {
		return ErrNoToken
	}

	if err := c.tokens.SetToken(tok.AccessToken); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	c.api.SetAuthToken(tok.AccessToken)

	user, err := c.api.Profile(ctx)
	if err != nil {
		c.logger.Warn("profile fetch after login failed", "error", err)
		c.cleanup()
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	c.mu.Lock()
	c.phase = Authenticated
	c.user = user
	c.mu.Unlock()
	c.logger.Info("logged in", "user_id", user.ID)
	return nil
}

// Logout removes the token, the profile and the cart. It is safe to call
// when already logged out. Storage failures are returned after the in-memory
// state has been cleared.
func (c *Controller) Logout() error {
	err := c.cleanup()
	if c.cart != nil {
		if cerr := c.cart.Clear(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to clear cart: %w", cerr))
		}
	}
	return err
}

// cleanup drops every trace of the session except the cart
func (c *Controller) cleanup() error {
	var err error
	if rerr := c.tokens.RemoveToken(); rerr != nil {
		err = fmt.Errorf("failed to remove token: %w", rerr)
	}
	c.api.ClearAuthToken()

	c.mu.Lock()
	c.phase = Unauthenticated
	c.user = nil
	c.mu.Unlock()
	return err
}
