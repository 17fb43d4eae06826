// ABOUTME: Tests for the session controller
// ABOUTME: Uses function-field mocks for the API and in-memory storage for the token

package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"github.com/markalston/storefront/cli/internal/cart"
	"github.com/markalston/storefront/cli/internal/client"
	"github.com/markalston/storefront/cli/internal/storage"
)

type mockAPI struct {
	LoginFunc      func(ctx context.Context, email, password string) (*oauth2.Token, error)
	ProfileFunc    func(ctx context.Context) (*client.User, error)
	CreateUserFunc func(ctx context.Context, nu client.NewUser) (*client.User, error)

	authHeader    string
	profileCalls  int
	headerAtFetch string
}

func (m *mockAPI) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockAPI) Profile(ctx context.Context) (*client.User, error) {
	m.profileCalls++
	m.headerAtFetch = m.authHeader
	return m.ProfileFunc(ctx)
}

func (m *mockAPI) CreateUser(ctx context.Context, nu client.NewUser) (*client.User, error) {
	return m.CreateUserFunc(ctx, nu)
}

func (m *mockAPI) SetAuthToken(token string) { m.authHeader = token }
func (m *mockAPI) ClearAuthToken()           { m.authHeader = "" }

var john = &client.User{ID: 1, Name: "John", Email: "john@mail.com"}

func profileOK(context.Context) (*client.User, error) { return john, nil }

func tokenOK(context.Context, string, string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "tok-1", RefreshToken: "ref-1"}, nil
}

type fixture struct {
	api    *mockAPI
	mem    *storage.Memory
	tokens *storage.TokenStore
	cart   *cart.Controller
	ctrl   *Controller
}

func newFixture(t *testing.T, api *mockAPI) *fixture {
	t.Helper()
	mem := storage.NewMemory()
	tokens := storage.NewTokenStore(mem, false)
	c, err := cart.New(mem, nil)
	if err != nil {
		t.Fatalf("cart.New() error: %v", err)
	}
	return &fixture{
		api:    api,
		mem:    mem,
		tokens: tokens,
		cart:   c,
		ctrl:   New(api, tokens, c, nil),
	}
}

func TestNew_LoadingUntilInitialized(t *testing.T) {
	f := newFixture(t, &mockAPI{})
	s := f.ctrl.State()
	if !s.IsLoading {
		t.Error("expected IsLoading before Initialize")
	}
	if !s.Guard().Loading {
		t.Error("expected guard state to be loading")
	}
}

func TestNew_NilLoggerDiscards(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	api := &mockAPI{LoginFunc: func(context.Context, string, string) (*oauth2.Token, error) {
		return nil, &client.APIError{Status: 401}
	}}
	ctrl := New(api, storage.NewTokenStore(storage.NewMemory(), false), nil, nil)

	if err := ctrl.Login(context.Background(), "a@b.c", "x"); err == nil {
		t.Fatal("expected login to fail")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output, got %q", buf.String())
	}
}

func TestInitialize_NoToken(t *testing.T) {
	api := &mockAPI{ProfileFunc: profileOK}
	f := newFixture(t, api)

	f.ctrl.Initialize(context.Background())

	s := f.ctrl.State()
	if s.IsAuthenticated || s.User != nil || s.IsLoading {
		t.Errorf("unexpected state %+v", s)
	}
	if s.Phase != Unauthenticated {
		t.Errorf("Phase = %v, want unauthenticated", s.Phase)
	}
	if api.profileCalls != 0 {
		t.Errorf("expected no profile fetch, got %d", api.profileCalls)
	}
}

func TestInitialize_RestoresSession(t *testing.T) {
	api := &mockAPI{ProfileFunc: profileOK}
	f := newFixture(t, api)
	f.tokens.SetToken("persisted")

	f.ctrl.Initialize(context.Background())

	s := f.ctrl.State()
	if !s.IsAuthenticated || s.User != john || s.IsLoading {
		t.Errorf("unexpected state %+v", s)
	}
	if api.headerAtFetch != "persisted" {
		t.Errorf("expected header set before profile fetch, got %q", api.headerAtFetch)
	}
}

func TestInitialize_RunsOnce(t *testing.T) {
	api := &mockAPI{ProfileFunc: profileOK}
	f := newFixture(t, api)
	f.tokens.SetToken("persisted")

	f.ctrl.Initialize(context.Background())
	f.ctrl.Initialize(context.Background())

	if api.profileCalls != 1 {
		t.Errorf("expected one profile fetch, got %d", api.profileCalls)
	}
}

func TestInitialize_ProfileFailureCleansUp(t *testing.T) {
	api := &mockAPI{ProfileFunc: func(context.Context) (*client.User, error) {
		return nil, &client.APIError{Status: http.StatusUnauthorized}
	}}
	f := newFixture(t, api)
	f.tokens.SetToken("stale")

	f.ctrl.Initialize(context.Background())

	s := f.ctrl.State()
	if s.IsAuthenticated || s.User != nil || s.IsLoading {
		t.Errorf("unexpected state %+v", s)
	}
	if tok, _ := f.tokens.Token(); tok != "" {
		t.Errorf("expected token removed, got %q", tok)
	}
	if api.authHeader != "" {
		t.Errorf("expected header cleared, got %q", api.authHeader)
	}
}

func TestLogin_SuccessAndRestore(t *testing.T) {
	api := &mockAPI{LoginFunc: tokenOK, ProfileFunc: profileOK}
	f := newFixture(t, api)
	f.ctrl.Initialize(context.Background())

	if err := f.ctrl.Login(context.Background(), "john@mail.com", "changeme"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	s := f.ctrl.State()
	if !s.IsAuthenticated || s.User != john {
		t.Errorf("unexpected state %+v", s)
	}
	if tok, _ := f.tokens.Token(); tok != "tok-1" {
		t.Errorf("persisted token = %q, want tok-1", tok)
	}
	if api.authHeader != "tok-1" {
		t.Errorf("header = %q, want tok-1", api.authHeader)
	}

	restoreAPI := &mockAPI{ProfileFunc: profileOK}
	restored := New(restoreAPI, f.tokens, f.cart, nil)
	restored.Initialize(context.Background())
	if !restored.State().IsAuthenticated {
		t.Errorf("expected restored session to be authenticated, got %+v", restored.State())
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	api := &mockAPI{
		LoginFunc: func(context.Context, string, string) (*oauth2.Token, error) {
			return nil, &client.APIError{Status: http.StatusUnauthorized}
		},
		ProfileFunc: profileOK,
	}
	f := newFixture(t, api)
	f.ctrl.Initialize(context.Background())

	err := f.ctrl.Login(context.Background(), "john@mail.com", "wrong")

	var loginErr *LoginError
	if !errors.As(err, &loginErr) {
		t.Fatalf("expected *LoginError, got %T: %v", err, err)
	}
	if loginErr.Error() != "Incorrect email or password" {
		t.Errorf("message = %q", loginErr.Error())
	}
	s := f.ctrl.State()
	if s.IsAuthenticated || s.User != nil {
		t.Errorf("unexpected state %+v", s)
	}
	if api.profileCalls != 0 {
		t.Error("expected no profile fetch after rejected login")
	}
}

func TestLogin_ErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message wins", &client.APIError{Status: 401, Message: "Account locked, contact support"}, "Account locked, contact support"},
		{"401 status text", &client.APIError{Status: 401, Message: "Unauthorized"}, "Incorrect email or password"},
		{"401", &client.APIError{Status: 401}, "Incorrect email or password"},
		{"404", &client.APIError{Status: 404}, "Account not found"},
		{"429", &client.APIError{Status: 429}, "Too many login attempts. Please try again later"},
		{"500", &client.APIError{Status: 500}, "Server error. Please try again in a moment"},
		{"other status", &client.APIError{Status: 503}, "Login failed: Please check your internet connection and try again"},
		{"no response", errors.New("dial tcp: connection refused"), "Login failed: An error occurred. Please try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{LoginFunc: func(context.Context, string, string) (*oauth2.Token, error) {
				return nil, tt.err
			}}
			f := newFixture(t, api)

			err := f.ctrl.Login(context.Background(), "a@b.c", "x")
			if err == nil || err.Error() != tt.want {
				t.Errorf("Login() error = %v, want %q", err, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("expected the cause to stay reachable")
			}
		})
	}
}

func TestLogin_UpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized","statusCode":401}`))
	}))
	defer server.Close()

	mem := storage.NewMemory()
	tokens := storage.NewTokenStore(mem, false)
	c, err := cart.New(mem, nil)
	if err != nil {
		t.Fatalf("cart.New() error: %v", err)
	}
	ctrl := New(client.New(server.URL, tokens), tokens, c, nil)

	err = ctrl.Login(context.Background(), "john@mail.com", "wrong")
	var loginErr *LoginError
	if !errors.As(err, &loginErr) {
		t.Fatalf("expected *LoginError, got %v", err)
	}
	if loginErr.Message != "Incorrect email or password" || loginErr.Status != http.StatusUnauthorized {
		t.Errorf("got %d %q", loginErr.Status, loginErr.Message)
	}
	if ctrl.State().IsAuthenticated {
		t.Error("expected unauthenticated after rejection")
	}
}

func TestLogin_NoToken(t *testing.T) {
	api := &mockAPI{
		LoginFunc: func(context.Context, string, string) (*oauth2.Token, error) {
			return &oauth2.Token{}, nil
		},
		ProfileFunc: profileOK,
	}
	f := newFixture(t, api)

	err := f.ctrl.Login(context.Background(), "a@b.c", "x")
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if f.ctrl.State().IsAuthenticated {
		t.Error("expected unauthenticated after empty token")
	}
	if tok, _ := f.tokens.Token(); tok != "" {
		t.Errorf("expected nothing persisted, got %q", tok)
	}
}

func TestLogin_ProfileFailureSurfacesFetchError(t *testing.T) {
	fetchErr := &client.APIError{Status: 500, Message: "profile unavailable"}
	api := &mockAPI{
		LoginFunc: tokenOK,
		ProfileFunc: func(context.Context) (*client.User, error) {
			return nil, fetchErr
		},
	}
	f := newFixture(t, api)

	err := f.ctrl.Login(context.Background(), "a@b.c", "x")
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected the fetch error, got %v", err)
	}
	var loginErr *LoginError
	if errors.As(err, &loginErr) {
		t.Error("profile failure should not be a credential error")
	}
	if tok, _ := f.tokens.Token(); tok != "" {
		t.Errorf("expected token removed, got %q", tok)
	}
	if api.authHeader != "" {
		t.Errorf("expected header cleared, got %q", api.authHeader)
	}
	if f.ctrl.State().IsAuthenticated {
		t.Error("expected unauthenticated")
	}
}

func TestLogout_ClearsCart(t *testing.T) {
	api := &mockAPI{LoginFunc: tokenOK, ProfileFunc: profileOK}
	f := newFixture(t, api)
	f.ctrl.Initialize(context.Background())
	f.ctrl.Login(context.Background(), "john@mail.com", "changeme")
	f.cart.Add(cart.Item{ID: 1, Price: 10}, 2)

	if err := f.ctrl.Logout(); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}

	if len(f.cart.Items()) != 0 {
		t.Errorf("expected empty cart, got %+v", f.cart.Items())
	}
	s := f.ctrl.State()
	if s.IsAuthenticated || s.User != nil || s.Phase != Unauthenticated {
		t.Errorf("unexpected state %+v", s)
	}
	if tok, _ := f.tokens.Token(); tok != "" {
		t.Errorf("expected token removed, got %q", tok)
	}
	if api.authHeader != "" {
		t.Errorf("expected header cleared, got %q", api.authHeader)
	}

	if err := f.ctrl.Logout(); err != nil {
		t.Errorf("second Logout() error: %v", err)
	}
}

func TestPhase_String(t *testing.T) {
	for p, want := range map[Phase]string{
		Unauthenticated: "unauthenticated",
		Restoring:       "restoring",
		Authenticated:   "authenticated",
	} {
		if p.String() != want {
			t.Errorf("%d.String() = %q, want %q", p, p.String(), want)
		}
	}
}
