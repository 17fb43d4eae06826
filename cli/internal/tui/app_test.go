// ABOUTME: Integration tests for TUI app
// ABOUTME: Tests component wiring, page guarding and state transitions

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/markalston/storefront/cli/internal/cart"
	"github.com/markalston/storefront/cli/internal/client"
	"github.com/markalston/storefront/cli/internal/session"
	"github.com/markalston/storefront/cli/internal/storage"
	"github.com/markalston/storefront/cli/internal/tui/authform"
	"github.com/markalston/storefront/cli/internal/tui/cartview"
	"github.com/markalston/storefront/cli/internal/tui/menu"
	"github.com/markalston/storefront/cli/internal/tui/productlist"
)

type mockAPI struct {
	LoginFunc   func(ctx context.Context, email, password string) (*oauth2.Token, error)
	ProfileFunc func(ctx context.Context) (*client.User, error)
}

func (m *mockAPI) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockAPI) Profile(ctx context.Context) (*client.User, error) {
	return m.ProfileFunc(ctx)
}

func (m *mockAPI) CreateUser(ctx context.Context, nu client.NewUser) (*client.User, error) {
	return &client.User{ID: 9, Name: nu.Name, Email: nu.Email}, nil
}

func (m *mockAPI) SetAuthToken(string) {}
func (m *mockAPI) ClearAuthToken()     {}

type mockCatalog struct {
	products   []client.Product
	categories []client.Category
	err        error
}

func (m *mockCatalog) Products(context.Context) ([]client.Product, error) {
	return m.products, m.err
}

func (m *mockCatalog) Categories(context.Context) ([]client.Category, error) {
	return m.categories, nil
}

var jane = &client.User{ID: 7, Name: "Jane", Email: "jane@mail.com", Role: "customer"}

func newAPI() *mockAPI {
	return &mockAPI{
		LoginFunc: func(context.Context, string, string) (*oauth2.Token, error) {
			return &oauth2.Token{AccessToken: "tok"}, nil
		},
		ProfileFunc: func(context.Context) (*client.User, error) { return jane, nil },
	}
}

type fixture struct {
	app    *App
	api    *mockAPI
	cart   *cart.Controller
	tokens *storage.TokenStore
}

// newTestApp builds an app. When token is set the session restores as authenticated.
func newTestApp(t *testing.T, token string) *fixture {
	t.Helper()
	mem := storage.NewMemory()
	tokens := storage.NewTokenStore(mem, false)
	if token != "" {
		if err := tokens.SetToken(token); err != nil {
			t.Fatalf("SetToken: %v", err)
		}
	}
	c, err := cart.New(mem, nil)
	if err != nil {
		t.Fatalf("cart.New: %v", err)
	}
	api := newAPI()
	sess := session.New(api, tokens, c, nil)
	cat := &mockCatalog{
		products: []client.Product{
			{ID: 1, Title: "Classic Tee", Price: 20, Category: client.Category{ID: 1, Name: "Clothes"}},
			{ID: 2, Title: "Gadget", Price: 99.99, Category: client.Category{ID: 2, Name: "Electronics"}},
		},
		categories: []client.Category{
			{ID: 1, Name: "Clothes"},
			{ID: 2, Name: "Electronics"},
			{ID: 8, Name: "Testing"},
		},
	}
	app := New(cat, sess, c, nil)
	app.width = 100
	app.height = 40
	return &fixture{app: app, api: api, cart: c, tokens: tokens}
}

// ready runs session restore the way Init's command would
func (f *fixture) ready() {
	f.app.restoreSession()()
	f.app.Update(sessionReadyMsg{})
}

func TestAppInitialState(t *testing.T) {
	f := newTestApp(t, "")

	if f.app.screen != ScreenMenu {
		t.Errorf("expected initial screen to be ScreenMenu, got %d", f.app.screen)
	}
	if f.app.menu == nil {
		t.Error("expected menu to be initialized")
	}
	if !f.app.session.State().IsLoading {
		t.Error("expected session to be loading before restore")
	}
}

func TestScreenConstants(t *testing.T) {
	if ScreenMenu != 0 {
		t.Errorf("expected ScreenMenu to be 0, got %d", ScreenMenu)
	}
	if ScreenProducts != 1 {
		t.Errorf("expected ScreenProducts to be 1, got %d", ScreenProducts)
	}
	if ScreenCart != 2 {
		t.Errorf("expected ScreenCart to be 2, got %d", ScreenCart)
	}
}

func TestNavigateWhileRestoringIsDeferred(t *testing.T) {
	f := newTestApp(t, "")

	f.app.Update(menu.SelectedMsg{Destination: menu.DestCart})
	if f.app.screen != ScreenMenu {
		t.Errorf("expected to stay on menu while restoring, got %d", f.app.screen)
	}
	if f.app.pending != "/cart" {
		t.Errorf("expected /cart parked, got %q", f.app.pending)
	}

	// No session: the parked visit lands on login with a callback
	f.ready()
	if f.app.screen != ScreenAuth {
		t.Fatalf("expected auth screen, got %d", f.app.screen)
	}
	if f.app.auth.Mode() != authform.ModeLogin {
		t.Errorf("expected login form, got %s", f.app.auth.Mode())
	}
	if f.app.callback != "/cart" {
		t.Errorf("expected callback /cart, got %q", f.app.callback)
	}
	if f.app.pending != "" {
		t.Error("expected pending cleared")
	}
}

func TestProtectedPageAllowedWhenRestored(t *testing.T) {
	f := newTestApp(t, "tok")
	f.ready()

	if !f.app.session.State().IsAuthenticated {
		t.Fatal("expected restored session")
	}
	f.app.Update(menu.SelectedMsg{Destination: menu.DestCart})
	if f.app.screen != ScreenCart {
		t.Errorf("expected cart screen, got %d", f.app.screen)
	}
}

func TestAuthPageRedirectsHomeWhenLoggedIn(t *testing.T) {
	f := newTestApp(t, "tok")
	f.ready()

	_, cmd := f.app.Update(menu.SelectedMsg{Destination: menu.DestLogin})
	if f.app.screen != ScreenProducts {
		t.Errorf("expected products screen, got %d", f.app.screen)
	}
	if cmd == nil {
		t.Fatal("expected catalog load command")
	}
}

func TestLoginContinuesToCallback(t *testing.T) {
	f := newTestApp(t, "")
	f.ready()

	f.app.Update(menu.SelectedMsg{Destination: menu.DestProfile})
	if f.app.callback != "/profile" {
		t.Fatalf("expected callback /profile, got %q", f.app.callback)
	}

	msg := f.app.submitAuth(authform.SubmittedMsg{Mode: authform.ModeLogin, Email: "jane@mail.com", Password: "pw"})()
	f.app.Update(msg)

	if f.app.screen != ScreenProfile {
		t.Errorf("expected profile screen after login, got %d", f.app.screen)
	}
	if f.app.callback != "" {
		t.Error("expected callback consumed")
	}
	if !strings.Contains(f.app.View(), "jane@mail.com") {
		t.Error("expected profile view to show the user")
	}
	token, _ := f.tokens.Token()
	if token != "tok" {
		t.Errorf("expected token persisted, got %q", token)
	}
}

func TestLoginFailureShowsMessage(t *testing.T) {
	f := newTestApp(t, "")
	f.api.LoginFunc = func(context.Context, string, string) (*oauth2.Token, error) {
		return nil, &client.APIError{Status: 401}
	}
	f.ready()
	f.app.Update(menu.SelectedMsg{Destination: menu.DestLogin})

	msg := f.app.submitAuth(authform.SubmittedMsg{Mode: authform.ModeLogin, Email: "a@b.c", Password: "bad"})()
	f.app.Update(msg)

	if f.app.screen != ScreenAuth {
		t.Errorf("expected to stay on auth, got %d", f.app.screen)
	}
	if !strings.Contains(f.app.View(), "Incorrect email or password") {
		t.Errorf("expected canned message in view\nView:\n%s", f.app.View())
	}
}

func TestSignupGoesToLogin(t *testing.T) {
	f := newTestApp(t, "")
	f.ready()
	f.app.Update(menu.SelectedMsg{Destination: menu.DestSignup})
	if f.app.auth.Mode() != authform.ModeSignup {
		t.Fatalf("expected signup form, got %s", f.app.auth.Mode())
	}

	msg := f.app.submitAuth(authform.SubmittedMsg{Mode: authform.ModeSignup, Name: "Jo", Email: "jo@mail.com", Password: "Passw0rdX"})()
	f.app.Update(msg)

	if f.app.auth.Mode() != authform.ModeLogin {
		t.Errorf("expected login form after signup, got %s", f.app.auth.Mode())
	}
	if f.app.session.State().IsAuthenticated {
		t.Error("expected signup not to log in")
	}
	if !strings.Contains(f.app.notice, "jo@mail.com") {
		t.Errorf("expected notice to name the account, got %q", f.app.notice)
	}
}

func TestSignupValidationShowsMessage(t *testing.T) {
	f := newTestApp(t, "")
	f.ready()
	f.app.Update(menu.SelectedMsg{Destination: menu.DestSignup})

	msg := f.app.submitAuth(authform.SubmittedMsg{Mode: authform.ModeSignup, Name: "Jo", Email: "jo@mail.com", Password: "short"})()
	f.app.Update(msg)

	if f.app.auth.Mode() != authform.ModeSignup {
		t.Errorf("expected to stay on signup, got %s", f.app.auth.Mode())
	}
	if !strings.Contains(f.app.View(), "8 characters") {
		t.Errorf("expected validation message in view\nView:\n%s", f.app.View())
	}
}

func TestCatalogLoadedFiltersCategories(t *testing.T) {
	f := newTestApp(t, "")
	f.ready()

	f.app.Update(menu.SelectedMsg{Destination: menu.DestBrowse})
	f.app.Update(f.app.loadCatalog()())

	if f.app.products == nil {
		t.Fatal("expected product list")
	}
	if len(f.app.products.Visible()) != 2 {
		t.Errorf("expected 2 products, got %d", len(f.app.products.Visible()))
	}
	if f.app.lastUpdate.IsZero() {
		t.Error("expected lastUpdate set")
	}
}

func TestCatalogLoadError(t *testing.T) {
	f := newTestApp(t, "")
	f.app.catalog = &mockCatalog{err: errors.New("upstream down")}
	f.app.screen = ScreenProducts

	f.app.Update(f.app.loadCatalog()())

	if f.app.err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(f.app.View(), "upstream down") {
		t.Error("expected error in view")
	}
}

func TestAddToCartWithoutSession(t *testing.T) {
	f := newTestApp(t, "")
	f.ready()
	f.app.Update(menu.SelectedMsg{Destination: menu.DestBrowse})
	f.app.Update(f.app.loadCatalog()())

	f.app.Update(productlist.AddToCartMsg{Product: client.Product{ID: 1, Title: "Classic Tee", Price: 20}})
	f.app.Update(productlist.AddToCartMsg{Product: client.Product{ID: 1, Title: "Classic Tee", Price: 20}})

	if f.cart.Count() != 2 {
		t.Errorf("expected 2 units, got %d", f.cart.Count())
	}
	if !strings.Contains(f.app.View(), "Added Classic Tee") {
		t.Error("expected add confirmation")
	}
}

func TestCheckoutPlacesOrder(t *testing.T) {
	f := newTestApp(t, "tok")
	f.ready()
	if err := f.cart.Add(cart.Item{ID: 1, Title: "Tee", Price: 20}, 2); err != nil {
		t.Fatal(err)
	}

	f.app.Update(menu.SelectedMsg{Destination: menu.DestCart})
	f.app.Update(cartview.CheckoutMsg{})

	if f.app.screen != ScreenReceipt {
		t.Fatalf("expected receipt screen, got %d", f.app.screen)
	}
	if f.cart.Count() != 0 {
		t.Error("expected cart emptied by checkout")
	}
	if !strings.Contains(f.app.View(), "$40.00") {
		t.Error("expected total on receipt")
	}
}

func TestCheckoutEmptyCartStaysOnCart(t *testing.T) {
	f := newTestApp(t, "tok")
	f.ready()

	f.app.Update(menu.SelectedMsg{Destination: menu.DestCheckout})

	if f.app.screen != ScreenCart {
		t.Errorf("expected cart screen, got %d", f.app.screen)
	}
	if !strings.Contains(f.app.View(), "Your cart is empty.") {
		t.Error("expected empty cart message")
	}
}

func TestLogoutClearsCartAndReturnsToMenu(t *testing.T) {
	f := newTestApp(t, "tok")
	f.ready()
	if err := f.cart.Add(cart.Item{ID: 1, Title: "Tee", Price: 20}, 1); err != nil {
		t.Fatal(err)
	}
	f.app.Update(menu.SelectedMsg{Destination: menu.DestProfile})

	_, cmd := f.app.Update(menu.SelectedMsg{Destination: menu.DestLogout})
	f.app.Update(cmd())

	if f.app.screen != ScreenMenu {
		t.Errorf("expected menu after logout, got %d", f.app.screen)
	}
	if f.cart.Count() != 0 {
		t.Error("expected cart cleared on logout")
	}
	if f.app.session.State().IsAuthenticated {
		t.Error("expected session ended")
	}
	for _, d := range f.app.menu.Destinations() {
		if d == menu.DestLogout {
			t.Error("expected guest menu after logout")
		}
	}
}

func TestDisplayError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &session.ValidationError{Message: "Email is required"}, "Email is required"},
		{"no token", session.ErrNoToken, "Login failed. Please try again."},
		{"other", errors.New("disk full"), "Error: disk full"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := displayError(tc.err); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
