// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state, page guarding and routes keyboard input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/markalston/storefront/cli/internal/cart"
	"github.com/markalston/storefront/cli/internal/catalog"
	"github.com/markalston/storefront/cli/internal/client"
	"github.com/markalston/storefront/cli/internal/session"
	"github.com/markalston/storefront/cli/internal/tui/authform"
	"github.com/markalston/storefront/cli/internal/tui/cartview"
	"github.com/markalston/storefront/cli/internal/tui/icons"
	"github.com/markalston/storefront/cli/internal/tui/menu"
	"github.com/markalston/storefront/cli/internal/tui/productlist"
	"github.com/markalston/storefront/cli/internal/tui/receipt"
	"github.com/markalston/storefront/cli/internal/tui/styles"
	"github.com/markalston/storefront/cli/internal/tui/widgets"
	"github.com/markalston/storefront/guard"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenProducts
	ScreenCart
	ScreenAuth
	ScreenProfile
	ScreenReceipt
)

// Page paths shown by the screens
const (
	pathHome     = guard.HomePath
	pathCart     = "/cart"
	pathCheckout = "/checkout"
	pathProfile  = "/profile"
	pathLogin    = guard.LoginPath
	pathSignup   = "/signup"
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before the frame stops shrinking
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
)

// Catalog is the read-only part of the API the browser needs
type Catalog interface {
	Products(ctx context.Context) ([]client.Product, error)
	Categories(ctx context.Context) ([]client.Category, error)
}

// sessionReadyMsg is sent when the persisted session has been restored
type sessionReadyMsg struct{}

// catalogLoadedMsg is sent when products and categories are fetched
type catalogLoadedMsg struct {
	products   []client.Product
	categories []client.Category
	err        error
}

// loginDoneMsg is sent when a login attempt finishes
type loginDoneMsg struct {
	err error
}

// signupDoneMsg is sent when a signup attempt finishes
type signupDoneMsg struct {
	user *client.User
	err  error
}

// logoutDoneMsg is sent when the session has been ended
type logoutDoneMsg struct {
	err error
}

// App is the root model for the TUI
type App struct {
	catalog Catalog
	session *session.Controller
	cart    *cart.Controller
	logger  *slog.Logger

	screen     Screen
	width      int
	height     int
	err        error
	notice     string
	pending    string // page requested while the session was restoring
	callback   string // page to continue to after logging in
	lastUpdate time.Time

	// Child models
	menu        *menu.Menu
	products    *productlist.ProductList
	cartView    *cartview.CartView
	auth        *authform.AuthForm
	receiptView *receipt.Receipt
}

// New creates a new TUI application
func New(cat Catalog, sess *session.Controller, c *cart.Controller, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{
		catalog: cat,
		session: sess,
		cart:    c,
		logger:  logger,
		screen:  ScreenMenu,
		menu:    menu.New(sess.State().IsAuthenticated),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.menu.Init(), a.restoreSession())
}

// restoreSession runs session initialization off the UI loop
func (a *App) restoreSession() tea.Cmd {
	return func() tea.Msg {
		a.session.Initialize(context.Background())
		return sessionReadyMsg{}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.cartView != nil {
			a.cartView.SetSize(a.innerWidth(), a.contentHeight())
		}
		if a.products != nil {
			a.products.Update(tea.WindowSizeMsg{Width: a.innerWidth(), Height: a.contentHeight()})
		}
		var cmds []tea.Cmd
		if a.menu != nil {
			_, cmd := a.menu.Update(msg)
			cmds = append(cmds, cmd)
		}
		if a.auth != nil {
			_, cmd := a.auth.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Route to current screen
		switch a.screen {
		case ScreenMenu:
			return a.updateMenu(msg)
		case ScreenProducts:
			return a.updateProducts(msg)
		case ScreenCart:
			return a.updateCart(msg)
		case ScreenAuth:
			return a.updateAuth(msg)
		case ScreenProfile:
			return a.updateProfile(msg)
		case ScreenReceipt:
			return a.updateReceipt(msg)
		}

	case sessionReadyMsg:
		return a, a.sessionChanged()

	case menu.SelectedMsg:
		return a.handleMenuSelected(msg)

	case menu.CancelledMsg:
		return a, tea.Quit

	case productlist.AddToCartMsg:
		return a.handleAddToCart(msg)

	case productlist.CancelledMsg, cartview.CancelledMsg:
		return a, a.showMenu()

	case cartview.CheckoutMsg:
		return a, a.navigate(pathCheckout)

	case authform.SubmittedMsg:
		return a, a.submitAuth(msg)

	case authform.CancelledMsg:
		a.callback = ""
		return a, a.showMenu()

	case catalogLoadedMsg:
		return a.handleCatalogLoaded(msg)

	case loginDoneMsg:
		return a.handleLoginDone(msg)

	case signupDoneMsg:
		return a.handleSignupDone(msg)

	case logoutDoneMsg:
		if msg.err != nil {
			a.logger.Warn("logout cleanup failed", "error", msg.err)
		}
		a.notice = "Logged out."
		a.screen = ScreenMenu
		return a, a.sessionChanged()

	default:
		// Forward unknown messages to the active huh form (needed for huh internals)
		if a.screen == ScreenAuth && a.auth != nil {
			return a.updateAuth(msg)
		}
		if a.screen == ScreenMenu && a.menu != nil {
			return a.updateMenu(msg)
		}
	}

	return a, nil
}

func (a *App) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.menu == nil {
		return a, nil
	}
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updateProducts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.products == nil {
		switch msg.String() {
		case "b", "esc":
			return a, a.showMenu()
		case "r":
			return a, a.loadCatalog()
		}
		return a, nil
	}
	model, cmd := a.products.Update(msg)
	a.products = model.(*productlist.ProductList)
	return a, cmd
}

func (a *App) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.cartView == nil {
		return a, nil
	}
	model, cmd := a.cartView.Update(msg)
	a.cartView = model.(*cartview.CartView)
	return a, cmd
}

func (a *App) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.auth == nil {
		return a, nil
	}
	model, cmd := a.auth.Update(msg)
	a.auth = model.(*authform.AuthForm)
	return a, cmd
}

func (a *App) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "l":
		return a, a.logout()
	case "b", "esc":
		return a, a.showMenu()
	}
	return a, nil
}

func (a *App) updateReceipt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "p":
		return a, a.navigate(pathHome)
	case "b", "esc", "enter":
		a.receiptView = nil
		return a, a.showMenu()
	}
	return a, nil
}

func (a *App) handleMenuSelected(msg menu.SelectedMsg) (tea.Model, tea.Cmd) {
	a.notice = ""
	switch msg.Destination {
	case menu.DestQuit:
		return a, tea.Quit
	case menu.DestLogout:
		return a, a.logout()
	}
	return a, a.navigate(msg.Destination.Path())
}

// navigate moves to the page at path if the guard allows it, otherwise to
// the page the guard redirects to. While the session is restoring the
// request is parked and replayed once it is ready.
func (a *App) navigate(path string) tea.Cmd {
	d := guard.Decide(a.session.State().Guard(), path)
	if d.Pending {
		a.pending = path
		a.notice = "Restoring session..."
		return nil
	}

	if d.RedirectTo != "" {
		target, rawQuery, _ := strings.Cut(d.RedirectTo, "?")
		a.logger.Debug("page redirect", "from", path, "to", d.RedirectTo)
		if target == pathLogin {
			a.callback = guard.CallbackTarget(rawQuery)
			a.notice = "Please log in to continue."
		}
		path = target
	}

	return a.show(path)
}

// show switches to the screen for path without consulting the guard
func (a *App) show(path string) tea.Cmd {
	a.err = nil

	switch path {
	case pathHome:
		a.screen = ScreenProducts
		if a.products == nil {
			return a.loadCatalog()
		}
		return nil

	case pathCart:
		a.cartView = cartview.New(a.cart, a.innerWidth(), a.contentHeight())
		a.screen = ScreenCart
		return nil

	case pathCheckout:
		return a.checkout()

	case pathProfile:
		a.screen = ScreenProfile
		return nil

	case pathLogin:
		return a.showAuth(authform.ModeLogin)

	case pathSignup:
		return a.showAuth(authform.ModeSignup)
	}

	return a.showMenu()
}

func (a *App) showAuth(mode authform.Mode) tea.Cmd {
	a.auth = authform.New(mode)
	a.screen = ScreenAuth
	return a.auth.Init()
}

func (a *App) showMenu() tea.Cmd {
	a.menu = menu.New(a.session.State().IsAuthenticated)
	a.screen = ScreenMenu
	return a.menu.Init()
}

// currentPath is the page path of the visible screen
func (a *App) currentPath() string {
	switch a.screen {
	case ScreenProducts:
		return pathHome
	case ScreenCart:
		return pathCart
	case ScreenProfile:
		return pathProfile
	case ScreenAuth:
		if a.auth != nil && a.auth.Mode() == authform.ModeSignup {
			return pathSignup
		}
		return pathLogin
	}
	return ""
}

// sessionChanged re-runs the guard for the visible page and replays any
// parked navigation
func (a *App) sessionChanged() tea.Cmd {
	if a.pending != "" {
		path := a.pending
		a.pending = ""
		a.notice = ""
		return a.navigate(path)
	}

	if path := a.currentPath(); path != "" {
		if d := guard.Decide(a.session.State().Guard(), path); !d.Allowed() {
			return a.navigate(path)
		}
	}

	if a.screen == ScreenMenu {
		return a.showMenu()
	}
	return nil
}

// loadCatalog fetches products and categories concurrently
func (a *App) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		var msg catalogLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			msg.products, err = a.catalog.Products(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			msg.categories, err = a.catalog.Categories(ctx)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (a *App) handleCatalogLoaded(msg catalogLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.err = msg.err
		a.logger.Error("catalog load failed", "error", msg.err)
		return a, nil
	}
	a.err = nil
	a.lastUpdate = time.Now()
	a.products = productlist.New(msg.products, catalog.VisibleCategories(msg.categories))
	a.products.Update(tea.WindowSizeMsg{Width: a.innerWidth(), Height: a.contentHeight()})
	return a, nil
}

func (a *App) handleAddToCart(msg productlist.AddToCartMsg) (tea.Model, tea.Cmd) {
	if err := a.cart.Add(cart.ItemFromProduct(msg.Product), 1); err != nil {
		if a.products != nil {
			a.products.SetError(err.Error())
		}
		return a, nil
	}
	if a.products != nil {
		a.products.SetStatus(fmt.Sprintf("%s Added %s (%d in cart)", icons.Add.String(), msg.Product.Title, a.cart.Count()))
	}
	return a, nil
}

func (a *App) checkout() tea.Cmd {
	r, err := a.cart.Checkout()
	if err != nil {
		a.cartView = cartview.New(a.cart, a.innerWidth(), a.contentHeight())
		a.screen = ScreenCart
		if errors.Is(err, cart.ErrEmptyCart) {
			a.cartView.SetError("Your cart is empty.")
		} else {
			a.cartView.SetError(err.Error())
		}
		return nil
	}
	a.cartView = nil
	a.receiptView = receipt.New(r, a.innerWidth())
	a.screen = ScreenReceipt
	return nil
}

func (a *App) submitAuth(msg authform.SubmittedMsg) tea.Cmd {
	if msg.Mode == authform.ModeSignup {
		return func() tea.Msg {
			user, err := a.session.Signup(context.Background(), msg.Name, msg.Email, msg.Password)
			return signupDoneMsg{user: user, err: err}
		}
	}
	return func() tea.Msg {
		return loginDoneMsg{err: a.session.Login(context.Background(), msg.Email, msg.Password)}
	}
}

func (a *App) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if a.auth != nil {
			return a, a.auth.SetError(displayError(msg.err))
		}
		a.err = msg.err
		return a, nil
	}

	next := a.callback
	if next == "" {
		next = pathHome
	}
	a.callback = ""
	a.notice = ""
	a.auth = nil
	return a, a.navigate(next)
}

func (a *App) handleSignupDone(msg signupDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if a.auth != nil {
			return a, a.auth.SetError(displayError(msg.err))
		}
		a.err = msg.err
		return a, nil
	}
	a.notice = fmt.Sprintf("Account created for %s. Log in to continue.", msg.user.Email)
	return a, a.showAuth(authform.ModeLogin)
}

// displayError returns the user-facing text for a session error
func displayError(err error) string {
	var loginErr *session.LoginError
	var signupErr *session.SignupError
	var validationErr *session.ValidationError
	switch {
	case errors.As(err, &loginErr), errors.As(err, &signupErr), errors.As(err, &validationErr):
		return err.Error()
	case errors.Is(err, session.ErrNoToken):
		return "Login failed. Please try again."
	default:
		return "Error: " + err.Error()
	}
}

func (a *App) logout() tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: a.session.Logout()}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenProducts:
		content = a.viewProducts()
	case ScreenCart:
		content = a.viewCart()
	case ScreenAuth:
		content = a.viewAuth()
	case ScreenProfile:
		content = a.viewProfile()
	case ScreenReceipt:
		content = a.viewReceipt()
	default:
		content = a.viewMenu()
	}

	if a.notice != "" {
		content = widgets.StatusText(a.notice, widgets.StatusInfo) + "\n\n" + content
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewMenu() string {
	if a.menu != nil {
		return a.menu.View()
	}
	return ""
}

func (a *App) viewProducts() string {
	if a.err != nil {
		return styles.StatusCritical.Render("Error: "+a.err.Error()) + "\n" + styles.Help.Render("r Retry  b Back")
	}
	if a.products == nil {
		return styles.Panel.Width(a.contentWidth()).Render("Loading products...")
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.products.View())
}

func (a *App) viewCart() string {
	if a.cartView == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.cartView.View())
}

func (a *App) viewAuth() string {
	if a.auth != nil {
		return a.auth.View()
	}
	return ""
}

func (a *App) viewProfile() string {
	user := a.session.State().User
	if user == nil {
		return styles.Panel.Width(a.contentWidth()).Render("Not logged in")
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.User.String() + " " + user.Name))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Email:  %s\n", styles.ValueStyle.Render(user.Email)))
	if user.Role != "" {
		sb.WriteString(fmt.Sprintf("Role:   %s\n", user.Role))
	}
	if user.Avatar != "" {
		sb.WriteString(fmt.Sprintf("Avatar: %s\n", user.Avatar))
	}
	sb.WriteString(fmt.Sprintf("Cart:   %d items, %s\n", a.cart.Count(), styles.Price(a.cart.Total())))
	return styles.ActivePanel.Width(a.contentWidth()).Render(sb.String())
}

func (a *App) viewReceipt() string {
	if a.receiptView == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.receiptView.View())
}

// contentWidth calculates the width for the main panel
func (a *App) contentWidth() int {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width - panelPadding
}

// innerWidth is the text width inside a panel (border 2, padding 4)
func (a *App) innerWidth() int {
	return a.contentWidth() - 6
}

// contentHeight calculates the height available for panel content
func (a *App) contentHeight() int {
	// Total overhead:
	// - Header: 1 line
	// - Newline after header: 1 line
	// - ActivePanel border+padding: 4 lines (top border, top padding, bottom padding, bottom border)
	// - Newline before footer: 1 line
	// - Footer: 1 line
	// Total: 8 lines overhead
	return a.height - 8
}

// frameWidth is the header and footer width. It stays one column short of
// the terminal to prevent wrapping, and never drops below minTerminalWidth.
func (a *App) frameWidth() int {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width
}

// renderHeader creates the header bar with app branding and session status
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Storefront"))

	state := a.session.State()
	name := ""
	if state.User != nil {
		name = state.User.Name
	}
	rightText := " " + widgets.SessionBadge(state.IsAuthenticated, state.IsLoading, name) + " " + widgets.CartBadge(a.cart.Count()) + " "

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	fill := borderStyle.Render(strings.Repeat("─", fillWidth))

	return borderStyle.Render("╭─") + leftText + fill + rightText + borderStyle.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	// Build keyboard shortcuts based on current screen
	var shortcuts []string
	switch a.screen {
	case ScreenMenu:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "Esc Quit"}
	case ScreenProducts:
		shortcuts = []string{"Enter Details", "a Add", "/ Search", "c Category", "b Back"}
	case ScreenCart:
		shortcuts = []string{"+/- Qty", "d Remove", "x Clear", "o Checkout", "b Back"}
	case ScreenAuth:
		shortcuts = []string{"Enter Next", "Esc Cancel"}
	case ScreenProfile:
		shortcuts = []string{"l Log out", "b Back", "q Quit"}
	case ScreenReceipt:
		shortcuts = []string{"p Keep shopping", "b Menu", "q Quit"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")

	// Right side status (catalog age)
	rightText := ""
	if !a.lastUpdate.IsZero() && a.screen == ScreenProducts {
		rightText = statusStyle.Render("Updated "+formatTimeSince(a.lastUpdate)) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	fill := borderStyle.Render(strings.Repeat("─", fillWidth))

	return borderStyle.Render("╰─") + leftText + fill + rightText + borderStyle.Render("─╯")
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI
func Run(cat Catalog, sess *session.Controller, c *cart.Controller, logger *slog.Logger) error {
	app := New(cat, sess, c, logger)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
