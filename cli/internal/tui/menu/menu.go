// ABOUTME: Main menu for the shop TUI
// ABOUTME: Lists destinations for the current session as a huh select

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/storefront/cli/internal/tui/icons"
)

// Destination is a menu entry
type Destination int

const (
	DestBrowse Destination = iota
	DestCart
	DestCheckout
	DestProfile
	DestLogin
	DestSignup
	DestLogout
	DestQuit
)

// SelectedMsg is sent when a destination is chosen
type SelectedMsg struct {
	Destination Destination
}

// CancelledMsg is sent when the user leaves the menu with esc
type CancelledMsg struct{}

type option struct {
	label string
	value Destination
}

// Menu is the destination select
type Menu struct {
	options  []option
	selected Destination
	form     *huh.Form
}

// New builds the menu. Account entries depend on whether a session exists.
// Cart and checkout are always listed; visiting them without a session
// goes through the login page.
func New(authenticated bool) *Menu {
	opts := []option{
		{label: icons.Tag.String() + " Browse products", value: DestBrowse},
		{label: icons.Cart.String() + " Cart", value: DestCart},
		{label: icons.Receipt.String() + " Checkout", value: DestCheckout},
	}
	if authenticated {
		opts = append(opts,
			option{label: icons.User.String() + " Profile", value: DestProfile},
			option{label: icons.Logout.String() + " Log out", value: DestLogout},
		)
	} else {
		opts = append(opts,
			option{label: icons.Login.String() + " Log in", value: DestLogin},
			option{label: icons.User.String() + " Sign up", value: DestSignup},
		)
	}
	opts = append(opts, option{label: icons.Quit.String() + " Quit", value: DestQuit})

	m := &Menu{options: opts, selected: DestBrowse}
	m.form = m.buildForm()
	return m
}

func (m *Menu) buildForm() *huh.Form {
	var options []huh.Option[Destination]
	for _, opt := range m.options {
		options = append(options, huh.NewOption(opt.label, opt.value))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Destination]().
				Title("What would you like to do?").
				Options(options...).
				Value(&m.selected),
		),
	).WithTheme(huh.ThemeBase()).WithShowHelp(false)
}

// Destinations lists the entries in display order
func (m *Menu) Destinations() []Destination {
	out := make([]Destination, len(m.options))
	for i, opt := range m.options {
		out[i] = opt.value
	}
	return out
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		dest := m.selected
		// Rebuild so the menu is usable again when shown next
		m.form = m.buildForm()
		return m, tea.Batch(m.form.Init(), func() tea.Msg { return SelectedMsg{Destination: dest} })
	}

	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

// Path returns the page path a destination shows. Actions without a page
// return the empty string.
func (d Destination) Path() string {
	switch d {
	case DestBrowse:
		return "/"
	case DestCart:
		return "/cart"
	case DestCheckout:
		return "/checkout"
	case DestProfile:
		return "/profile"
	case DestLogin:
		return "/login"
	case DestSignup:
		return "/signup"
	default:
		return ""
	}
}

// String returns the string representation of a Destination
func (d Destination) String() string {
	switch d {
	case DestBrowse:
		return "browse"
	case DestCart:
		return "cart"
	case DestCheckout:
		return "checkout"
	case DestProfile:
		return "profile"
	case DestLogin:
		return "login"
	case DestSignup:
		return "signup"
	case DestLogout:
		return "logout"
	case DestQuit:
		return "quit"
	default:
		return "unknown"
	}
}
