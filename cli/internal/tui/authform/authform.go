// ABOUTME: Login and signup forms as a bubbletea model
// ABOUTME: Wraps huh forms and reports submitted credentials to the app

package authform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/storefront/cli/internal/session"
	"github.com/markalston/storefront/cli/internal/tui/icons"
	"github.com/markalston/storefront/cli/internal/tui/styles"
)

// Mode selects which form is shown
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

// SubmittedMsg carries the completed form values
type SubmittedMsg struct {
	Mode     Mode
	Name     string
	Email    string
	Password string
}

// CancelledMsg is sent when the form is abandoned
type CancelledMsg struct{}

// AuthForm is the login or signup screen
type AuthForm struct {
	mode  Mode
	form  *huh.Form
	err   string
	busy  bool
	width int

	name     string
	email    string
	password string
}

// createTheme returns the huh theme used by the auth forms
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	slate := lipgloss.Color("#334155")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(styles.Danger).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(styles.Danger)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(styles.Accent)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(styles.Accent)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// New creates a form for mode
func New(mode Mode) *AuthForm {
	f := &AuthForm{mode: mode}
	f.form = f.buildForm()
	return f
}

func (f *AuthForm) buildForm() *huh.Form {
	if f.mode == ModeSignup {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Name").
					Value(&f.name).
					Validate(required("name")),
				huh.NewInput().
					Title("Email").
					Placeholder("you@example.com").
					Value(&f.email).
					Validate(required("email")),
				huh.NewInput().
					Title("Password").
					Description("At least 8 characters with an uppercase letter and a number").
					EchoMode(huh.EchoModePassword).
					Value(&f.password).
					Validate(session.ValidatePassword),
			).Title(icons.User.String()+" Create an account").
				Description("Press Enter to move between fields"),
		).WithTheme(createTheme())
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&f.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(required("password")),
		).Title(icons.Login.String()+" Log in").
			Description("Press Enter to move between fields"),
	).WithTheme(createTheme())
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// Mode returns the form mode
func (f *AuthForm) Mode() Mode {
	return f.mode
}

// Busy reports whether a submission is in flight
func (f *AuthForm) Busy() bool {
	return f.busy
}

// SetError shows a failed submission and reopens the form. The email and
// name are kept; the password is cleared.
func (f *AuthForm) SetError(msg string) tea.Cmd {
	f.err = msg
	f.busy = false
	f.password = ""
	f.form = f.buildForm()
	return f.form.Init()
}

// Init implements tea.Model
func (f *AuthForm) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *AuthForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
		if f.busy {
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted && !f.busy {
		f.busy = true
		f.err = ""
		submitted := SubmittedMsg{
			Mode:     f.mode,
			Name:     strings.TrimSpace(f.name),
			Email:    strings.TrimSpace(f.email),
			Password: f.password,
		}
		return f, func() tea.Msg { return submitted }
	}

	return f, cmd
}

// View implements tea.Model
func (f *AuthForm) View() string {
	var sb strings.Builder

	if f.err != "" {
		sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + f.err))
		sb.WriteString("\n\n")
	}

	if f.busy {
		label := "Logging in..."
		if f.mode == ModeSignup {
			label = "Creating account..."
		}
		sb.WriteString(styles.Subtitle.Render(label))
		return sb.String()
	}

	sb.WriteString(f.form.View())
	return sb.String()
}
