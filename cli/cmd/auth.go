// ABOUTME: Account commands: login, logout, signup and profile
// ABOUTME: Prompts with huh forms when credentials are not passed as flags

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/markalston/storefront/cli/internal/session"
	"github.com/markalston/storefront/guard"
)

const (
	loginPath   = guard.LoginPath
	signupPath  = "/signup"
	profilePath = "/profile"
)

var (
	loginEmail    string
	loginPassword string
	callbackURL   string

	signupName     string
	signupEmail    string
	signupPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if loginEmail == "" || loginPassword == "" {
			if err := promptLogin(&loginEmail, &loginPassword); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		if code := runLogin(ctx, os.Stdout, loginEmail, loginPassword, callbackURL); code != 0 {
			os.Exit(code)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and empty the cart",
	Run: func(cmd *cobra.Command, args []string) {
		if code := runLogout(os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if signupName == "" || signupEmail == "" || signupPassword == "" {
			if err := promptSignup(&signupName, &signupEmail, &signupPassword); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		if code := runSignup(ctx, os.Stdout, signupName, signupEmail, signupPassword); code != 0 {
			os.Exit(code)
		}
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the logged-in account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runProfile(ctx, os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCmd.Flags().StringVar(&callbackURL, "callback-url", "", "Page to continue to after logging in")

	signupCmd.Flags().StringVar(&signupName, "name", "", "Your name")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Account email")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "Password (8+ characters, an uppercase letter and a number)")

	rootCmd.AddCommand(loginCmd, logoutCmd, signupCmd, profileCmd)
}

func promptLogin(email, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password),
		),
	).WithTheme(huh.ThemeBase()).Run()
}

func promptSignup(name, email, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(name),
			huh.NewInput().Title("Email").Value(email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password).
				Validate(session.ValidatePassword),
		),
	).WithTheme(huh.ThemeBase()).Run()
}

// runLogin logs in and returns exit code. callback is the page to continue to.
func runLogin(ctx context.Context, w io.Writer, email, password, callback string) int {
	return withApp(w, func(a *app) int {
		if !a.enterPage(ctx, w, loginPath) {
			return 0
		}

		if err := a.session.Login(ctx, email, password); err != nil {
			var loginErr *session.LoginError
			if errors.As(err, &loginErr) || errors.Is(err, session.ErrNoToken) {
				fmt.Fprintln(w, err.Error())
				return 1
			}
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}

		user := a.session.State().User
		next := guard.CallbackTarget(url.Values{guard.CallbackParam: {callback}}.Encode())
		if IsJSONOutput() {
			printJSON(w, map[string]any{"user": user, "next": next})
			return 0
		}
		fmt.Fprintf(w, "Logged in as %s <%s>\n", user.Name, user.Email)
		if next != guard.HomePath {
			fmt.Fprintf(w, "Continue with: storefront %s\n", commandFor(next))
		}
		return 0
	})
}

// commandFor maps a page path to the CLI command showing it
func commandFor(path string) string {
	switch {
	case path == cartPath || strings.HasPrefix(path, cartPath+"/"):
		return "cart"
	case path == checkoutPath:
		return "checkout"
	case path == profilePath:
		return "profile"
	default:
		return "products"
	}
}

// runLogout ends the session and returns exit code
func runLogout(w io.Writer) int {
	return withApp(w, func(a *app) int {
		if err := a.session.Logout(); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintln(w, "Logged out.")
		return 0
	})
}

// runSignup registers an account and returns exit code
func runSignup(ctx context.Context, w io.Writer, name, email, password string) int {
	return withApp(w, func(a *app) int {
		if !a.enterPage(ctx, w, signupPath) {
			return 0
		}

		user, err := a.session.Signup(ctx, name, email, password)
		if err != nil {
			var vErr *session.ValidationError
			var sErr *session.SignupError
			if errors.As(err, &vErr) || errors.As(err, &sErr) {
				fmt.Fprintln(w, err.Error())
				return 1
			}
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}

		if IsJSONOutput() {
			printJSON(w, user)
			return 0
		}
		fmt.Fprintf(w, "Account created for %s. Log in with: storefront login --email %s\n", user.Name, user.Email)
		return 0
	})
}

// runProfile shows the logged-in account and returns exit code
func runProfile(ctx context.Context, w io.Writer) int {
	return withApp(w, func(a *app) int {
		if !a.enterPage(ctx, w, profilePath) {
			return 1
		}

		user := a.session.State().User
		if IsJSONOutput() {
			printJSON(w, user)
			return 0
		}
		fmt.Fprintf(w, "Name:   %s\nEmail:  %s\nRole:   %s\nAvatar: %s\n", user.Name, user.Email, user.Role, user.Avatar)
		return 0
	})
}
