// ABOUTME: Application container wiring storage, the API client and both controllers
// ABOUTME: Built once per command invocation and closed when the command returns

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/markalston/storefront/cli/internal/cart"
	"github.com/markalston/storefront/cli/internal/client"
	"github.com/markalston/storefront/cli/internal/session"
	"github.com/markalston/storefront/cli/internal/storage"
	"github.com/markalston/storefront/cli/internal/tui/debuglog"
	"github.com/markalston/storefront/guard"
)

// app holds the long-lived objects a command works with
type app struct {
	db       *storage.DB
	client   *client.Client
	tokens   *storage.TokenStore
	cart     *cart.Controller
	session  *session.Controller
	logger   *slog.Logger
	closeLog func() error
}

// newApp opens the data directory and constructs the controllers. The cart is
// rehydrated before newApp returns; the session is not initialized.
func newApp() (*app, error) {
	dir := GetDataDir()

	logger, closeLog, err := debuglog.Open(dir, debuglog.ParseLevel(os.Getenv("STOREFRONT_LOG_LEVEL")))
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}

	db, err := storage.Open(dir)
	if err != nil {
		closeLog()
		return nil, err
	}

	tokens := storage.NewTokenStore(db, IsProduction())
	apiClient := client.New(GetAPIURL(), tokens)

	c, err := cart.New(db, logger)
	if err != nil {
		db.Close()
		closeLog()
		return nil, err
	}

	return &app{
		db:       db,
		client:   apiClient,
		tokens:   tokens,
		cart:     c,
		session:  session.New(apiClient, tokens, c, logger),
		logger:   logger,
		closeLog: closeLog,
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing database failed", "error", err)
	}
	a.closeLog()
}

// withApp builds the container, runs fn and closes it. Setup failures exit 2.
func withApp(w io.Writer, fn func(a *app) int) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.Close()
	return fn(a)
}

// enterPage restores the session and applies the page rules for path.
// It reports whether the command may continue; when it may not, the
// redirect has already been explained on w.
func (a *app) enterPage(ctx context.Context, w io.Writer, path string) bool {
	a.session.Initialize(ctx)

	d := guard.Decide(a.session.State().Guard(), path)
	if d.Allowed() {
		return true
	}

	a.logger.Info("page guard redirect", "path", path, "to", d.RedirectTo)
	switch {
	case d.RedirectTo == guard.HomePath:
		fmt.Fprintln(w, "You are already logged in.")
	case d.RedirectTo != "":
		fmt.Fprintf(w, "Please log in first: storefront login --callback-url %s\n", callbackOf(d.RedirectTo))
	}
	return false
}

// callbackOf extracts the callback path from a login redirect URL
func callbackOf(redirect string) string {
	u, err := url.Parse(redirect)
	if err != nil {
		return guard.HomePath
	}
	return guard.CallbackTarget(u.RawQuery)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
