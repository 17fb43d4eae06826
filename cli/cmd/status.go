// ABOUTME: Status command for the storefront CLI
// ABOUTME: Shows the restored session and a cart summary

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and cart status",
	Long:  `Restore the saved session and show who is logged in and what is in the cart.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatus(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusReport is the local state of the shopper
type statusReport struct {
	Session   string  `json:"session"`
	Email     string  `json:"email,omitempty"`
	Name      string  `json:"name,omitempty"`
	CartLines int     `json:"cart_lines"`
	CartItems int     `json:"cart_items"`
	CartTotal float64 `json:"cart_total"`
	DataDir   string  `json:"data_dir"`
}

// runStatus restores the session and returns exit code
func runStatus(ctx context.Context, w io.Writer) int {
	return withApp(w, func(a *app) int {
		a.session.Initialize(ctx)
		state := a.session.State()

		report := statusReport{
			Session:   state.Phase.String(),
			CartLines: len(a.cart.Items()),
			CartItems: a.cart.Count(),
			CartTotal: a.cart.Total(),
			DataDir:   GetDataDir(),
		}
		if state.User != nil {
			report.Email = state.User.Email
			report.Name = state.User.Name
		}

		if IsJSONOutput() {
			printJSON(w, report)
		} else {
			fmt.Fprintln(w, formatStatusHuman(report))
		}
		return 0
	})
}

// formatStatusHuman formats the report for human readability
func formatStatusHuman(r statusReport) string {
	session := "not logged in"
	if r.Email != "" {
		session = fmt.Sprintf("%s <%s>", r.Name, r.Email)
	}
	return fmt.Sprintf(`Session: %s
Cart:    %d items in %d lines, $%.2f
Data:    %s`, session, r.CartItems, r.CartLines, r.CartTotal, r.DataDir)
}
