// ABOUTME: Shop command launching the interactive TUI
// ABOUTME: Shares storage, session and cart with the other commands

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/storefront/cli/internal/tui"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Browse and buy interactively",
	Long:  `Open the interactive shop: browse products, manage the cart, log in and check out.`,
	Run: func(cmd *cobra.Command, args []string) {
		code := withApp(os.Stdout, func(a *app) int {
			if err := tui.Run(a.client, a.session, a.cart, a.logger); err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				return 2
			}
			return 0
		})
		if code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(shopCmd)
}
