// ABOUTME: Entry point for the storefront CLI
// ABOUTME: Shop the catalog, manage the cart and the account session from a terminal

package main

import (
	"fmt"
	"os"

	"github.com/markalston/storefront/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
