// ABOUTME: Health command for the storefront CLI
// ABOUTME: Checks catalog API connectivity and reports latency

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/markalston/storefront/cli/internal/catalog"
	"github.com/markalston/storefront/cli/internal/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check catalog API connectivity",
	Long:  `Check connectivity to the catalog API by listing its categories.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHealth(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// healthReport is the result of a connectivity check
type healthReport struct {
	API               string `json:"api"`
	Status            string `json:"status"`
	Categories        int    `json:"categories"`
	VisibleCategories int    `json:"visible_categories"`
	LatencyMS         int64  `json:"latency_ms"`
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	url := GetAPIURL()
	c := client.New(url, nil)

	start := time.Now()
	categories, err := c.Categories(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	report := healthReport{
		API:               url,
		Status:            "ok",
		Categories:        len(categories),
		VisibleCategories: len(catalog.VisibleCategories(categories)),
		LatencyMS:         time.Since(start).Milliseconds(),
	}

	if IsJSONOutput() {
		printJSON(w, report)
	} else {
		fmt.Fprintln(w, formatHealthHuman(report))
	}
	return 0
}

// formatHealthHuman formats the report for human readability
func formatHealthHuman(r healthReport) string {
	return fmt.Sprintf(`API:        %s
Status:     %s
Categories: %d (%d shown)
Latency:    %dms`, r.API, r.Status, r.Categories, r.VisibleCategories, r.LatencyMS)
}
