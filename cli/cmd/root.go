// ABOUTME: Root command for the storefront CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/storefront/cli/internal/client"
	"github.com/markalston/storefront/cli/internal/storage"
)

var (
	apiURL     string
	dataDir    string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Shop the storefront catalog from the terminal",
	Long: `storefront browses the product catalog, keeps a persistent cart and
manages your account session.

Environment Variables:
  STOREFRONT_API_URL    Catalog API URL (default: https://api.escuelajs.co/api/v1)
  STOREFRONT_DATA_DIR   Directory for the cart, cookies and debug log
                        (default: $XDG_CONFIG_HOME/storefront)
  STOREFRONT_ENV        Set to "production" to mark cookies Secure
  STOREFRONT_LOG_LEVEL  debug, info, warn, error (default: info)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Catalog API URL (overrides STOREFRONT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides STOREFRONT_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("STOREFRONT_API_URL"); envURL != "" {
		return envURL
	}
	return client.DefaultBaseURL
}

// GetDataDir returns the data directory from flag, env, or default
func GetDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("STOREFRONT_DATA_DIR"); envDir != "" {
		return envDir
	}
	return storage.DefaultDataDir()
}

// IsProduction reports whether cookies should be marked Secure
func IsProduction() bool {
	return os.Getenv("STOREFRONT_ENV") == "production"
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
