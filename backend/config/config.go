// ABOUTME: Configuration loader for the storefront backend
// ABOUTME: Loads settings from an optional .env file and environment variables with defaults

package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCatalogAPIURL is the public catalog API the storefront sells from
const DefaultCatalogAPIURL = "https://api.escuelajs.co/api/v1"

// maxSecretLen is the largest key BLAKE2b accepts
const maxSecretLen = 64

type Config struct {
	// Server
	Port               string
	Environment        string
	CORSAllowedOrigins []string      // allowed CORS origins (empty = block all cross-origin)
	RequestTimeout     time.Duration // upstream request timeout

	// Catalog upstream
	CatalogAPIURL   string
	CatalogAllProxy string // optional ssh+socks5://user@host:port?private-key=/path
	CacheTTL        int    // seconds

	// Session cookie
	CookieSecure    bool
	CookieSecret    []byte
	CookieMaxAge    time.Duration
	GeneratedSecret bool // true when no COOKIE_SECRET was configured

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitAuth    int  // Requests per minute for login and signup (default: 5)
	RateLimitDefault int  // Requests per minute for all other endpoints (default: 100)
}

// Production reports whether the server runs in the production environment
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// LoadDotEnv reads an optional .env file into the environment.
// Variables already set win over the file. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func Load() (*Config, error) {
	env := strings.ToLower(getEnv("ENVIRONMENT", "development"))

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        env,
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT", 10)) * time.Second,

		CatalogAPIURL:   strings.TrimRight(ensureScheme(getEnv("CATALOG_API_URL", DefaultCatalogAPIURL)), "/"),
		CatalogAllProxy: os.Getenv("CATALOG_ALL_PROXY"),
		CacheTTL:        getEnvInt("CACHE_TTL", 300),

		CookieSecure: getEnvBool("COOKIE_SECURE", env == "production"),
		CookieSecret: []byte(os.Getenv("COOKIE_SECRET")),
		CookieMaxAge: 7 * 24 * time.Hour,

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnvInt("RATE_LIMIT_AUTH", 5),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),
	}

	if len(cfg.CookieSecret) > maxSecretLen {
		return nil, fmt.Errorf("COOKIE_SECRET must be at most %d bytes, got %d", maxSecretLen, len(cfg.CookieSecret))
	}
	if len(cfg.CookieSecret) == 0 {
		if cfg.Production() {
			return nil, fmt.Errorf("COOKIE_SECRET is required in production")
		}
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generating cookie secret: %w", err)
		}
		cfg.CookieSecret = secret
		cfg.GeneratedSecret = true
		slog.Warn("COOKIE_SECRET not set, sessions will not survive a restart")
	}

	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("CACHE_TTL must not be negative, got %d", cfg.CacheTTL)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	// Validate rate limit values
	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_AUTH", cfg.RateLimitAuth},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
