// ABOUTME: Entry point for the storefront backend-for-frontend service
// ABOUTME: Proxies the catalog API, owns the token cookie and guards page routes

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markalston/storefront/backend/cache"
	"github.com/markalston/storefront/backend/config"
	"github.com/markalston/storefront/backend/handlers"
	"github.com/markalston/storefront/backend/logger"
	"github.com/markalston/storefront/backend/middleware"
	"github.com/markalston/storefront/backend/services"
)

func main() {
	dotenvErr := config.LoadDotEnv(".env")

	// Initialize structured logging
	logger.Init()
	if dotenvErr != nil {
		slog.Warn("Ignoring .env file", "error", dotenvErr)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting storefront backend", "environment", cfg.Environment)
	slog.Info("Catalog API configured", "url", cfg.CatalogAPIURL, "proxy", cfg.CatalogAllProxy != "")

	// Initialize cache
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cacheTTL)
	defer c.Close()
	slog.Info("Cache initialized", "ttl", cacheTTL)

	signer, err := services.NewCookieSigner(cfg.CookieSecret, cfg.CookieMaxAge)
	if err != nil {
		slog.Error("Invalid cookie secret", "error", err)
		os.Exit(1)
	}

	catalog := services.NewCatalogClient(cfg.CatalogAPIURL, cfg.RequestTimeout, cfg.CatalogAllProxy)
	h := handlers.NewHandler(cfg, c, catalog, signer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

// newRouter registers API and page routes with their middleware chains
func newRouter(cfg *config.Config, h *handlers.Handler) *http.ServeMux {
	var authLimiter, defaultLimiter *middleware.Limiter
	if cfg.RateLimitEnabled {
		authLimiter = middleware.NewLimiter("auth", cfg.RateLimitAuth, time.Minute)
		defaultLimiter = middleware.NewLimiter("default", cfg.RateLimitDefault, time.Minute)
	}
	limitFor := func(rt handlers.Route) func(http.HandlerFunc) http.HandlerFunc {
		if rt.Rate == handlers.RateAuth {
			return middleware.AuthLimit(authLimiter)
		}
		return middleware.SessionLimit(defaultLimiter)
	}

	session := middleware.Session(h.Signer())
	cors := middleware.CORSWithConfig(cfg.CORSAllowedOrigins)
	mux := http.NewServeMux()

	for _, rt := range h.Routes() {
		chain := []func(http.HandlerFunc) http.HandlerFunc{
			session, middleware.LogRequest, cors, limitFor(rt),
		}
		if rt.Protected {
			chain = append(chain, middleware.RequireSession)
		}
		mux.HandleFunc(rt.Method+" "+rt.Path, middleware.Chain(rt.Handler, chain...))
		// Preflight requests carry no credentials and skip the limiter.
		if rt.Method != http.MethodGet {
			mux.HandleFunc(http.MethodOptions+" "+rt.Path, middleware.Chain(rt.Handler, middleware.LogRequest, cors))
		}
	}

	for _, rt := range h.PageRoutes() {
		mux.HandleFunc(rt.Method+" "+rt.Path, middleware.Chain(rt.Handler,
			session, middleware.LogRequest, limitFor(rt), middleware.PageGuard,
		))
	}

	return mux
}
