// ABOUTME: HTTP handlers for the storefront BFF
// ABOUTME: Holds shared dependencies and the JSON response helpers

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/markalston/storefront/backend/cache"
	"github.com/markalston/storefront/backend/config"
	"github.com/markalston/storefront/backend/models"
	"github.com/markalston/storefront/backend/services"
)

// Catalog is the upstream catalog API
type Catalog interface {
	Products(ctx context.Context) ([]models.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int) ([]models.Product, error)
	Product(ctx context.Context, id int) (*models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, token string) (*models.User, error)
	CreateUser(ctx context.Context, req models.SignupRequest) (*models.User, error)
}

type Handler struct {
	cfg     *config.Config
	cache   *cache.Cache
	catalog Catalog
	signer  *services.CookieSigner
	proxied bool
}

func NewHandler(cfg *config.Config, c *cache.Cache, catalog Catalog, signer *services.CookieSigner) *Handler {
	h := &Handler{
		cfg:     cfg,
		cache:   c,
		catalog: catalog,
		signer:  signer,
	}
	if cc, ok := catalog.(*services.CatalogClient); ok {
		h.proxied = cc.Proxied()
	}
	return h
}

// Signer returns the cookie signer used for the token cookie
func (h *Handler) Signer() *services.CookieSigner {
	return h.signer
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeUpstreamError relays catalog failures. Upstream 4xx keep their
// status and message; 5xx and transport failures become 502.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error, fallback string) {
	var upErr *services.UpstreamError
	if errors.As(err, &upErr) && upErr.Status < http.StatusInternalServerError {
		h.writeError(w, upstreamMessage(upErr, fallback), upErr.Status)
		return
	}

	slog.Error("Catalog API request failed", "error", err)
	if errors.Is(err, context.DeadlineExceeded) {
		h.writeError(w, "Catalog service timed out", http.StatusGatewayTimeout)
		return
	}
	h.writeError(w, "Catalog service unavailable", http.StatusBadGateway)
}

// upstreamMessage returns the catalog's message unless it is empty or only
// repeats the status text.
func upstreamMessage(upErr *services.UpstreamError, fallback string) string {
	if upErr.Message == "" || upErr.Message == http.StatusText(upErr.Status) {
		return fallback
	}
	return upErr.Message
}

// cached loads key through the cache, or directly when no cache is configured
func (h *Handler) cached(key string, load func() (any, error)) (any, error) {
	if h.cache == nil {
		return load()
	}
	val, _, err := h.cache.GetOrLoad(key, load)
	return val, err
}

func (h *Handler) requestTimeout() time.Duration {
	if h.cfg == nil || h.cfg.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return h.cfg.RequestTimeout
}

// decodeJSON reads a size-limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(v)
}
