// ABOUTME: HTTP handler for the health endpoint
// ABOUTME: Reports catalog reachability, proxy use and cache size

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/markalston/storefront/backend/models"
)

// Health returns API health status including catalog and cache status.
// An unreachable catalog is reported as degraded, not as a failed request.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:     "ok",
		CatalogAPI: "ok",
		Proxy:      h.proxied,
		Timestamp:  time.Now().UTC(),
	}

	if _, err := h.loadCategories(r.Context()); err != nil {
		slog.Warn("Catalog API health probe failed", "error", err)
		resp.Status = "degraded"
		resp.CatalogAPI = "unreachable"
	}

	if h.cache != nil {
		resp.CacheItems = h.cache.Len()
	}

	h.writeJSON(w, http.StatusOK, resp)
}
