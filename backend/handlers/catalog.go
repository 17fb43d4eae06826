// ABOUTME: HTTP handlers for catalog browsing endpoints
// ABOUTME: Serves products and categories from the upstream API through the TTL cache

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/markalston/storefront/backend/models"
)

// Products lists products, optionally narrowed by ?categoryId=
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("categoryId")
	if raw == "" {
		products, err := h.loadProducts(r.Context())
		if err != nil {
			h.writeUpstreamError(w, err, "Failed to load products")
			return
		}
		h.writeJSON(w, http.StatusOK, products)
		return
	}

	categoryID, err := strconv.Atoi(raw)
	if err != nil || categoryID < 1 {
		h.writeError(w, "categoryId must be a positive integer", http.StatusBadRequest)
		return
	}

	val, err := h.cached("products:category:"+raw, func() (any, error) {
		ctx, cancel := h.loadContext(r.Context())
		defer cancel()
		return h.catalog.ProductsByCategory(ctx, categoryID)
	})
	if err != nil {
		h.writeUpstreamError(w, err, "Failed to load products")
		return
	}
	h.writeJSON(w, http.StatusOK, val)
}

// Product returns one product by id
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		h.writeError(w, "Product id must be a positive integer", http.StatusBadRequest)
		return
	}

	val, err := h.cached("product:"+raw, func() (any, error) {
		ctx, cancel := h.loadContext(r.Context())
		defer cancel()
		return h.catalog.Product(ctx, id)
	})
	if err != nil {
		h.writeUpstreamError(w, err, "Product not found")
		return
	}
	h.writeJSON(w, http.StatusOK, val)
}

// Categories lists every category
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.loadCategories(r.Context())
	if err != nil {
		h.writeUpstreamError(w, err, "Failed to load categories")
		return
	}
	h.writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) loadProducts(ctx context.Context) ([]models.Product, error) {
	val, err := h.cached("products", func() (any, error) {
		ctx, cancel := h.loadContext(ctx)
		defer cancel()
		return h.catalog.Products(ctx)
	})
	if err != nil {
		return nil, err
	}
	return val.([]models.Product), nil
}

func (h *Handler) loadCategories(ctx context.Context) ([]models.Category, error) {
	val, err := h.cached("categories", func() (any, error) {
		ctx, cancel := h.loadContext(ctx)
		defer cancel()
		return h.catalog.Categories(ctx)
	})
	if err != nil {
		return nil, err
	}
	return val.([]models.Category), nil
}

// loadContext detaches a shared cache load from the request that started it;
// other callers may be waiting on the same key.
func (h *Handler) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), h.requestTimeout())
}
