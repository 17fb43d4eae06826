// ABOUTME: Page-prop handlers served behind the request-time page guard
// ABOUTME: Returns the server-side state each storefront page renders from

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/markalston/storefront/backend/middleware"
	"github.com/markalston/storefront/backend/models"
	"github.com/markalston/storefront/backend/services"
	"github.com/markalston/storefront/guard"
)

// HomePage loads products and categories concurrently
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	props := models.PageProps{
		Path:          guard.HomePath,
		Authenticated: middleware.GetToken(r) != "",
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		products, err := h.loadProducts(ctx)
		props.Products = products
		return err
	})
	g.Go(func() error {
		categories, err := h.loadCategories(ctx)
		props.Categories = categories
		return err
	})
	if err := g.Wait(); err != nil {
		h.writeUpstreamError(w, err, "Failed to load the catalog")
		return
	}

	h.writeJSON(w, http.StatusOK, props)
}

// ProfilePage loads the signed-in user. A token the catalog rejects is
// cleared and the visitor is sent to log in again.
func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user, err := h.catalog.Profile(r.Context(), middleware.GetToken(r))
	if err != nil {
		var upErr *services.UpstreamError
		if errors.As(err, &upErr) && upErr.Status == http.StatusUnauthorized {
			slog.Info("Catalog rejected session token, signing out")
			h.clearTokenCookie(w)
			w.Header().Set("x-middleware-cache", "no-cache")
			http.Redirect(w, r, guard.LoginRedirect(r.URL.Path), http.StatusFound)
			return
		}
		h.writeUpstreamError(w, err, "Failed to load profile")
		return
	}

	h.writeJSON(w, http.StatusOK, models.PageProps{
		Path:          r.URL.Path,
		Authenticated: true,
		User:          user,
	})
}

// StaticPage serves pages whose state lives entirely on the client
// (cart, checkout, login, signup).
func (h *Handler) StaticPage(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.PageProps{
		Path:          r.URL.Path,
		Authenticated: middleware.GetToken(r) != "",
	})
}
