// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/storefront/internal/auth"
	"github.com/tomtom215/storefront/internal/cache"
	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/logging"
)

// PageCacheHeader reports whether the product fragment came from the cache.
const PageCacheHeader = "X-Page-Cache"

// pageData is the layout model. Body is the page-specific model.
type pageData struct {
	Title     string
	User      *auth.Subject
	CartCount int
	Body      any
	Fragment  template.HTML
}

// authForm repopulates the sign-in and sign-up forms.
type authForm struct {
	Name     string
	Email    string
	Callback string
	Error    string
}

// basePage fills the per-visitor parts of the layout. A cart lookup
// failure only hides the badge.
func (h *Handler) basePage(r *http.Request, title string) pageData {
	d := pageData{Title: title, User: auth.GetSubject(r.Context())}
	c, err := h.Cart.GetCart(r.Context())
	switch {
	case err != nil:
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Cart badge unavailable")
	case c != nil:
		d.CartCount = c.ItemCount()
	}
	return d
}

func (h *Handler) homePath() string {
	if p := h.Config.Security.HomePath; p != "" {
		return p
	}
	return "/"
}

// HomePage renders the newest products.
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.ListLatestProducts(r.Context(), defaultProductLimit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list products")
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}
	d := h.basePage(r, "Home")
	d.Body = products
	h.renderPage(w, r, "home", http.StatusOK, d)
}

// ProductPage renders a product. The product fragment is cached under
// cart.ProductPath(slug) and evicted when the product changes; the layout
// around it is rendered per visitor.
func (h *Handler) ProductPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	key := cart.ProductPath(slug)

	page, hit := h.Pages.Get(key)
	if !hit {
		p, err := h.Catalog.FindProductBySlug(r.Context(), slug)
		switch {
		case errors.Is(err, cart.ErrNotFound):
			h.renderError(w, r, http.StatusNotFound, "Product not found")
			return
		case err != nil:
			logging.Ctx(r.Context()).Error().Err(err).Str("slug", slug).Msg("Failed to load product")
			h.renderError(w, r, http.StatusInternalServerError, "Something went wrong")
			return
		}

		body, err := h.views.render("product", "product_fragment", p)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Template error")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		page = cache.Page{Title: p.Name, Body: body, ContentType: htmlContentType, StoredAt: time.Now()}
		h.Pages.Set(key, page)
	}

	if hit {
		w.Header().Set(PageCacheHeader, "HIT")
	} else {
		w.Header().Set(PageCacheHeader, "MISS")
	}

	d := h.basePage(r, page.Title)
	d.Fragment = template.HTML(page.Body) //nolint:gosec // rendered by html/template above
	h.renderPage(w, r, "product", http.StatusOK, d)
}

// CartPage renders the visitor's cart.
func (h *Handler) CartPage(w http.ResponseWriter, r *http.Request) {
	d := pageData{Title: "Shopping Cart", User: auth.GetSubject(r.Context())}
	c, err := h.Cart.GetCart(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to load cart")
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if c != nil {
		d.Body = c
		d.CartCount = c.ItemCount()
	}
	h.renderPage(w, r, "cart", http.StatusOK, d)
}

// SignInPage renders the sign-in form.
func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	h.renderAuthPage(w, r, "sign_in", http.StatusOK, authForm{Callback: safeCallback(r.URL.Query().Get("callbackUrl"))})
}

// SignUpPage renders the sign-up form.
func (h *Handler) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.renderAuthPage(w, r, "sign_up", http.StatusOK, authForm{Callback: safeCallback(r.URL.Query().Get("callbackUrl"))})
}

func (h *Handler) renderAuthPage(w http.ResponseWriter, r *http.Request, page string, status int, form authForm) {
	title := "Sign In"
	if page == "sign_up" {
		title = "Sign Up"
	}
	d := h.basePage(r, title)
	d.Body = form
	h.renderPage(w, r, page, status, d)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	d := h.basePage(r, http.StatusText(status))
	d.Body = message
	h.renderPage(w, r, "error", status, d)
}

// NotFound answers unknown API paths with JSON and everything else with
// the HTML error page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		NewResponseWriter(w, r).NotFound("Resource not found")
		return
	}
	h.renderError(w, r, http.StatusNotFound, "Page not found")
}
