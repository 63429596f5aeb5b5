// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/storefront/internal/cart"
)

const (
	defaultProductLimit = 4
	maxProductLimit     = 100
)

// ListProducts handles GET /api/products?limit=N, newest first.
//
// @Summary List the newest products
// @Tags Catalog
// @Produce json
// @Param limit query int false "Maximum products (default 4)"
// @Success 200 {object} APIResponse{data=[]models.Product}
// @Failure 400 {object} APIResponse "Invalid limit"
// @Router /products [get]
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := defaultProductLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxProductLimit {
			rw.BadRequest("limit must be between 1 and 100")
			return
		}
		limit = n
	}

	products, err := h.Catalog.ListLatestProducts(r.Context(), limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(products)
}

// GetProduct handles GET /api/products/{slug}.
//
// @Summary Get a product by slug
// @Tags Catalog
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} APIResponse{data=models.Product}
// @Failure 404 {object} APIResponse "Product not found"
// @Router /products/{slug} [get]
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, err := h.Catalog.FindProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	switch {
	case errors.Is(err, cart.ErrNotFound):
		rw.NotFound("Product not found")
	case err != nil:
		rw.DatabaseError(err)
	default:
		rw.Success(p)
	}
}
