// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/storefront/internal/audit"
	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/models"
	"github.com/tomtom215/storefront/internal/validation"
)

// UpdateStock handles PUT /api/admin/products/{id}/stock. The product page
// is invalidated on every instance.
//
// @Summary Set a product's stock
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body models.StockUpdateRequest true "New stock level"
// @Success 200 {object} APIResponse{data=models.Product}
// @Failure 403 {object} APIResponse "Admin role required"
// @Failure 404 {object} APIResponse "Product not found"
// @Router /admin/products/{id}/stock [put]
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.StockUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return
	}

	p, err := h.Catalog.UpdateStock(r.Context(), chi.URLParam(r, "id"), req.Stock)
	switch {
	case errors.Is(err, cart.ErrNotFound):
		rw.NotFound("Product not found")
		return
	case err != nil:
		rw.DatabaseError(err)
		return
	}

	h.Invalidator.Invalidate(r.Context(), cart.ProductPath(p.Slug))
	h.auditAdmin(r, audit.EventTypeStockUpdated, &audit.Target{ID: p.ID, Type: "product", Name: p.Slug},
		"Stock updated", map[string]int{"stock": p.Stock})
	logging.Ctx(r.Context()).Info().
		Str("product_id", p.ID).
		Int("stock", p.Stock).
		Msg("Stock updated")
	rw.Success(p)
}

// PerformanceStats handles GET /api/admin/performance.
//
// @Summary Request latency percentiles per route
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=[]middleware.EndpointStats}
// @Router /admin/performance [get]
func (h *Handler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.Perf == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Performance monitoring is disabled")
		return
	}
	rw.Success(h.Perf.Stats())
}

// CacheStats handles GET /api/admin/cache.
//
// @Summary Page cache statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=cache.Stats}
// @Router /admin/cache [get]
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.Pages.GetStats()
	WriteSuccess(w, r, map[string]any{
		"stats":    stats,
		"hit_rate": h.Pages.HitRate(),
	})
}

// ClearCache handles DELETE /api/admin/cache.
//
// @Summary Flush the page cache
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse
// @Router /admin/cache [delete]
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.Pages.Clear()
	h.auditAdmin(r, audit.EventTypeCacheCleared, nil, "Page cache cleared", nil)
	logging.Ctx(r.Context()).Info().Msg("Page cache cleared")
	WriteSuccess(w, r, nil)
}
