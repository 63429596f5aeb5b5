// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/storefront/internal/models"
)

// Cart endpoints answer 200 with the cart.Result envelope for every domain
// outcome, so clients branch on "success" rather than the status code.

// GetCart handles GET /api/cart. data is null when the visitor has no cart.
//
// @Summary Get the visitor's cart
// @Tags Cart
// @Produce json
// @Success 200 {object} APIResponse{data=models.Cart} "Cart, or null data when none exists"
// @Router /cart [get]
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	c, err := h.Cart.GetCart(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(c)
}

// AddCartItem handles POST /api/cart/items with a CartItem body.
//
// @Summary Add an item to the cart
// @Description Creates the cart on first use, otherwise merges by productId. Domain failures answer 200 with success=false.
// @Tags Cart
// @Accept json
// @Produce json
// @Param item body models.CartItem true "Item snapshot"
// @Success 200 {object} cart.Result "Fail-soft result envelope"
// @Failure 400 {object} APIResponse "Malformed JSON"
// @Router /cart/items [post]
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var item models.CartItem
	if err := decodeJSON(w, r, &item); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, h.Cart.AddItem(r.Context(), item))
}

// RemoveCartItem handles DELETE /api/cart/items/{productId}.
//
// @Summary Remove one unit of an item
// @Tags Cart
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} cart.Result "Fail-soft result envelope"
// @Router /cart/items/{productId} [delete]
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Cart.RemoveItem(r.Context(), chi.URLParam(r, "productId")))
}
