// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/models"
)

func TestCartAPI_AddThenRemove(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)
	env.startCartSession(t)
	item := env.product(t, poloSlug).AsCartItem()

	addOnce := func() cartResult {
		t.Helper()
		resp, body := env.do(t, http.MethodPost, "/api/cart/items", item)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d: %s", resp.StatusCode, body)
		}
		var res cartResult
		decode(t, body, &res)
		if !res.Success {
			t.Fatalf("add failed: %+v", res)
		}
		return res
	}

	first := addOnce()
	if !strings.Contains(first.Message, "added to cart") {
		t.Errorf("message = %q", first.Message)
	}
	if got := first.Cart.ItemsPrice.String(); got != "59.99" {
		t.Errorf("itemsPrice = %s", got)
	}

	second := addOnce()
	if len(second.Cart.Items) != 1 || second.Cart.Items[0].Qty != 2 {
		t.Fatalf("items = %+v", second.Cart.Items)
	}
	pb := second.Cart.PriceBreakdown
	if pb.TotalPrice != pb.ItemsPrice+pb.ShippingPrice+pb.TaxPrice {
		t.Errorf("total does not add up: %+v", pb)
	}

	tests := []struct {
		wantMsg string
		wantQty int
	}{
		{"updated in", 1},
		{"removed from", 0},
	}
	for _, tt := range tests {
		resp, body := env.do(t, http.MethodDelete, "/api/cart/items/"+item.ProductID, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var res cartResult
		decode(t, body, &res)
		if !res.Success || !strings.Contains(res.Message, tt.wantMsg) {
			t.Fatalf("remove = %+v, want %q", res, tt.wantMsg)
		}
		qty := 0
		if len(res.Cart.Items) > 0 {
			qty = res.Cart.Items[0].Qty
		}
		if qty != tt.wantQty {
			t.Errorf("qty = %d, want %d", qty, tt.wantQty)
		}
	}

	_, body := env.do(t, http.MethodDelete, "/api/cart/items/"+item.ProductID, nil)
	var res cartResult
	decode(t, body, &res)
	if res.Success || res.Code != cart.CodeItemNotFound {
		t.Errorf("second remove = %+v", res)
	}
}

func TestCartAPI_FailSoftOutcomes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)
	polo := env.product(t, poloSlug).AsCartItem()

	// No page visit yet, so no sessionCartId.
	_, body := env.do(t, http.MethodPost, "/api/cart/items", polo)
	var res cartResult
	decode(t, body, &res)
	if res.Success || res.Code != cart.CodeSessionMissing || res.Message != "Cart Session not found" {
		t.Fatalf("without session = %+v", res)
	}

	env.startCartSession(t)

	_, body = env.do(t, http.MethodDelete, "/api/cart/items/"+polo.ProductID, nil)
	decode(t, body, &res)
	if res.Success || res.Code != cart.CodeCartNotFound {
		t.Errorf("remove without cart = %+v", res)
	}

	// A first add creates the cart; stock is only checked against an
	// existing cart.
	if _, body := env.do(t, http.MethodPost, "/api/cart/items", polo); !strings.Contains(string(body), `"success":true`) {
		t.Fatalf("first add = %s", body)
	}

	unknown := polo
	unknown.ProductID = "does-not-exist"
	soldOut := env.product(t, soldOutSlug).AsCartItem()
	invalid := polo
	invalid.Qty = 0

	tests := []struct {
		name string
		item any
		code string
	}{
		{"unknown product", unknown, cart.CodeProductNotFound},
		{"sold out", soldOut, cart.CodeInsufficientStock},
		{"invalid candidate", invalid, cart.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, "/api/cart/items", tt.item)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var res cartResult
			decode(t, body, &res)
			if res.Success || res.Code != tt.code {
				t.Errorf("got %+v, want code %s", res, tt.code)
			}
		})
	}

	// Failed adds leave the cart untouched.
	c, err := env.db.FetchCart(context.Background(), models.CartIdentity{SessionCartID: env.cookie(cartCookie)})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Items) != 1 || c.Items[0].Qty != 1 {
		t.Errorf("items = %+v", c.Items)
	}
}

func TestCartAPI_MalformedJSON(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)
	env.startCartSession(t)

	resp, body := env.do(t, http.MethodPost, "/api/cart/items", "{not json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var apiResp APIResponse
	decode(t, body, &apiResp)
	if apiResp.Success || apiResp.Error == nil || apiResp.Error.Code != ErrCodeBadRequest {
		t.Errorf("body = %s", body)
	}
}

func TestCartAPI_GetCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)
	env.startCartSession(t)

	resp, body := env.do(t, http.MethodGet, "/api/cart", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.Contains(string(body), `"data"`) {
		t.Errorf("expected no cart, got %s", body)
	}

	env.do(t, http.MethodPost, "/api/cart/items", env.product(t, poloSlug).AsCartItem())

	_, body = env.do(t, http.MethodGet, "/api/cart", nil)
	var got struct {
		Success bool `json:"success"`
		Data    struct {
			SessionCartID string `json:"sessionCartId"`
			Items         []any  `json:"items"`
		} `json:"data"`
	}
	decode(t, body, &got)
	if got.Data.SessionCartID != env.cookie(cartCookie) || len(got.Data.Items) != 1 {
		t.Errorf("cart = %s", body)
	}

	// The badge on the layout follows the cart.
	_, page := env.do(t, http.MethodGet, "/cart", nil)
	if !strings.Contains(string(page), "Cart (1)") {
		t.Error("cart badge missing")
	}
}
