// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package cart

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/storefront/internal/models"
)

func shirt(stock int) *models.Product {
	return &models.Product{ID: "P1", Name: "Polo Shirt", Slug: "polo-shirt", Price: models.MustParseMoney("50.00"), Stock: stock}
}

func shirtItem() models.CartItem {
	return models.CartItem{ProductID: "P1", Name: "Polo Shirt", Slug: "polo-shirt", Price: models.MustParseMoney("50.00"), Qty: 1}
}

type fixture struct {
	svc   *Service
	store *memStore
	inv   *recordingInvalidator
}

func newFixture(t *testing.T, sess SessionSource, products ...*models.Product) *fixture {
	t.Helper()
	store := newMemStore(products...)
	inv := &recordingInvalidator{}
	svc, err := NewService(Deps{
		Carts:       store,
		Products:    store,
		Sessions:    sess,
		Claimer:     store,
		Invalidator: inv,
	}, Config{MaxUpdateAttempts: 3})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, store: store, inv: inv}
}

func TestNewService_RequiresDeps(t *testing.T) {
	t.Parallel()

	if _, err := NewService(Deps{}, Config{}); err == nil {
		t.Fatal("expected error for missing deps")
	}
}

func TestAddItem_NewCartPrices(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(5))

	res := f.svc.AddItem(context.Background(), shirtItem())
	if !res.Success {
		t.Fatalf("AddItem failed: %+v", res)
	}
	if res.Message != "Polo Shirt added to cart successfully" {
		t.Errorf("message = %q", res.Message)
	}

	c := f.store.cart(t, "s1")
	if got := []string{c.ItemsPrice.String(), c.ShippingPrice.String(), c.TaxPrice.String(), c.TotalPrice.String()}; strings.Join(got, " ") != "50.00 10.00 7.50 67.50" {
		t.Errorf("prices = %v", got)
	}
	if f.store.creates != 1 || f.store.updates != 0 {
		t.Errorf("creates=%d updates=%d", f.store.creates, f.store.updates)
	}
	if paths := f.inv.all(); len(paths) != 1 || paths[0] != "/product/polo-shirt" {
		t.Errorf("invalidated = %v", paths)
	}
}

func TestAddItem_TwiceNeverDuplicates(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(5))
	ctx := context.Background()

	f.svc.AddItem(ctx, shirtItem())
	res := f.svc.AddItem(ctx, shirtItem())
	if !res.Success {
		t.Fatalf("second AddItem failed: %+v", res)
	}
	if !strings.Contains(res.Message, "updated in") {
		t.Errorf("message = %q", res.Message)
	}

	c := f.store.cart(t, "s1")
	if len(c.Items) != 1 || c.Items[0].Qty != 2 {
		t.Fatalf("items = %+v", c.Items)
	}
	if c.ItemsPrice.String() != "100.00" || c.ShippingPrice.String() != "10.00" {
		t.Errorf("prices = %+v", c.PriceBreakdown)
	}
}

func TestAddItem_AppendsNewProduct(t *testing.T) {
	t.Parallel()
	hat := &models.Product{ID: "P2", Name: "Hat", Slug: "hat", Price: 2500, Stock: 1}
	f := newFixture(t, staticSession{sid: "s1"}, shirt(5), hat)
	ctx := context.Background()

	f.svc.AddItem(ctx, shirtItem())
	res := f.svc.AddItem(ctx, hat.AsCartItem())
	if !res.Success || res.Message != "Hat added to cart successfully" {
		t.Fatalf("unexpected result %+v", res)
	}
	c := f.store.cart(t, "s1")
	if len(c.Items) != 2 || c.Items[1].ProductID != "P2" {
		t.Errorf("items = %+v", c.Items)
	}
	if c.ItemsPrice.String() != "75.00" {
		t.Errorf("itemsPrice = %s", c.ItemsPrice)
	}
}

func TestAddItem_StockGuard(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(1))
	ctx := context.Background()

	if res := f.svc.AddItem(ctx, shirtItem()); !res.Success {
		t.Fatalf("first add failed: %+v", res)
	}
	before := f.store.cart(t, "s1")

	res := f.svc.AddItem(ctx, shirtItem())
	if res.Success {
		t.Fatal("expected insufficient stock")
	}
	if res.Code != CodeInsufficientStock || res.Message != "Not enough stock" {
		t.Errorf("result = %+v", res)
	}
	if f.store.updates != 0 {
		t.Errorf("expected no persistence, got %d updates", f.store.updates)
	}
	after := f.store.cart(t, "s1")
	if after.Items[0].Qty != before.Items[0].Qty || after.Version != before.Version {
		t.Error("cart changed after a rejected add")
	}
	if len(f.inv.all()) != 1 {
		t.Error("rejected add must not invalidate pages")
	}
}

func TestAddItem_OutOfStockNewLine(t *testing.T) {
	t.Parallel()
	gone := &models.Product{ID: "P9", Name: "Gone", Slug: "gone", Price: 100, Stock: 0}
	f := newFixture(t, staticSession{sid: "s1"}, shirt(5), gone)
	ctx := context.Background()

	f.svc.AddItem(ctx, shirtItem())
	res := f.svc.AddItem(ctx, gone.AsCartItem())
	if res.Code != CodeInsufficientStock {
		t.Errorf("code = %q", res.Code)
	}
}

func TestAddItem_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		session  staticSession
		item     models.CartItem
		wantCode string
		wantMsg  string
	}{
		{"no session", staticSession{}, shirtItem(), CodeSessionMissing, "Cart Session not found"},
		{"unknown product", staticSession{sid: "s1"}, models.CartItem{ProductID: "nope", Name: "x", Slug: "x", Qty: 1}, CodeProductNotFound, "Product not found"},
		{"zero qty", staticSession{sid: "s1"}, models.CartItem{ProductID: "P1", Name: "x", Slug: "x", Qty: 0}, CodeValidation, "qty must be greater than or equal to 1"},
		{"negative price", staticSession{sid: "s1"}, models.CartItem{ProductID: "P1", Name: "x", Slug: "x", Qty: 1, Price: -5}, CodeValidation, "price must be greater than or equal to 0"},
		{"qty over limit", staticSession{sid: "s1"}, models.CartItem{ProductID: "P1", Name: "x", Slug: "x", Qty: 1 << 60, Price: 5000}, CodeValidation, "qty must be less than or equal to 10000"},
		{"price over limit", staticSession{sid: "s1"}, models.CartItem{ProductID: "P1", Name: "x", Slug: "x", Qty: 1, Price: models.MaxItemPrice + 1}, CodeValidation, "price must be less than or equal to 100000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, tt.session, shirt(5))
			res := f.svc.AddItem(context.Background(), tt.item)
			if res.Success {
				t.Fatal("expected failure")
			}
			if res.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", res.Code, tt.wantCode)
			}
			if !strings.Contains(res.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", res.Message, tt.wantMsg)
			}
			if f.store.creates != 0 {
				t.Error("failed add must not create a cart")
			}
		})
	}
}

func TestAddItem_MergeStopsAtLineLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(1_000_000))
	ctx := context.Background()

	full := shirtItem()
	full.Qty = models.MaxItemQty
	if res := f.svc.AddItem(ctx, full); !res.Success {
		t.Fatalf("add at limit failed: %+v", res)
	}

	res := f.svc.AddItem(ctx, shirtItem())
	if res.Success || res.Code != CodeValidation {
		t.Fatalf("result = %+v", res)
	}
	c := f.store.cart(t, "s1")
	if c.Items[0].Qty != models.MaxItemQty || f.store.updates != 0 {
		t.Errorf("qty = %d, updates = %d", c.Items[0].Qty, f.store.updates)
	}
	if c.TotalPrice < 0 || c.TotalPrice != c.ItemsPrice+c.ShippingPrice+c.TaxPrice {
		t.Errorf("prices = %+v", c.PriceBreakdown)
	}
}

func TestAddItem_PersistenceErrorIsHidden(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(5))
	f.store.failWith = PersistenceError("fetch cart", errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	res := f.svc.AddItem(context.Background(), shirtItem())
	if res.Success || res.Code != CodePersistence {
		t.Fatalf("result = %+v", res)
	}
	if strings.Contains(res.Message, "10.0.0.5") {
		t.Errorf("internal detail leaked: %q", res.Message)
	}
}

func TestRemoveItem(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(5))
	ctx := context.Background()

	f.svc.AddItem(ctx, shirtItem())
	f.svc.AddItem(ctx, shirtItem())

	res := f.svc.RemoveItem(ctx, "P1")
	if !res.Success || !strings.Contains(res.Message, "updated in") {
		t.Fatalf("first remove = %+v", res)
	}
	if c := f.store.cart(t, "s1"); len(c.Items) != 1 || c.Items[0].Qty != 1 {
		t.Fatalf("items after first remove = %+v", c.Items)
	}

	res = f.svc.RemoveItem(ctx, "P1")
	if !res.Success || !strings.Contains(res.Message, "removed from") {
		t.Fatalf("second remove = %+v", res)
	}
	c := f.store.cart(t, "s1")
	if len(c.Items) != 0 {
		t.Fatalf("items = %+v", c.Items)
	}
	if c.ItemsPrice != 0 || c.ShippingPrice.String() != "10.00" || c.TotalPrice.String() != "10.00" {
		t.Errorf("empty cart prices = %+v", c.PriceBreakdown)
	}

	res = f.svc.RemoveItem(ctx, "P1")
	if res.Success || res.Code != CodeItemNotFound || res.Message != "Item not found" {
		t.Errorf("third remove = %+v", res)
	}
}

func TestRemoveItem_Failures(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticSession{sid: "s1"}, shirt(5))
	if res := f.svc.RemoveItem(context.Background(), "P1"); res.Code != CodeCartNotFound || res.Message != "Cart not found" {
		t.Errorf("no cart = %+v", res)
	}
	if res := f.svc.RemoveItem(context.Background(), "missing"); res.Code != CodeProductNotFound {
		t.Errorf("unknown product = %+v", res)
	}

	anon := newFixture(t, staticSession{}, shirt(5))
	if res := anon.svc.RemoveItem(context.Background(), "P1"); res.Code != CodeSessionMissing {
		t.Errorf("no session = %+v", res)
	}
}

func TestUpdate_RetriesVersionConflicts(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(5))
	ctx := context.Background()
	f.svc.AddItem(ctx, shirtItem())

	f.store.conflicts = 2
	res := f.svc.AddItem(ctx, shirtItem())
	if !res.Success {
		t.Fatalf("expected success after retries: %+v", res)
	}
	if c := f.store.cart(t, "s1"); c.Items[0].Qty != 2 {
		t.Errorf("qty = %d", c.Items[0].Qty)
	}

	f.store.conflicts = 10
	res = f.svc.AddItem(ctx, shirtItem())
	if res.Success || res.Code != CodeConflict {
		t.Errorf("expected conflict after exhausting attempts: %+v", res)
	}
}

func TestAddItem_UserIdentity(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1", uid: "u1"}, shirt(5))

	res := f.svc.AddItem(context.Background(), shirtItem())
	if !res.Success {
		t.Fatalf("AddItem: %+v", res)
	}
	if res.Cart.UserID != "u1" || res.Cart.SessionCartID != "s1" {
		t.Errorf("cart identity = %q/%q", res.Cart.UserID, res.Cart.SessionCartID)
	}

	got, err := f.store.FetchCart(context.Background(), models.CartIdentity{SessionCartID: "other", UserID: "u1"})
	if err != nil || got.ID != res.Cart.ID {
		t.Errorf("lookup by user failed: %v", err)
	}
}

func TestGetCart(t *testing.T) {
	t.Parallel()

	anon := newFixture(t, staticSession{}, shirt(5))
	if c, err := anon.svc.GetCart(context.Background()); c != nil || err != nil {
		t.Errorf("no session: cart=%v err=%v", c, err)
	}

	f := newFixture(t, staticSession{sid: "s1"}, shirt(5))
	if c, err := f.svc.GetCart(context.Background()); c != nil || err != nil {
		t.Errorf("no cart: cart=%v err=%v", c, err)
	}
	f.svc.AddItem(context.Background(), shirtItem())
	c, err := f.svc.GetCart(context.Background())
	if err != nil || c == nil || len(c.Items) != 1 {
		t.Errorf("GetCart = %+v, %v", c, err)
	}
}

func TestClaimSessionCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(5))
	ctx := context.Background()

	if err := f.svc.ClaimSessionCart(ctx, "s1", "u1"); err != nil {
		t.Fatalf("claim without cart should be a no-op: %v", err)
	}

	f.svc.AddItem(ctx, shirtItem())
	if err := f.svc.ClaimSessionCart(ctx, "s1", "u1"); err != nil {
		t.Fatalf("ClaimSessionCart: %v", err)
	}
	c, err := f.store.FetchCart(ctx, models.CartIdentity{UserID: "u1"})
	if err != nil || len(c.Items) != 1 {
		t.Fatalf("claimed cart = %+v, %v", c, err)
	}
}

func TestRun_RecoversPanics(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(5))

	res := f.svc.run(context.Background(), "test", func() (Result, error) {
		panic("boom")
	})
	if res.Success || res.Code != CodeInternal {
		t.Errorf("result = %+v", res)
	}
}

func TestKeyedLock_ReleasesKeys(t *testing.T) {
	t.Parallel()

	k := newKeyedLock()
	unlock, err := k.Lock(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := k.Lock(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled while held, got %v", err)
	}

	unlock()
	if k.size() != 0 {
		t.Errorf("expected no live keys, got %d", k.size())
	}
}
