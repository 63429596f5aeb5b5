// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/models"
	"github.com/tomtom215/storefront/internal/pricing"
)

func testItem(id string, price string, qty int) models.CartItem {
	return models.CartItem{
		ProductID: id,
		Name:      "Product " + id,
		Slug:      "product-" + id,
		Image:     "/images/" + id + ".jpg",
		Price:     models.MustParseMoney(price),
		Qty:       qty,
	}
}

func newTestCart(sessionCartID string, items ...models.CartItem) *models.Cart {
	c := &models.Cart{SessionCartID: sessionCartID, Items: items}
	c.PriceBreakdown = pricing.Calculate(items)
	return c
}

func TestCartStore_CreateFetchUpdate(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()

		c := newTestCart("sess-1", testItem("p1", "19.99", 2))
		if err := db.CreateCart(ctx, c); err != nil {
			t.Fatalf("CreateCart: %v", err)
		}
		if c.ID == "" || c.Version != 1 || c.CreatedAt.IsZero() {
			t.Fatalf("CreateCart did not populate identity: %+v", c)
		}

		got, err := db.FetchCart(ctx, models.CartIdentity{SessionCartID: "sess-1"})
		if err != nil {
			t.Fatalf("FetchCart: %v", err)
		}
		if got.ID != c.ID || got.Version != 1 {
			t.Errorf("fetched id/version = %s/%d", got.ID, got.Version)
		}
		if len(got.Items) != 1 || got.Items[0].Qty != 2 || got.Items[0].Price != models.MustParseMoney("19.99") {
			t.Errorf("items round trip: %+v", got.Items)
		}
		if got.ItemsPrice.String() != "39.98" || got.TotalPrice != c.TotalPrice {
			t.Errorf("prices round trip: %+v", got.PriceBreakdown)
		}

		got.Items = append(got.Items, testItem("p2", "5.00", 1))
		got.PriceBreakdown = pricing.Calculate(got.Items)
		if err := db.UpdateCart(ctx, got); err != nil {
			t.Fatalf("UpdateCart: %v", err)
		}
		if got.Version != 2 {
			t.Errorf("version after update = %d, want 2", got.Version)
		}

		again, err := db.FetchCart(ctx, models.CartIdentity{SessionCartID: "sess-1"})
		if err != nil {
			t.Fatal(err)
		}
		if len(again.Items) != 2 || again.Version != 2 || again.ItemsPrice.String() != "44.98" {
			t.Errorf("after update: %+v", again)
		}
	})
}

func TestCartStore_EmptyItemsRoundTrip(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()
		c := newTestCart("sess-empty")
		if err := db.CreateCart(ctx, c); err != nil {
			t.Fatal(err)
		}
		got, err := db.FetchCart(ctx, models.CartIdentity{SessionCartID: "sess-empty"})
		if err != nil {
			t.Fatal(err)
		}
		if got.Items == nil || len(got.Items) != 0 {
			t.Errorf("Items = %#v, want empty non-nil slice", got.Items)
		}
	})
}

func TestCartStore_FetchMissing(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()
		for _, id := range []models.CartIdentity{
			{SessionCartID: "nope"},
			{SessionCartID: "nope", UserID: "nobody"},
			{},
		} {
			if _, err := db.FetchCart(ctx, id); !errors.Is(err, cart.ErrNotFound) {
				t.Errorf("FetchCart(%+v) err = %v, want ErrNotFound", id, err)
			}
		}
	})
}

func TestCartStore_UpdateStaleVersionConflicts(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()
		c := newTestCart("sess-cas", testItem("p1", "10.00", 1))
		if err := db.CreateCart(ctx, c); err != nil {
			t.Fatal(err)
		}

		first, _ := db.FetchCart(ctx, models.CartIdentity{SessionCartID: "sess-cas"})
		second, _ := db.FetchCart(ctx, models.CartIdentity{SessionCartID: "sess-cas"})

		first.Items[0].Qty = 2
		if err := db.UpdateCart(ctx, first); err != nil {
			t.Fatalf("first writer: %v", err)
		}

		second.Items[0].Qty = 5
		err := db.UpdateCart(ctx, second)
		if !errors.Is(err, cart.ErrVersionConflict) {
			t.Fatalf("stale writer err = %v, want ErrVersionConflict", err)
		}
		if second.Version != 1 {
			t.Errorf("failed update must not bump caller version, got %d", second.Version)
		}

		stored, _ := db.FetchCart(ctx, models.CartIdentity{SessionCartID: "sess-cas"})
		if stored.Items[0].Qty != 2 {
			t.Errorf("stored qty = %d, want the first writer's 2", stored.Items[0].Qty)
		}
	})
}

func TestCartStore_UpdateUnknownCart(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		c := newTestCart("sess-x")
		c.ID = "does-not-exist"
		c.Version = 1
		if err := db.UpdateCart(context.Background(), c); !errors.Is(err, cart.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestCartStore_UserIdentityWinsOverSession(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()

		anon := newTestCart("sess-a", testItem("p1", "1.00", 1))
		owned := newTestCart("sess-b", testItem("p2", "2.00", 1))
		owned.UserID = "user-1"
		for _, c := range []*models.Cart{anon, owned} {
			if err := db.CreateCart(ctx, c); err != nil {
				t.Fatal(err)
			}
		}

		got, err := db.FetchCart(ctx, models.CartIdentity{SessionCartID: "sess-a", UserID: "user-1"})
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != owned.ID {
			t.Errorf("fetched %s, want the user's cart %s", got.ID, owned.ID)
		}
	})
}

func TestCartStore_ClaimSessionCart(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()

		old := newTestCart("sess-old", testItem("p1", "1.00", 1))
		old.UserID = "user-1"
		anon := newTestCart("sess-new", testItem("p2", "2.00", 3))
		for _, c := range []*models.Cart{old, anon} {
			if err := db.CreateCart(ctx, c); err != nil {
				t.Fatal(err)
			}
		}

		if err := db.ClaimSessionCart(ctx, "sess-new", "user-1"); err != nil {
			t.Fatalf("ClaimSessionCart: %v", err)
		}

		got, err := db.FetchCart(ctx, models.CartIdentity{UserID: "user-1"})
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != anon.ID || got.UserID != "user-1" || got.Items[0].Qty != 3 {
			t.Errorf("claimed cart = %+v", got)
		}
		if got.Version != 2 {
			t.Errorf("claim should bump version, got %d", got.Version)
		}

		n, err := db.CountCarts(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("carts = %d, want the user's previous cart removed", n)
		}

		// Already claimed: nothing anonymous left for the session.
		if err := db.ClaimSessionCart(ctx, "sess-new", "user-2"); !errors.Is(err, cart.ErrNotFound) {
			t.Errorf("second claim err = %v, want ErrNotFound", err)
		}
	})
}

// Two services over one database behave like two processes. The version
// check alone must keep every increment.
func TestCartStore_ServicesAcrossInstancesKeepEveryIncrement(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *DB) {
		ctx := context.Background()
		p := &models.Product{Name: "Tee", Slug: "tee", Price: models.MustParseMoney("12.50"), Stock: 1000}
		if err := db.CreateProduct(ctx, p); err != nil {
			t.Fatal(err)
		}

		sess := fixedSession("sess-race")
		newSvc := func() *cart.Service {
			svc, err := cart.NewService(cart.Deps{Carts: db, Products: db, Sessions: sess},
				cart.Config{MaxUpdateAttempts: 100})
			if err != nil {
				t.Fatal(err)
			}
			return svc
		}
		a, b := newSvc(), newSvc()
		item := p.AsCartItem()

		if res := a.AddItem(ctx, item); !res.Success {
			t.Fatalf("seed add: %+v", res)
		}

		const perInstance = 10
		g, gctx := errgroup.WithContext(ctx)
		for _, svc := range []*cart.Service{a, b} {
			for i := 0; i < perInstance; i++ {
				g.Go(func() error {
					if res := svc.AddItem(gctx, item); !res.Success {
						return fmt.Errorf("add: %s (%s)", res.Message, res.Code)
					}
					return nil
				})
			}
		}
		if err := g.Wait(); err != nil {
			t.Fatal(err)
		}

		got, err := db.FetchCart(ctx, models.CartIdentity{SessionCartID: "sess-race"})
		if err != nil {
			t.Fatal(err)
		}
		if want := 1 + 2*perInstance; got.Items[0].Qty != want {
			t.Errorf("qty = %d, want %d", got.Items[0].Qty, want)
		}
		if got.ItemsPrice != p.Price.Mul(got.Items[0].Qty) {
			t.Errorf("itemsPrice = %s does not match qty", got.ItemsPrice)
		}
	})
}

type fixedSession string

func (s fixedSession) SessionCartID(context.Context) string { return string(s) }
func (fixedSession) UserID(context.Context) string          { return "" }
