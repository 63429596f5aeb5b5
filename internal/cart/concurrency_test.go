// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package cart

import (
	"context"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestAddItem_ConcurrentSameSessionKeepsEveryIncrement(t *testing.T) {
	t.Parallel()
	f := newFixture(t, staticSession{sid: "s1"}, shirt(1000))
	ctx := context.Background()

	const n = 40
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if res := f.svc.AddItem(gctx, shirtItem()); !res.Success {
				return fmt.Errorf("add failed: %s", res.Message)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	c := f.store.cart(t, "s1")
	if len(c.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(c.Items))
	}
	if c.Items[0].Qty != n {
		t.Errorf("qty = %d, want %d (lost update)", c.Items[0].Qty, n)
	}
	if f.store.creates != 1 {
		t.Errorf("creates = %d, want 1", f.store.creates)
	}
}

// Two services over one store model two processes: the keyed lock no
// longer serialises them and the version check has to.
func TestAddItem_ConcurrentAcrossInstancesUsesVersionCheck(t *testing.T) {
	t.Parallel()

	store := newMemStore(shirt(1000))
	sess := staticSession{sid: "s1"}
	newSvc := func() *Service {
		svc, err := NewService(Deps{Carts: store, Products: store, Sessions: sess}, Config{MaxUpdateAttempts: 50})
		if err != nil {
			t.Fatal(err)
		}
		return svc
	}
	a, b := newSvc(), newSvc()

	ctx := context.Background()
	if res := a.AddItem(ctx, shirtItem()); !res.Success {
		t.Fatalf("seed add: %+v", res)
	}

	const perInstance = 15
	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range []*Service{a, b} {
		for i := 0; i < perInstance; i++ {
			g.Go(func() error {
				if res := svc.AddItem(gctx, shirtItem()); !res.Success {
					return fmt.Errorf("add failed: %s (%s)", res.Message, res.Code)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	c := store.cart(t, "s1")
	if want := 1 + 2*perInstance; c.Items[0].Qty != want {
		t.Errorf("qty = %d, want %d", c.Items[0].Qty, want)
	}
}
