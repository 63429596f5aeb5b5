// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/storefront/internal/models"
)

// memStore is an in-memory Store with the same version semantics as the
// SQL implementation.
type memStore struct {
	mu       sync.Mutex
	carts    map[string]*models.Cart
	order    []string
	products map[string]*models.Product
	seq      int

	creates int
	updates int

	// failWith is returned from every cart call when set.
	failWith error
	// conflicts makes the next n updates lose to a simulated foreign writer.
	conflicts int
}

func newMemStore(products ...*models.Product) *memStore {
	m := &memStore{carts: map[string]*models.Cart{}, products: map[string]*models.Product{}}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memStore) FetchCart(_ context.Context, id models.CartIdentity) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, cid := range m.order {
		c, ok := m.carts[cid]
		if !ok {
			continue
		}
		if id.UserID != "" {
			if c.UserID == id.UserID {
				return c.Clone(), nil
			}
			continue
		}
		if c.SessionCartID == id.SessionCartID {
			return c.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) CreateCart(_ context.Context, c *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.seq++
	m.creates++
	c.ID = fmt.Sprintf("cart-%d", m.seq)
	c.Version = 1
	m.carts[c.ID] = c.Clone()
	m.order = append(m.order, c.ID)
	return nil
}

func (m *memStore) UpdateCart(_ context.Context, c *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	stored, ok := m.carts[c.ID]
	if !ok {
		return ErrNotFound
	}
	if m.conflicts > 0 {
		m.conflicts--
		stored.Version++
		return ErrVersionConflict
	}
	if stored.Version != c.Version {
		return ErrVersionConflict
	}
	m.updates++
	c.Version++
	m.carts[c.ID] = c.Clone()
	return nil
}

func (m *memStore) ClaimSessionCart(_ context.Context, sessionCartID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var claim *models.Cart
	for _, c := range m.carts {
		if c.SessionCartID == sessionCartID && c.UserID == "" {
			claim = c
		}
	}
	if claim == nil {
		return ErrNotFound
	}
	for id, c := range m.carts {
		if c.UserID == userID {
			delete(m.carts, id)
		}
	}
	claim.UserID = userID
	claim.Version++
	return nil
}

func (m *memStore) FindProductByID(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) cart(t interface{ Fatalf(string, ...any) }, sid string) *models.Cart {
	c, err := m.FetchCart(context.Background(), models.CartIdentity{SessionCartID: sid})
	if err != nil {
		t.Fatalf("fetch cart %s: %v", sid, err)
	}
	return c
}

type staticSession struct {
	sid string
	uid string
}

func (s staticSession) SessionCartID(context.Context) string { return s.sid }
func (s staticSession) UserID(context.Context) string        { return s.uid }

type recordingInvalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingInvalidator) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}
