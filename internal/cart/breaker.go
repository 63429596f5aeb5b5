// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package cart

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/models"
)

// BreakerConfig configures the store circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// Store is everything the service needs from storage.
type Store interface {
	Repository
	Claimer
	ProductFinder
}

// BreakerStore guards a Store with a circuit breaker. While open, calls
// fail fast with ErrPersistence.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]
}

var _ Store = (*BreakerStore)(nil)

// NewBreakerStore wraps next.
func NewBreakerStore(next Store, cfg BreakerConfig) *BreakerStore {
	if cfg.Name == "" {
		cfg.Name = "cart-store"
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Lookups that miss and lost optimistic races are normal outcomes.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, ErrVersionConflict) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String())
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// State reports the breaker state for health checks.
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

func (b *BreakerStore) do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return PersistenceError("circuit breaker", err)
	}
	return err
}

// FetchCart implements Repository.
func (b *BreakerStore) FetchCart(ctx context.Context, id models.CartIdentity) (*models.Cart, error) {
	var out *models.Cart
	err := b.do(func() error {
		c, err := b.next.FetchCart(ctx, id)
		out = c
		return err
	})
	return out, err
}

// CreateCart implements Repository.
func (b *BreakerStore) CreateCart(ctx context.Context, c *models.Cart) error {
	return b.do(func() error { return b.next.CreateCart(ctx, c) })
}

// UpdateCart implements Repository.
func (b *BreakerStore) UpdateCart(ctx context.Context, c *models.Cart) error {
	return b.do(func() error { return b.next.UpdateCart(ctx, c) })
}

// ClaimSessionCart implements Claimer.
func (b *BreakerStore) ClaimSessionCart(ctx context.Context, sessionCartID, userID string) error {
	return b.do(func() error { return b.next.ClaimSessionCart(ctx, sessionCartID, userID) })
}

// FindProductByID implements ProductFinder.
func (b *BreakerStore) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	var out *models.Product
	err := b.do(func() error {
		p, err := b.next.FindProductByID(ctx, id)
		out = p
		return err
	})
	return out, err
}
