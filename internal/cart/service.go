// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/models"
	"github.com/tomtom215/storefront/internal/pricing"
	"github.com/tomtom215/storefront/internal/validation"
)

// Config tunes the service.
type Config struct {
	// MaxUpdateAttempts bounds fetch-mutate-write rounds on version conflicts.
	MaxUpdateAttempts int
	// StoreTimeout bounds every individual store call.
	StoreTimeout time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{MaxUpdateAttempts: 3, StoreTimeout: 5 * time.Second}
}

// Deps are the collaborators of the service. Claimer and Invalidator are optional.
type Deps struct {
	Carts       Repository
	Products    ProductFinder
	Sessions    SessionSource
	Claimer     Claimer
	Invalidator Invalidator
}

// Result is the outcome envelope of AddItem and RemoveItem. Failures are
// reported here and never as Go errors.
type Result struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Code    string       `json:"code"`
	Cart    *models.Cart `json:"data,omitempty"`
}

// Service implements cart mutations.
type Service struct {
	carts       Repository
	products    ProductFinder
	sessions    SessionSource
	claimer     Claimer
	invalidator Invalidator
	locks       *keyedLock
	cfg         Config
}

// NewService validates deps and applies config defaults.
func NewService(deps Deps, cfg Config) (*Service, error) {
	if deps.Carts == nil || deps.Products == nil || deps.Sessions == nil {
		return nil, errors.New("cart service requires Carts, Products and Sessions")
	}
	def := DefaultConfig()
	if cfg.MaxUpdateAttempts < 1 {
		cfg.MaxUpdateAttempts = def.MaxUpdateAttempts
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = def.StoreTimeout
	}
	inv := deps.Invalidator
	if inv == nil {
		inv = noopInvalidator{}
	}
	return &Service{
		carts:       deps.Carts,
		products:    deps.Products,
		sessions:    deps.Sessions,
		claimer:     deps.Claimer,
		invalidator: inv,
		locks:       newKeyedLock(),
		cfg:         cfg,
	}, nil
}

// AddItem adds one unit of candidate.ProductID to the caller's cart,
// creating the cart on first use.
func (s *Service) AddItem(ctx context.Context, candidate models.CartItem) Result {
	return s.run(ctx, "add_item", func() (Result, error) {
		return s.addItem(ctx, candidate)
	})
}

// RemoveItem removes one unit of productID from the caller's cart.
func (s *Service) RemoveItem(ctx context.Context, productID string) Result {
	return s.run(ctx, "remove_item", func() (Result, error) {
		return s.removeItem(ctx, productID)
	})
}

// GetCart returns the caller's cart, or nil when there is no session
// cookie or no cart yet.
func (s *Service) GetCart(ctx context.Context) (*models.Cart, error) {
	id, err := s.resolveIdentity(ctx)
	if err != nil {
		return nil, nil
	}
	c, err := s.fetch(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// ClaimSessionCart assigns the anonymous cart of sessionCartID to userID.
// A missing session cart is not an error.
func (s *Service) ClaimSessionCart(ctx context.Context, sessionCartID, userID string) error {
	if s.claimer == nil || sessionCartID == "" || userID == "" {
		return nil
	}

	unlock, err := s.locks.Lock(ctx, lockKey(models.CartIdentity{SessionCartID: sessionCartID}))
	if err != nil {
		return err
	}
	defer unlock()

	sctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	err = s.claimer.ClaimSessionCart(sctx, sessionCartID, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("claim session cart: %w", err)
	}
	metrics.CartsClaimed.Inc()
	logging.Ctx(ctx).Info().Str("user_id", userID).Msg("Session cart claimed")
	return nil
}

func (s *Service) addItem(ctx context.Context, candidate models.CartItem) (Result, error) {
	id, err := s.resolveIdentity(ctx)
	if err != nil {
		return Result{}, err
	}
	if verr := validation.ValidateStruct(&candidate); verr != nil {
		return Result{}, &ValidationError{Reason: verr.Error()}
	}
	product, err := s.findProduct(ctx, candidate.ProductID)
	if err != nil {
		return Result{}, err
	}

	unlock, err := s.locks.Lock(ctx, lockKey(id))
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	var out Result
	err = s.withRetry(ctx, func() error {
		current, err := s.fetch(ctx, id)
		if errors.Is(err, ErrNotFound) {
			fresh := &models.Cart{
				SessionCartID: id.SessionCartID,
				UserID:        id.UserID,
				Items:         []models.CartItem{candidate},
			}
			fresh.PriceBreakdown = pricing.Calculate(fresh.Items)
			if err := s.create(ctx, fresh); err != nil {
				return err
			}
			out = succeed(fresh, fmt.Sprintf("%s added to cart successfully", product.Name))
			return nil
		}
		if err != nil {
			return err
		}

		next := current.Clone()
		verb := "added to"
		if i := next.FindItem(candidate.ProductID); i >= 0 {
			want := next.Items[i].Qty + 1
			if want > models.MaxItemQty {
				return &ValidationError{Reason: fmt.Sprintf("qty must be less than or equal to %d", models.MaxItemQty)}
			}
			if product.Stock < want {
				return &InsufficientStockError{ProductID: product.ID, Requested: want, Available: product.Stock}
			}
			next.Items[i].Qty = want
			verb = "updated in"
		} else {
			if product.Stock < 1 {
				return &InsufficientStockError{ProductID: product.ID, Requested: 1, Available: product.Stock}
			}
			next.Items = append(next.Items, candidate)
		}
		next.PriceBreakdown = pricing.Calculate(next.Items)

		if err := s.update(ctx, next); err != nil {
			return err
		}
		out = succeed(next, fmt.Sprintf("%s %s cart successfully", product.Name, verb))
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.invalidator.Invalidate(ctx, ProductPath(product.Slug))
	return out, nil
}

func (s *Service) removeItem(ctx context.Context, productID string) (Result, error) {
	id, err := s.resolveIdentity(ctx)
	if err != nil {
		return Result{}, err
	}
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return Result{}, err
	}

	unlock, err := s.locks.Lock(ctx, lockKey(id))
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	var out Result
	err = s.withRetry(ctx, func() error {
		current, err := s.fetch(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return ErrCartNotFound
		}
		if err != nil {
			return err
		}

		i := current.FindItem(productID)
		if i < 0 {
			return ErrItemNotFound
		}

		next := current.Clone()
		if next.Items[i].Qty <= 1 {
			next.Items = append(next.Items[:i], next.Items[i+1:]...)
		} else {
			next.Items[i].Qty--
		}
		next.PriceBreakdown = pricing.Calculate(next.Items)

		if err := s.update(ctx, next); err != nil {
			return err
		}

		verb := "updated in"
		if next.FindItem(productID) < 0 {
			verb = "removed from"
		}
		out = succeed(next, fmt.Sprintf("%s %s cart successfully", product.Name, verb))
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.invalidator.Invalidate(ctx, ProductPath(product.Slug))
	return out, nil
}

// run converts errors and panics into a failed Result.
func (s *Service) run(ctx context.Context, op string, fn func() (Result, error)) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.Ctx(ctx).Error().Str("operation", op).Interface("panic", r).Msg("Cart operation panicked")
			metrics.RecordCartOperation(op, CodeInternal)
			res = Result{Success: false, Message: "Something went wrong, please try again", Code: CodeInternal}
		}
	}()

	res, err := fn()
	if err == nil {
		metrics.RecordCartOperation(op, CodeOK)
		return res
	}

	code, msg := classify(err)
	ev := logging.Ctx(ctx).Warn().Err(err)
	if code == CodePersistence || code == CodeInternal {
		ev = logging.CtxErr(ctx, err)
	}
	ev.Str("operation", op).Str("code", code).Msg("Cart operation failed")
	metrics.RecordCartOperation(op, code)
	return Result{Success: false, Message: msg, Code: code}
}

// withRetry reruns fn while it reports a version conflict.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.cfg.MaxUpdateAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
		metrics.CartUpdateConflicts.Inc()
		logging.Ctx(ctx).Debug().Int("attempt", attempt).Msg("Cart version conflict, retrying")
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

func (s *Service) resolveIdentity(ctx context.Context) (models.CartIdentity, error) {
	sid := s.sessions.SessionCartID(ctx)
	if sid == "" {
		return models.CartIdentity{}, ErrSessionMissing
	}
	return models.CartIdentity{SessionCartID: sid, UserID: s.sessions.UserID(ctx)}, nil
}

func (s *Service) findProduct(ctx context.Context, productID string) (*models.Product, error) {
	if productID == "" {
		return nil, ErrProductNotFound
	}
	sctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	p, err := s.products.FindProductByID(sctx, productID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *Service) fetch(ctx context.Context, id models.CartIdentity) (*models.Cart, error) {
	sctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.carts.FetchCart(sctx, id)
}

func (s *Service) create(ctx context.Context, c *models.Cart) error {
	sctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.carts.CreateCart(sctx, c)
}

func (s *Service) update(ctx context.Context, c *models.Cart) error {
	sctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.carts.UpdateCart(sctx, c)
}

func succeed(c *models.Cart, msg string) Result {
	return Result{Success: true, Message: msg, Code: CodeOK, Cart: c}
}

func lockKey(id models.CartIdentity) string {
	if id.UserID != "" {
		return "user:" + id.UserID
	}
	return "session:" + id.SessionCartID
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, string) {}
