// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/storefront/internal/audit"
	"github.com/tomtom215/storefront/internal/auth"
	"github.com/tomtom215/storefront/internal/authz"
	"github.com/tomtom215/storefront/internal/cache"
	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/middleware"
	"github.com/tomtom215/storefront/internal/models"
	"github.com/tomtom215/storefront/internal/validation"
	ws "github.com/tomtom215/storefront/internal/websocket"
)

// maxBodyBytes bounds JSON and form request bodies.
const maxBodyBytes = 1 << 20

// Catalog is the product surface the handlers need. Implemented by
// *database.DB.
type Catalog interface {
	cart.ProductFinder
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListLatestProducts(ctx context.Context, limit int) ([]*models.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error)
}

// Pinger reports store liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CartService is implemented by *cart.Service.
type CartService interface {
	AddItem(ctx context.Context, candidate models.CartItem) cart.Result
	RemoveItem(ctx context.Context, productID string) cart.Result
	GetCart(ctx context.Context) (*models.Cart, error)
	ClaimSessionCart(ctx context.Context, sessionCartID, userID string) error
}

// Deps are the collaborators of the HTTP layer. Hub, Invalidator, Perf and
// Audit are optional.
type Deps struct {
	Config        *config.Config
	Catalog       Catalog
	DB            Pinger
	Cart          CartService
	Accounts      *auth.Accounts
	Authenticator *auth.Authenticator
	JWT           *auth.JWTManager
	Gate          *auth.Gate
	CartSessions  *auth.CartSessionIssuer
	Authz         *authz.Middleware
	Pages         *cache.Cache
	Hub           *ws.Hub
	Invalidator   cart.Invalidator
	Perf          *middleware.PerformanceMonitor
	Audit         *audit.Logger
}

func (d *Deps) validate() error {
	switch {
	case d.Config == nil:
		return errors.New("api: Config is required")
	case d.Catalog == nil || d.DB == nil:
		return errors.New("api: Catalog and DB are required")
	case d.Cart == nil:
		return errors.New("api: Cart is required")
	case d.Accounts == nil || d.Authenticator == nil || d.JWT == nil:
		return errors.New("api: Accounts, Authenticator and JWT are required")
	case d.Gate == nil || d.CartSessions == nil || d.Authz == nil:
		return errors.New("api: Gate, CartSessions and Authz are required")
	case d.Pages == nil:
		return errors.New("api: Pages is required")
	}
	return nil
}

// Handler holds the dependencies of every endpoint.
type Handler struct {
	Deps
	views     *views
	startTime time.Time
}

// NewHandler validates deps and parses the page templates.
func NewHandler(deps Deps) (*Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Invalidator == nil {
		deps.Invalidator = pageEvictor{deps.Pages}
	}
	v, err := newViews()
	if err != nil {
		return nil, err
	}
	return &Handler{Deps: deps, views: v, startTime: time.Now()}, nil
}

// pageEvictor evicts pages locally when no event bus is wired.
type pageEvictor struct{ pages *cache.Cache }

func (p pageEvictor) Invalidate(_ context.Context, path string) { p.pages.Invalidate(path) }

// errBadJSON marks an unreadable request body.
var errBadJSON = errors.New("request body must be valid JSON")

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errBadJSON
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errBadJSON
	}
	return nil
}

// respondValidation writes a validation failure, or reports false when
// err is not one.
func respondValidation(rw *ResponseWriter, err error) bool {
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		return false
	}
	rw.ValidationError(verr.Error(), verr.Details())
	return true
}
