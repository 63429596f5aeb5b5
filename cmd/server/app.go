// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/storefront/internal/api"
	"github.com/tomtom215/storefront/internal/audit"
	"github.com/tomtom215/storefront/internal/auth"
	"github.com/tomtom215/storefront/internal/authz"
	"github.com/tomtom215/storefront/internal/cache"
	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/database"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/middleware"
	"github.com/tomtom215/storefront/internal/supervisor"
	"github.com/tomtom215/storefront/internal/supervisor/services"
	ws "github.com/tomtom215/storefront/internal/websocket"
)

const (
	sessionSweepInterval = 5 * time.Minute
	auditSweepInterval   = time.Hour
	auditCapacity        = 10000
	perfWindow           = 1000
	perfSlowThreshold    = 500 * time.Millisecond
)

// App owns every long-lived component. Build it with NewApp, register its
// services with AddServices, and Close it after the tree stops.
type App struct {
	cfg      *config.Config
	db       *database.DB
	sessions *auth.SessionStoreFactory
	enforcer *authz.Enforcer
	auditor  *audit.Logger
	pages    *cache.Cache
	hub      *ws.Hub
	events   *EventComponents
	router   *api.Router
	server   *http.Server
}

// NewApp wires the storefront. On error everything opened so far is closed.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}
	built := false
	defer func() {
		if !built {
			a.Close()
		}
	}()

	var err error
	a.db, err = database.New(&cfg.Database, &cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	logging.Info().Str("driver", cfg.Database.Driver).Str("path", cfg.Database.Path).Msg("Database initialized")

	if cfg.Database.SeedSampleData {
		if err = a.db.SeedSampleData(ctx); err != nil {
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
		logging.Info().Msg("Sample catalog and users seeded")
	}

	a.pages = cache.New(cfg.Cache.PageTTL)
	a.hub = ws.NewHub()

	a.events, err = InitEvents(&cfg.Events, a.pages, a.hub)
	if err != nil {
		return nil, fmt.Errorf("initialize events: %w", err)
	}
	invalidator := a.events.Invalidator()

	store := cart.NewBreakerStore(a.db, cart.BreakerConfig{
		MaxRequests:      cfg.Cart.BreakerMaxRequests,
		Interval:         cfg.Cart.BreakerInterval,
		Timeout:          cfg.Cart.BreakerTimeout,
		FailureThreshold: cfg.Cart.BreakerFailureThreshold,
	})
	cartSvc, err := cart.NewService(cart.Deps{
		Carts:       store,
		Products:    store,
		Sessions:    auth.RequestSession{},
		Claimer:     store,
		Invalidator: invalidator,
	}, cart.Config{
		MaxUpdateAttempts: cfg.Cart.MaxUpdateAttempts,
		StoreTimeout:      cfg.Cart.StoreTimeout,
	})
	if err != nil {
		return nil, err
	}

	a.sessions, err = auth.NewSessionStoreFactory(auth.SessionStoreType(cfg.Security.SessionStore), cfg.Security.SessionStorePath)
	if err != nil {
		return nil, err
	}
	if cfg.Security.JWTSecret == "" && !cfg.Server.IsProduction() {
		if cfg.Security.JWTSecret, err = ephemeralSecret(); err != nil {
			return nil, err
		}
		logging.Warn().Msg("JWT_SECRET not set: using a random secret, tokens will not survive a restart")
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return nil, fmt.Errorf("initialize JWT manager: %w", err)
	}
	gate, err := auth.NewGate(&cfg.Security)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("policy", gate.Policy().Name()).Msg("Route gate configured")

	a.enforcer, err = authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return nil, err
	}

	a.auditor = audit.NewLogger(audit.NewMemoryStore(auditCapacity), nil)

	a.router, err = api.NewRouter(api.Deps{
		Config:        cfg,
		Catalog:       a.db,
		DB:            a.db,
		Cart:          cartSvc,
		Accounts:      auth.NewAccounts(a.db),
		Authenticator: auth.NewAuthenticator(a.sessions.Store(), jwtManager, &cfg.Security),
		JWT:           jwtManager,
		Gate:          gate,
		CartSessions:  auth.NewCartSessionIssuer(&cfg.Security, gate.Matcher()),
		Authz:         authz.NewMiddleware(a.enforcer),
		Pages:         a.pages,
		Hub:           a.hub,
		Invalidator:   invalidator,
		Perf:          middleware.NewPerformanceMonitor(perfWindow, perfSlowThreshold),
		Audit:         a.auditor,
	})
	if err != nil {
		return nil, err
	}

	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           a.router.Handler(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	built = true
	return a, nil
}

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// AddServices registers the app's long-running parts with tree.
func (a *App) AddServices(tree *supervisor.SupervisorTree) {
	tree.AddDataService(services.NewJanitorService("page-cache-janitor", a.pages, a.cfg.Cache.CleanupInterval))
	tree.AddDataService(services.NewJanitorService("session-janitor", a.sessions, sessionSweepInterval))
	tree.AddDataService(services.NewJanitorService("audit-retention", a.auditor, auditSweepInterval))

	a.events.AddToSupervisor(tree)
	tree.AddMessagingService(services.NewWebSocketHubService(a.hub))

	tree.AddAPIService(services.NewHTTPServerService(a.server, a.cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", a.server.Addr).Msg("HTTP server service added")
}

// Close releases resources in reverse order of acquisition. Safe on a
// partially built App.
func (a *App) Close() {
	if a.auditor != nil {
		if err := a.auditor.Close(); err != nil {
			logging.Error().Err(err).Msg("Error flushing audit log")
		}
	}
	if a.enforcer != nil {
		a.enforcer.Close()
	}
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}
	a.events.Shutdown()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}
}

func ephemeralSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate JWT secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
