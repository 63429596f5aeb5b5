// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/tomtom215/storefront/docs" // Import generated swagger docs
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/supervisor"
)

// @title Storefront API
// @version 1.0
// @description Session cart, catalog and route gating for the storefront.
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:3000
// @BasePath /api
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token as "Bearer <token>". Browsers use the session cookie instead.
//
// @tag.name Cart
// @tag.description Session cart reads and mutations
//
// @tag.name Catalog
// @tag.description Product listing and lookup
//
// @tag.name Auth
// @tag.description Credentials sign-up, sign-in and sign-out
//
// @tag.name Admin
// @tag.description Stock, cache, latency and audit endpoints for the admin role
//
// @tag.name Health
// @tag.description Liveness checks
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("gate_policy", cfg.Security.GatePolicy).
		Str("session_store", cfg.Security.SessionStore).
		Str("events", describeTransport(&cfg.Events)).
		Msg("Starting Storefront with supervisor tree")

	if cfg.Security.SessionStore == "memory" && cfg.Server.IsProduction() {
		logging.Warn().Msg("Session store is 'memory': sign-ins are lost on restart. Set SESSION_STORE=badger for production.")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Storefront stopped with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run builds the app and serves it under the supervisor until ctx ends.
func run(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
		return err
	}
	app.AddServices(tree)

	logging.Info().Msg("Starting supervisor tree...")
	err = tree.Serve(ctx)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
