// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package config

import (
	"fmt"
	"strings"
)

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateCart(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "duckdb", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be one of: duckdb, sqlite (got %q)", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := &c.Security

	switch s.GatePolicy {
	case GatePolicyFullApp, GatePolicyMiddlewareOnly:
	default:
		return fmt.Errorf("AUTH_GATE_POLICY must be one of: %s, %s (got %q)",
			GatePolicyFullApp, GatePolicyMiddlewareOnly, s.GatePolicy)
	}

	if !strings.HasPrefix(s.SignInPath, "/") {
		return fmt.Errorf("SIGN_IN_PATH must start with /")
	}
	for _, p := range s.AuthPaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("AUTH_PATHS entries must start with / (got %q)", p)
		}
	}

	switch s.SessionStore {
	case "memory", "badger":
	default:
		return fmt.Errorf("SESSION_STORE must be one of: memory, badger (got %q)", s.SessionStore)
	}
	if s.SessionStore == "badger" && s.SessionStorePath == "" {
		return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
	}
	if s.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if s.CartCookieName == "" || s.SessionCookieName == "" {
		return fmt.Errorf("cookie names must not be empty")
	}

	if c.Server.IsProduction() {
		if len(s.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if !s.CookieSecure {
			return fmt.Errorf("COOKIE_SECURE must be true in production")
		}
	}

	if !s.RateLimitDisabled && (s.RateLimitReqs < 1 || s.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateCart() error {
	if c.Cart.MaxUpdateAttempts < 1 {
		return fmt.Errorf("CART_MAX_UPDATE_ATTEMPTS must be at least 1")
	}
	if c.Cart.StoreTimeout <= 0 {
		return fmt.Errorf("CART_STORE_TIMEOUT must be positive")
	}
	if c.Cart.BreakerFailureThreshold < 1 {
		return fmt.Errorf("CART_BREAKER_FAILURE_THRESHOLD must be at least 1")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Transport {
	case "gochannel":
	case "nats":
		if c.Events.NATSURL == "" && !c.Events.NATSEmbedded {
			return fmt.Errorf("NATS_URL is required when EVENTS_TRANSPORT=nats")
		}
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be one of: gochannel, nats (got %q)", c.Events.Transport)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}
