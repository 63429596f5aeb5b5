// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package config loads Storefront configuration.

Configuration is layered with koanf: built-in defaults, then an optional
YAML file (CONFIG_PATH, ./config.yaml, /etc/storefront/config.yaml), then
environment variables. A .env file in the working directory is loaded into
the environment first when present.

Key environment variables:

  - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT
  - DB_DRIVER (duckdb|sqlite), DB_PATH, SEED_SAMPLE_DATA
  - AUTH_GATE_POLICY (full-app|middleware-only), SIGN_IN_PATH
  - JWT_SECRET, SESSION_TIMEOUT, SESSION_STORE (memory|badger)
  - CART_MAX_UPDATE_ATTEMPTS, CART_STORE_TIMEOUT
  - EVENTS_TRANSPORT (gochannel|nats), NATS_URL, NATS_EMBEDDED
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
*/
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// Auth gate policy names.
const (
	GatePolicyFullApp        = "full-app"
	GatePolicyMiddlewareOnly = "middleware-only"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Security   SecurityConfig   `koanf:"security"`
	Cart       CartConfig       `koanf:"cart"`
	Cache      CacheConfig      `koanf:"cache"`
	Events     EventsConfig     `koanf:"events"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// IsProduction reports whether ENVIRONMENT=production.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig selects and tunes the SQL store.
type DatabaseConfig struct {
	Driver         string `koanf:"driver"`
	Path           string `koanf:"path"`
	MaxMemory      string `koanf:"max_memory"`
	Threads        int    `koanf:"threads"`
	SeedSampleData bool   `koanf:"seed_sample_data"`
}

// SecurityConfig holds authentication, gating and HTTP hardening settings.
type SecurityConfig struct {
	// GatePolicy selects the page gate: full-app or middleware-only.
	GatePolicy string `koanf:"gate_policy"`

	// AuthPaths are the path prefixes a signed-in visitor is bounced away from.
	AuthPaths  []string `koanf:"auth_paths"`
	SignInPath string   `koanf:"sign_in_path"`
	HomePath   string   `koanf:"home_path"`

	// GateExcludedPrefixes and GateExcludedSuffixes select paths the gate skips.
	GateExcludedPrefixes []string `koanf:"gate_excluded_prefixes"`
	GateExcludedSuffixes []string `koanf:"gate_excluded_suffixes"`

	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	SessionStore      string `koanf:"session_store"`
	SessionStorePath  string `koanf:"session_store_path"`
	SessionCookieName string `koanf:"session_cookie_name"`

	CartCookieName   string        `koanf:"cart_cookie_name"`
	CartCookieMaxAge time.Duration `koanf:"cart_cookie_max_age"`
	IssueCartSession bool          `koanf:"issue_cart_session"`
	CookieSecure     bool          `koanf:"cookie_secure"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// CartConfig tunes the cart mutation service.
type CartConfig struct {
	MaxUpdateAttempts int           `koanf:"max_update_attempts"`
	StoreTimeout      time.Duration `koanf:"store_timeout"`

	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// CacheConfig tunes the rendered page cache and product lookup cache.
type CacheConfig struct {
	PageTTL         time.Duration `koanf:"page_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	ProductLRUSize  int           `koanf:"product_lru_size"`
	ProductLRUTTL   time.Duration `koanf:"product_lru_ttl"`
}

// EventsConfig selects the page invalidation transport.
type EventsConfig struct {
	// Transport is gochannel (in-process) or nats.
	Transport string `koanf:"transport"`
	Topic     string `koanf:"topic"`

	NATSURL      string `koanf:"nats_url"`
	NATSEmbedded bool   `koanf:"nats_embedded"`
	NATSHost     string `koanf:"nats_host"`
	NATSPort     int    `koanf:"nats_port"`

	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig tunes the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads .env (if any) and then the layered koanf configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return LoadWithKoanf()
}
