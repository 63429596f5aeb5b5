// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/storefront/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Driver:    "duckdb",
			Path:      "/data/storefront.duckdb",
			MaxMemory: "512MB",
		},
		Security: SecurityConfig{
			GatePolicy: GatePolicyFullApp,
			AuthPaths:  []string{"/sign-in", "/sign-up"},
			SignInPath: "/sign-in",
			HomePath:   "/",
			GateExcludedPrefixes: []string{
				"/api", "/_next/static", "/_next/image", "/static", "/metrics", "/swagger",
			},
			GateExcludedSuffixes: []string{".png"},

			SessionTimeout:    30 * 24 * time.Hour,
			SessionStore:      "memory",
			SessionStorePath:  "/data/sessions",
			SessionCookieName: "session",

			CartCookieName:   "sessionCartId",
			CartCookieMaxAge: 30 * 24 * time.Hour,
			IssueCartSession: true,

			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Cart: CartConfig{
			MaxUpdateAttempts:       3,
			StoreTimeout:            5 * time.Second,
			BreakerMaxRequests:      3,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Cache: CacheConfig{
			PageTTL:         5 * time.Minute,
			CleanupInterval: time.Minute,
			ProductLRUSize:  256,
			ProductLRUTTL:   30 * time.Second,
		},
		Events: EventsConfig{
			Transport:            "gochannel",
			Topic:                "storefront.page.invalidated",
			NATSURL:              "nats://127.0.0.1:4222",
			NATSHost:             "127.0.0.1",
			NATSPort:             4222,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration with precedence ENV > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.auth_paths",
	"security.gate_excluded_prefixes",
	"security.gate_excluded_suffixes",
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			continue
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	"db_driver":        "database.driver",
	"db_path":          "database.path",
	"db_max_memory":    "database.max_memory",
	"db_threads":       "database.threads",
	"seed_sample_data": "database.seed_sample_data",

	"auth_gate_policy":       "security.gate_policy",
	"auth_paths":             "security.auth_paths",
	"sign_in_path":           "security.sign_in_path",
	"home_path":              "security.home_path",
	"gate_excluded_prefixes": "security.gate_excluded_prefixes",
	"gate_excluded_suffixes": "security.gate_excluded_suffixes",
	"jwt_secret":             "security.jwt_secret",
	"session_timeout":        "security.session_timeout",
	"session_store":          "security.session_store",
	"session_store_path":     "security.session_store_path",
	"session_cookie_name":    "security.session_cookie_name",
	"cart_cookie_name":       "security.cart_cookie_name",
	"cart_cookie_max_age":    "security.cart_cookie_max_age",
	"issue_cart_session":     "security.issue_cart_session",
	"cookie_secure":          "security.cookie_secure",
	"rate_limit_requests":    "security.rate_limit_reqs",
	"rate_limit_window":      "security.rate_limit_window",
	"disable_rate_limit":     "security.rate_limit_disabled",
	"cors_origins":           "security.cors_origins",

	"cart_max_update_attempts":       "cart.max_update_attempts",
	"cart_store_timeout":             "cart.store_timeout",
	"cart_breaker_max_requests":      "cart.breaker_max_requests",
	"cart_breaker_interval":          "cart.breaker_interval",
	"cart_breaker_timeout":           "cart.breaker_timeout",
	"cart_breaker_failure_threshold": "cart.breaker_failure_threshold",

	"page_cache_ttl":         "cache.page_ttl",
	"cache_cleanup_interval": "cache.cleanup_interval",
	"product_cache_size":     "cache.product_lru_size",
	"product_cache_ttl":      "cache.product_lru_ttl",

	"events_transport":      "events.transport",
	"events_topic":          "events.topic",
	"nats_url":              "events.nats_url",
	"nats_embedded":         "events.nats_embedded",
	"nats_host":             "events.nats_host",
	"nats_port":             "events.nats_port",
	"events_retry_count":    "events.retry_count",
	"events_retry_interval": "events.retry_initial_interval",
	"events_close_timeout":  "events.close_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps HTTP_PORT to server.port and so on.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
