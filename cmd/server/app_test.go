// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/storefront/internal/api"
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/database"
	"github.com/tomtom215/storefront/internal/eventprocessor"
	"github.com/tomtom215/storefront/internal/supervisor"
)

func testAppConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			Timeout:         5 * time.Second,
			ShutdownTimeout: time.Second,
			Environment:     "test",
		},
		Database: config.DatabaseConfig{
			Driver:         database.DriverSQLite,
			Path:           ":memory:",
			SeedSampleData: true,
		},
		Security: config.SecurityConfig{
			GatePolicy:           config.GatePolicyFullApp,
			AuthPaths:            []string{"/sign-in", "/sign-up"},
			SignInPath:           "/sign-in",
			HomePath:             "/",
			GateExcludedPrefixes: []string{"/api", "/static", "/metrics"},
			SessionTimeout:       time.Hour,
			SessionStore:         "memory",
			SessionCookieName:    "session",
			CartCookieName:       "sessionCartId",
			CartCookieMaxAge:     time.Hour,
			IssueCartSession:     true,
			RateLimitDisabled:    true,
		},
		Cache: config.CacheConfig{
			PageTTL:         time.Minute,
			CleanupInterval: time.Minute,
			ProductLRUSize:  16,
			ProductLRUTTL:   time.Second,
		},
		Events: config.EventsConfig{
			Transport:    eventprocessor.TransportGoChannel,
			Topic:        "test.page.invalidated",
			RetryCount:   1,
			CloseTimeout: time.Second,
		},
		Supervisor: config.SupervisorConfig{ShutdownTimeout: 2 * time.Second},
	}
}

func TestNewApp_EndToEndInvalidation(t *testing.T) {
	cfg := testAppConfig()
	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(app.Close)

	if cfg.Security.JWTSecret == "" {
		t.Error("dev secret not generated")
	}

	tree, err := supervisor.NewSupervisorTree(slog.New(slog.NewTextHandler(io.Discard, nil)), supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
		t.Fatal(err)
	}
	app.AddServices(tree)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)
	t.Cleanup(func() {
		cancel()
		<-done
	})

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 5 * time.Second}

	get := func(path string) (*http.Response, string) {
		t.Helper()
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp, string(body)
	}

	// First page view issues the cart cookie.
	if resp, _ := get("/"); resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / = %d", resp.StatusCode)
	}

	product, err := app.db.FindProductBySlug(context.Background(), "polo-sporting-stretch-shirt")
	if err != nil {
		t.Fatal(err)
	}
	payload, _ := json.Marshal(product.AsCartItem())
	path := "/product/" + product.Slug

	// The router may not have subscribed yet when the first event is
	// published, so each attempt re-warms the page and adds again.
	deadline := time.Now().Add(5 * time.Second)
	for {
		get(path)
		if resp, _ := get(path); resp.Header.Get(api.PageCacheHeader) != "HIT" {
			t.Fatalf("page not cached")
		}

		resp, err := client.Post(srv.URL+"/api/cart/items", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add = %d", resp.StatusCode)
		}

		evicted := false
		for wait := time.Now().Add(300 * time.Millisecond); time.Now().Before(wait); {
			if resp, _ := get(path); resp.Header.Get(api.PageCacheHeader) == "MISS" {
				evicted = true
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		if evicted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("page never evicted through the event bus")
		}
	}

	if _, body := get("/cart"); !strings.Contains(body, "Polo Sporting Stretch Shirt") {
		t.Error("cart page missing the added product")
	}
}

func TestNewApp_BadTransportCleansUp(t *testing.T) {
	cfg := testAppConfig()
	cfg.Events.Transport = "carrier-pigeon"

	app, err := NewApp(context.Background(), cfg)
	if err == nil {
		app.Close()
		t.Fatal("expected error")
	}
	if app != nil {
		t.Error("app returned on error")
	}
}

func TestEphemeralSecret(t *testing.T) {
	a, err := ephemeralSecret()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ephemeralSecret()
	if len(a) < 32 || a == b {
		t.Errorf("secrets %q %q", a, b)
	}
}

func TestDescribeTransport(t *testing.T) {
	tests := []struct {
		cfg  config.EventsConfig
		want string
	}{
		{config.EventsConfig{Transport: "gochannel"}, "gochannel"},
		{config.EventsConfig{Transport: "nats", NATSURL: "nats://x:4222"}, "nats"},
		{config.EventsConfig{Transport: "nats", NATSEmbedded: true, NATSHost: "127.0.0.1", NATSPort: 4222}, "nats (embedded 127.0.0.1:4222)"},
	}
	for _, tt := range tests {
		if got := describeTransport(&tt.cfg); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
