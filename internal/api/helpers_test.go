// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/storefront/internal/audit"
	"github.com/tomtom215/storefront/internal/auth"
	"github.com/tomtom215/storefront/internal/authz"
	"github.com/tomtom215/storefront/internal/cache"
	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/database"
	"github.com/tomtom215/storefront/internal/middleware"
	"github.com/tomtom215/storefront/internal/models"
)

const (
	adminEmail    = "admin@example.com"
	userEmail     = "user@example.com"
	seedPassword  = "123456"
	poloSlug      = "polo-sporting-stretch-shirt"
	soldOutSlug   = "tommy-hilfiger-classic-fit-dress-shirt"
	cartCookie    = "sessionCartId"
	sessionCookie = "session"
)

func testConfig(policy string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Security: config.SecurityConfig{
			GatePolicy:           policy,
			AuthPaths:            []string{"/sign-in", "/sign-up"},
			SignInPath:           "/sign-in",
			HomePath:             "/",
			GateExcludedPrefixes: []string{"/api", "/static", "/metrics", "/swagger"},
			GateExcludedSuffixes: []string{".png"},
			JWTSecret:            "test-secret-that-is-long-enough-for-hs256",
			SessionTimeout:       time.Hour,
			SessionCookieName:    sessionCookie,
			CartCookieName:       cartCookie,
			CartCookieMaxAge:     time.Hour,
			IssueCartSession:     true,
			RateLimitDisabled:    true,
		},
	}
}

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
	db     *database.DB
	pages  *cache.Cache
	audit  *audit.MemoryStore
}

// newTestEnv serves the full router over a seeded in-memory SQLite store.
func newTestEnv(t *testing.T, policy string) *testEnv {
	t.Helper()

	cfg := testConfig(policy)
	db, err := database.New(&config.DatabaseConfig{Driver: database.DriverSQLite, Path: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.SeedSampleData(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pages := cache.New(time.Minute)
	svc, err := cart.NewService(cart.Deps{
		Carts:    db,
		Products: db,
		Sessions: auth.RequestSession{},
		Claimer:  db,
		Invalidator: invalidatorFunc(func(_ context.Context, path string) {
			pages.Invalidate(path)
		}),
	}, cart.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	jwt, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	gate, err := auth.NewGate(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(enforcer.Close)

	auditStore := audit.NewMemoryStore(100)
	auditor := audit.NewLogger(auditStore, nil)
	t.Cleanup(func() { _ = auditor.Close() })

	router, err := NewRouter(Deps{
		Config:        cfg,
		Catalog:       db,
		DB:            db,
		Cart:          svc,
		Accounts:      auth.NewAccounts(db),
		Authenticator: auth.NewAuthenticator(auth.NewMemorySessionStore(), jwt, &cfg.Security),
		JWT:           jwt,
		Gate:          gate,
		CartSessions:  auth.NewCartSessionIssuer(&cfg.Security, gate.Matcher()),
		Authz:         authz.NewMiddleware(enforcer),
		Pages:         pages,
		Perf:          middleware.NewPerformanceMonitor(100, time.Second),
		Audit:         auditor,
	})
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{srv: srv, client: client, db: db, pages: pages, audit: auditStore}
}

type invalidatorFunc func(ctx context.Context, path string)

func (f invalidatorFunc) Invalidate(ctx context.Context, path string) { f(ctx, path) }

// do sends a request and returns the status and body.
func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	if err != nil {
		t.Fatal(err)
	}
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, out
}

// startCartSession loads the home page so the jar holds a sessionCartId.
func (e *testEnv) startCartSession(t *testing.T) {
	t.Helper()
	resp, _ := e.do(t, http.MethodGet, "/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / = %d", resp.StatusCode)
	}
	if e.cookie(cartCookie) == "" {
		t.Fatal("no sessionCartId issued")
	}
}

func (e *testEnv) cookie(name string) string {
	u, _ := http.NewRequest(http.MethodGet, e.srv.URL, nil)
	for _, c := range e.client.Jar.Cookies(u.URL) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (e *testEnv) product(t *testing.T, slug string) *models.Product {
	t.Helper()
	p, err := e.db.FindProductBySlug(context.Background(), slug)
	if err != nil {
		t.Fatalf("product %s: %v", slug, err)
	}
	return p
}

func (e *testEnv) signIn(t *testing.T, email string) models.SignInResponse {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/auth/sign-in", models.SignInRequest{Email: email, Password: seedPassword})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign-in = %d: %s", resp.StatusCode, body)
	}
	var env struct {
		Data models.SignInResponse `json:"data"`
	}
	decode(t, body, &env)
	return env.Data
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

// cartResult mirrors cart.Result for decoding.
type cartResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Code    string       `json:"code"`
	Cart    *models.Cart `json:"data"`
}
