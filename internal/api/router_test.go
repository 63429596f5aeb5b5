// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"net/http"
	"strings"
	"testing"

	_ "github.com/tomtom215/storefront/docs"
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/middleware"
)

func TestGate_FullApp(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)

	for _, path := range []string{"/", "/cart", "/sign-in", "/sign-up"} {
		if resp, _ := env.do(t, http.MethodGet, path, nil); resp.StatusCode != http.StatusOK {
			t.Errorf("anonymous %s = %d", path, resp.StatusCode)
		}
	}

	env.signIn(t, userEmail)

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/sign-in", http.StatusFound, "/"},
		{"/sign-up", http.StatusFound, "/"},
		{"/sign-in/callback", http.StatusFound, "/"},
		{"/cart", http.StatusOK, ""},
		{"/", http.StatusOK, ""},
	}
	for _, tt := range tests {
		resp, _ := env.do(t, http.MethodGet, tt.path, nil)
		if resp.StatusCode != tt.status || resp.Header.Get("Location") != tt.location {
			t.Errorf("signed-in %s = %d %q, want %d %q", tt.path, resp.StatusCode, resp.Header.Get("Location"), tt.status, tt.location)
		}
	}
}

func TestGate_MiddlewareOnly(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyMiddlewareOnly)

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/cart", http.StatusFound, "/sign-in?callbackUrl=%2Fcart"},
		{"/product/" + poloSlug + "?ref=home", http.StatusFound, "/sign-in?callbackUrl=%2Fproduct%2F" + poloSlug + "%3Fref%3Dhome"},
		{"/sign-in", http.StatusOK, ""},
		{"/sign-up", http.StatusOK, ""},
		// Excluded from the matcher.
		{"/api/products", http.StatusOK, ""},
		{"/static/logo.png", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		resp, _ := env.do(t, http.MethodGet, tt.path, nil)
		if resp.StatusCode != tt.status || resp.Header.Get("Location") != tt.location {
			t.Errorf("anonymous %s = %d %q, want %d %q", tt.path, resp.StatusCode, resp.Header.Get("Location"), tt.status, tt.location)
		}
	}

	env.signIn(t, userEmail)
	if resp, _ := env.do(t, http.MethodGet, "/cart", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("signed-in /cart = %d", resp.StatusCode)
	}
}

func TestCartSessionCookie_IssuedOnPagesOnly(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)

	env.do(t, http.MethodGet, "/api/products", nil)
	if env.cookie(cartCookie) != "" {
		t.Fatal("cookie issued on an API request")
	}

	env.startCartSession(t)
	first := env.cookie(cartCookie)
	env.do(t, http.MethodGet, "/cart", nil)
	if env.cookie(cartCookie) != first {
		t.Error("cookie reissued")
	}
}

func TestProductPage_CachedAndInvalidated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)
	env.startCartSession(t)
	path := "/product/" + poloSlug

	cacheStatus := func() (string, string) {
		t.Helper()
		resp, body := env.do(t, http.MethodGet, path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		return resp.Header.Get(PageCacheHeader), string(body)
	}

	if got, _ := cacheStatus(); got != "MISS" {
		t.Errorf("first = %s", got)
	}
	got, body := cacheStatus()
	if got != "HIT" {
		t.Errorf("second = %s", got)
	}
	if !strings.Contains(body, "Polo Sporting Stretch Shirt") || !strings.Contains(body, "59.99") {
		t.Error("product not rendered")
	}

	// A cart mutation evicts the product page.
	env.do(t, http.MethodPost, "/api/cart/items", env.product(t, poloSlug).AsCartItem())
	got, body = cacheStatus()
	if got != "MISS" {
		t.Errorf("after add = %s", got)
	}
	// The badge is per visitor even though the fragment is shared.
	if !strings.Contains(body, "Cart (1)") {
		t.Error("cart badge missing on cached page")
	}
}

func TestProductPage_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)
	resp, body := env.do(t, http.MethodGet, "/product/no-such-thing", nil)
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), "Product not found") {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if env.pages.Len() != 0 {
		t.Error("missing product cached")
	}
}

func TestNotFound_APIAndPages(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)

	resp, body := env.do(t, http.MethodGet, "/api/nope", nil)
	var apiResp APIResponse
	decode(t, body, &apiResp)
	if resp.StatusCode != http.StatusNotFound || apiResp.Error == nil || apiResp.Error.Code != ErrCodeNotFound {
		t.Errorf("api 404 = %d %s", resp.StatusCode, body)
	}

	resp, _ = env.do(t, http.MethodGet, "/nope", nil)
	if resp.StatusCode != http.StatusNotFound || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("page 404 = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)
	resp, _ := env.do(t, http.MethodGet, "/api/health", nil)
	if resp.Header.Get(middleware.RequestIDHeader) == "" {
		t.Error("no request id")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyFullApp)
	env.do(t, http.MethodGet, "/api/health", nil)

	resp, body := env.do(t, http.MethodGet, "/metrics", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "api_requests_total") {
		t.Errorf("metrics = %d", resp.StatusCode)
	}
}

func TestLayout_AdminLinkOnlyForAdmins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{adminEmail, true},
		{userEmail, false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, config.GatePolicyFullApp)
			env.signIn(t, tt.email)

			resp, body := env.do(t, http.MethodGet, "/", nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("GET / = %d", resp.StatusCode)
			}
			if got := strings.Contains(string(body), `id="admin-link"`); got != tt.want {
				t.Errorf("admin link shown = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSwagger_ServesAPIDocs(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.GatePolicyMiddlewareOnly)

	resp, body := env.do(t, http.MethodGet, "/swagger/doc.json", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("doc.json = %d", resp.StatusCode)
	}
	for _, want := range []string{`"/cart/items"`, `"/auth/sign-in"`, `"Storefront API"`, `"models.CartItem"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("doc.json missing %s", want)
		}
	}

	resp, body = env.do(t, http.MethodGet, "/swagger/index.html", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "swagger-ui") {
		t.Errorf("index.html = %d", resp.StatusCode)
	}
}
