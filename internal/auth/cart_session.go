// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/metrics"
)

// CartSessionIssuer reads the sessionCartId cookie into the request context
// and issues a fresh one to page requests that lack it.
type CartSessionIssuer struct {
	name    string
	maxAge  time.Duration
	secure  bool
	issue   bool
	matcher *Matcher
}

// NewCartSessionIssuer creates the cart cookie middleware. Only requests
// selected by matcher (pages) receive a new cookie.
func NewCartSessionIssuer(cfg *config.SecurityConfig, matcher *Matcher) *CartSessionIssuer {
	name := cfg.CartCookieName
	if name == "" {
		name = "sessionCartId"
	}
	maxAge := cfg.CartCookieMaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	return &CartSessionIssuer{
		name:    name,
		maxAge:  maxAge,
		secure:  cfg.CookieSecure,
		issue:   cfg.IssueCartSession,
		matcher: matcher,
	}
}

// Middleware implements the issuer. Cookie values that are not UUIDs are
// ignored.
func (c *CartSessionIssuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(c.name); err == nil {
			if _, perr := uuid.Parse(cookie.Value); perr == nil {
				id = cookie.Value
			}
		}

		if id == "" && c.issue && isPageRequest(r) && c.matcher.Matches(r.URL.Path) {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     c.name,
				Value:    id,
				Path:     "/",
				MaxAge:   int(c.maxAge.Seconds()),
				Secure:   c.secure,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			metrics.SessionCartsIssued.Inc()
		}

		if id != "" {
			r = r.WithContext(ContextWithCartSession(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func isPageRequest(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

// RequestSession exposes request-scoped identity to the cart service.
type RequestSession struct{}

// SessionCartID returns the sessionCartId placed in ctx by
// CartSessionIssuer, or "".
func (RequestSession) SessionCartID(ctx context.Context) string {
	return CartSessionFromContext(ctx)
}

// UserID returns the signed-in user's id, or "".
func (RequestSession) UserID(ctx context.Context) string {
	if s := GetSubject(ctx); s != nil {
		return s.ID
	}
	return ""
}
