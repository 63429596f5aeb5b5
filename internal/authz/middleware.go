// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package authz

import (
	"net/http"

	"github.com/tomtom215/storefront/internal/auth"
	"github.com/tomtom215/storefront/internal/logging"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// AuthorizeRequest authorizes the request path with the action derived
// from the HTTP method. It must run after auth.Authenticator.Authenticate.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.check(w, r, r.URL.Path, methodToAction(r.Method), next)
	})
}

// Require authorizes a fixed object and action, for chi's With().
func (m *Middleware) Require(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.check(w, r, object, action, next)
		})
	}
}

func (m *Middleware) check(w http.ResponseWriter, r *http.Request, object, action string, next http.Handler) {
	subject := auth.GetSubject(r.Context())
	if subject == nil {
		http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
		return
	}

	allowed, err := m.enforcer.EnforceWithRoles(subject.ID, []string{subject.Role}, object, action)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !allowed {
		logging.Ctx(r.Context()).Warn().
			Str("user_id", subject.ID).
			Str("role", subject.Role).
			Str("object", object).
			Str("action", action).
			Msg("Authorization denied")
		http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	next.ServeHTTP(w, r)
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
