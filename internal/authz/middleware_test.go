// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/storefront/internal/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestAs(method, path string, subject *auth.Subject) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if subject != nil {
		req = req.WithContext(auth.ContextWithSubject(req.Context(), subject))
	}
	return req
}

func TestAuthorizeRequest(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(setupEnforcer(t))
	h := mw.AuthorizeRequest(okHandler)

	admin := &auth.Subject{ID: "a1", Role: "admin"}
	user := &auth.Subject{ID: "u1", Role: "user"}

	tests := []struct {
		name    string
		method  string
		path    string
		subject *auth.Subject
		want    int
	}{
		{"admin stock update", http.MethodPut, "/api/admin/products/p1/stock", admin, http.StatusOK},
		{"admin read", http.MethodGet, "/api/admin/products", admin, http.StatusOK},
		{"user stock update", http.MethodPut, "/api/admin/products/p1/stock", user, http.StatusForbidden},
		{"anonymous", http.MethodPut, "/api/admin/products/p1/stock", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestAs(tt.method, tt.path, tt.subject))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(setupEnforcer(t))
	h := mw.Require("/api/admin/products", "write")(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(http.MethodGet, "/anything", &auth.Subject{ID: "a1", Role: "admin"}))
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestAs(http.MethodGet, "/anything", &auth.Subject{ID: "u1", Role: "user"}))
	if rec.Code != http.StatusForbidden {
		t.Errorf("user status = %d", rec.Code)
	}
}

func TestMethodToAction(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		http.MethodGet:     "read",
		http.MethodHead:    "read",
		http.MethodOptions: "read",
		http.MethodPost:    "write",
		http.MethodPut:     "write",
		http.MethodPatch:   "write",
		http.MethodDelete:  "delete",
	}
	for method, want := range tests {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%s) = %q, want %q", method, got, want)
		}
	}
}
