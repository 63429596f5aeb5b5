// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/models"
)

// Authenticator resolves the request subject from the session cookie or a
// bearer token and manages the session cookie lifecycle.
type Authenticator struct {
	sessions     SessionStore
	jwt          *JWTManager
	cookieName   string
	cookieSecure bool
	ttl          time.Duration
}

// NewAuthenticator creates the authentication middleware. jwt may be nil,
// in which case bearer tokens are ignored.
func NewAuthenticator(sessions SessionStore, jwt *JWTManager, cfg *config.SecurityConfig) *Authenticator {
	ttl := cfg.SessionTimeout
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	name := cfg.SessionCookieName
	if name == "" {
		name = "session"
	}
	return &Authenticator{
		sessions:     sessions,
		jwt:          jwt,
		cookieName:   name,
		cookieSecure: cfg.CookieSecure,
		ttl:          ttl,
	}
}

// Authenticate attaches the Subject to the request context when a valid
// session cookie or bearer token is present. Anonymous requests pass
// through untouched.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subject := a.fromSession(r); subject != nil {
			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
			return
		}
		if subject := a.fromBearer(r); subject != nil {
			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) fromSession(r *http.Request) *Subject {
	cookie, err := r.Cookie(a.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	session, err := a.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Session lookup error")
		}
		return nil
	}

	// Sliding expiry.
	if err := a.sessions.Touch(r.Context(), session.ID, time.Now().Add(a.ttl)); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to touch session")
	}
	return session.Subject()
}

func (a *Authenticator) fromBearer(r *http.Request) *Subject {
	if a.jwt == nil {
		return nil
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil
	}
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected bearer token")
		return nil
	}
	return claims.Subject()
}

// RequireAuth rejects anonymous requests with 401.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSubject(r.Context()) == nil {
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartSession creates a session for user and sets the cookie. Any session
// the request already carried is deleted first so a fixed session id never
// becomes authenticated.
func (a *Authenticator) StartSession(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) (*Session, error) {
	if old, err := r.Cookie(a.cookieName); err == nil && old.Value != "" {
		_ = a.sessions.Delete(ctx, old.Value)
	}

	session := NewSession(user, a.ttl)
	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		Secure:   a.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}

// EndSession deletes the request's session and clears the cookie.
func (a *Authenticator) EndSession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		if err := a.sessions.Delete(ctx, cookie.Value); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   a.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
