// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package auth

import (
	"context"
	"errors"
)

// Method records how a request was authenticated.
type Method string

const (
	MethodSession Method = "session"
	MethodJWT     Method = "jwt"
)

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Subject is the authenticated identity attached to a request.
type Subject struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	Method    Method `json:"method"`
	SessionID string `json:"-"`
}

// HasRole checks if the subject has role.
func (s *Subject) HasRole(role string) bool {
	return s != nil && role != "" && s.Role == role
}

type contextKey string

const (
	subjectContextKey     contextKey = "auth_subject"
	cartSessionContextKey contextKey = "cart_session_id"
)

// ContextWithSubject returns a copy of ctx carrying subject.
func ContextWithSubject(ctx context.Context, subject *Subject) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// GetSubject returns the request's subject, or nil when anonymous.
func GetSubject(ctx context.Context) *Subject {
	subject, ok := ctx.Value(subjectContextKey).(*Subject)
	if !ok {
		return nil
	}
	return subject
}

// ContextWithCartSession returns a copy of ctx carrying the sessionCartId.
func ContextWithCartSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cartSessionContextKey, id)
}

// CartSessionFromContext returns the sessionCartId or "".
func CartSessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(cartSessionContextKey).(string)
	return id
}
