// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/models"
)

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()

	m, err := NewJWTManager(testSecurityConfig(config.GatePolicyFullApp))
	if err != nil {
		t.Fatal(err)
	}
	user := &models.User{ID: "u1", Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}

	token, expiresAt, err := m.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(expiresAt) < 23*time.Hour {
		t.Errorf("default expiry too short: %v", expiresAt)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	s := claims.Subject()
	if s.ID != "u1" || s.Role != models.RoleAdmin || s.Method != MethodJWT {
		t.Errorf("subject = %+v", s)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	t.Parallel()

	cfg := testSecurityConfig(config.GatePolicyFullApp)
	m, _ := NewJWTManager(cfg)
	user := testUser()

	other, _ := NewJWTManager(&config.SecurityConfig{JWTSecret: "a-completely-different-secret-value!!"})
	foreign, _, _ := other.GenerateToken(user)

	expiredMgr := &JWTManager{secret: []byte(cfg.JWTSecret), timeout: -time.Minute}
	expired, _, _ := expiredMgr.GenerateToken(user)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: tokenIssuer}})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"wrong secret": foreign,
		"expired":      expired,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
		"truncated":    strings.TrimSuffix(foreign, foreign[len(foreign)-4:]),
	}
	for name, token := range tests {
		if _, err := m.ValidateToken(token); err == nil {
			t.Errorf("%s: token accepted", name)
		}
	}
}
