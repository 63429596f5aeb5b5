// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/models"
	"github.com/tomtom215/storefront/internal/validation"
)

// UserStore persists accounts. Implemented by internal/database.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// dummyHash is compared against when the email is unknown so a miss costs
// the same as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("storefront-timing-guard"), bcrypt.DefaultCost)
	return h
})

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Accounts implements credential sign-up and sign-in.
type Accounts struct {
	users UserStore
}

// NewAccounts creates the credential service.
func NewAccounts(users UserStore) *Accounts {
	return &Accounts{users: users}
}

// SignUp validates req, hashes the password and creates a user-role
// account. Store errors (such as a duplicate email) are returned wrapped.
func (a *Accounts) SignUp(ctx context.Context, req *models.SignUpRequest) (u *models.User, err error) {
	defer func() { metrics.RecordAuthAttempt("sign_up", err == nil) }()

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u = &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := a.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return u, nil
}

// SignIn checks the email and password. Every mismatch, unknown email
// included, returns ErrInvalidCredentials.
func (a *Accounts) SignIn(ctx context.Context, req *models.SignInRequest) (u *models.User, err error) {
	defer func() { metrics.RecordAuthAttempt("sign_in", err == nil) }()

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	u, err = a.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
