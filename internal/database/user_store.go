// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/models"
)

const userColumns = `id, name, email, password_hash, role, created_at`

// CreateUser inserts u. Emails are stored lower-cased. Returns
// ErrEmailTaken when the address is already registered.
func (db *DB) CreateUser(ctx context.Context, u *models.User) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("create_user", "users", time.Since(start), err) }()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if !models.IsValidRole(u.Role) {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindUserByEmail returns the user or ErrNotFound.
func (db *DB) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.findUser(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// FindUserByID returns the user or ErrNotFound.
func (db *DB) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.findUser(ctx, "id", id)
}

func (db *DB) findUser(ctx context.Context, column, value string) (u *models.User, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("find_user_by_"+column, "users", time.Since(start), ignoreNotFound(err))
	}()

	var createdAt int64
	u = &models.User{}
	// column is one of two literals, never user input.
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value) //nolint:gosec
	err = row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}
