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
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/storefront/internal/cart"
	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/models"
)

const cartColumns = `id, session_cart_id, user_id, items, items_price, shipping_price, tax_price, total_price, version, created_at, updated_at`

// FetchCart returns the oldest cart matching id. A user id, when present,
// takes precedence over the session id.
func (db *DB) FetchCart(ctx context.Context, id models.CartIdentity) (c *models.Cart, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("fetch_cart", "carts", time.Since(start), ignoreNotFound(err)) }()

	var row *sql.Row
	switch {
	case id.UserID != "":
		row = db.conn.QueryRowContext(ctx,
			`SELECT `+cartColumns+` FROM carts WHERE user_id = ? ORDER BY created_at, id LIMIT 1`, id.UserID)
	case id.SessionCartID != "":
		row = db.conn.QueryRowContext(ctx,
			`SELECT `+cartColumns+` FROM carts WHERE session_cart_id = ? ORDER BY created_at, id LIMIT 1`, id.SessionCartID)
	default:
		return nil, cart.ErrNotFound
	}

	c, err = scanCart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, cart.PersistenceError("fetch cart", err)
	}
	return c, nil
}

// CreateCart inserts c with version 1 and fresh timestamps.
func (db *DB) CreateCart(ctx context.Context, c *models.Cart) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("create_cart", "carts", time.Since(start), err) }()

	items, err := encodeItems(c.Items)
	if err != nil {
		return cart.PersistenceError("create cart", err)
	}

	now := nowMillis()
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO carts (`+cartColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, c.SessionCartID, c.UserID, items,
		c.ItemsPrice.Cents(), c.ShippingPrice.Cents(), c.TaxPrice.Cents(), c.TotalPrice.Cents(),
		now, now)
	if err != nil {
		return cart.PersistenceError("create cart", err)
	}

	c.ID = id
	c.Version = 1
	c.CreatedAt = fromMillis(now)
	c.UpdatedAt = c.CreatedAt
	return nil
}

// UpdateCart writes items and prices when the stored version still equals
// c.Version, then bumps it.
func (db *DB) UpdateCart(ctx context.Context, c *models.Cart) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("update_cart", "carts", time.Since(start), ignoreConflict(err))
	}()

	items, err := encodeItems(c.Items)
	if err != nil {
		return cart.PersistenceError("update cart", err)
	}

	now := nowMillis()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE carts
		 SET items = ?, items_price = ?, shipping_price = ?, tax_price = ?, total_price = ?,
		     version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		items, c.ItemsPrice.Cents(), c.ShippingPrice.Cents(), c.TaxPrice.Cents(), c.TotalPrice.Cents(),
		now, c.ID, c.Version)
	if err != nil {
		if isTransactionConflict(err) {
			return cart.ErrVersionConflict
		}
		return cart.PersistenceError("update cart", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return cart.PersistenceError("update cart", err)
	}
	if n == 0 {
		return db.missingOrConflict(ctx, c.ID)
	}

	c.Version++
	c.UpdatedAt = fromMillis(now)
	return nil
}

// missingOrConflict explains a zero-row update.
func (db *DB) missingOrConflict(ctx context.Context, id string) error {
	var one int
	err := db.conn.QueryRowContext(ctx, `SELECT 1 FROM carts WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return cart.ErrNotFound
	}
	if err != nil {
		return cart.PersistenceError("update cart", err)
	}
	return cart.ErrVersionConflict
}

// ClaimSessionCart assigns the anonymous cart for sessionCartID to userID
// and removes any other cart the user owned, in one transaction.
func (db *DB) ClaimSessionCart(ctx context.Context, sessionCartID, userID string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("claim_cart", "carts", time.Since(start), ignoreNotFound(err)) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return cart.PersistenceError("claim cart", err)
	}

	var cartID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE session_cart_id = ? AND user_id = '' ORDER BY created_at, id LIMIT 1`,
		sessionCartID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		rollbackQuietly(tx)
		return cart.ErrNotFound
	}
	if err != nil {
		rollbackQuietly(tx)
		return cart.PersistenceError("claim cart", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM carts WHERE user_id = ? AND id <> ?`, userID, cartID); err != nil {
		rollbackQuietly(tx)
		return cart.PersistenceError("claim cart", err)
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE carts SET user_id = ?, version = version + 1, updated_at = ? WHERE id = ?`,
		userID, nowMillis(), cartID); err != nil {
		rollbackQuietly(tx)
		if isTransactionConflict(err) {
			return cart.ErrVersionConflict
		}
		return cart.PersistenceError("claim cart", err)
	}

	if err = tx.Commit(); err != nil {
		if isTransactionConflict(err) {
			return cart.ErrVersionConflict
		}
		return cart.PersistenceError("claim cart", err)
	}
	return nil
}

// CountCarts returns the number of stored carts.
func (db *DB) CountCarts(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM carts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count carts: %w", err)
	}
	return n, nil
}

func scanCart(row *sql.Row) (*models.Cart, error) {
	var (
		c                           models.Cart
		items                       string
		itemsP, shipP, taxP, totalP int64
		createdAt, updatedAt        int64
	)
	if err := row.Scan(&c.ID, &c.SessionCartID, &c.UserID, &items,
		&itemsP, &shipP, &taxP, &totalP, &c.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &c.Items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	c.ItemsPrice = models.Cents(itemsP)
	c.ShippingPrice = models.Cents(shipP)
	c.TaxPrice = models.Cents(taxP)
	c.TotalPrice = models.Cents(totalP)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

func encodeItems(items []models.CartItem) (string, error) {
	if items == nil {
		items = []models.CartItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart items: %w", err)
	}
	return string(b), nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, cart.ErrNotFound) {
		return nil
	}
	return err
}

func ignoreConflict(err error) error {
	if errors.Is(err, cart.ErrVersionConflict) || errors.Is(err, cart.ErrNotFound) {
		return nil
	}
	return err
}
