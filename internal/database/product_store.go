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

	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/models"
)

const productColumns = `id, name, slug, category, brand, description, images, price, stock, rating, num_reviews, is_featured, banner, created_at`

// FindProductByID returns the product or ErrNotFound.
func (db *DB) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	return db.findProduct(ctx, "id", id)
}

// FindProductBySlug returns the product or ErrNotFound.
func (db *DB) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return db.findProduct(ctx, "slug", slug)
}

func (db *DB) findProduct(ctx context.Context, column, value string) (p *models.Product, err error) {
	key := column + ":" + value
	if db.products != nil {
		if cached, ok := db.products.Get(key); ok {
			return copyProduct(cached), nil
		}
	}
	gen := db.productGeneration()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("find_product_by_"+column, "products", time.Since(start), ignoreNotFound(err))
	}()

	// column is one of two literals chosen above, never user input.
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE `+column+` = ? LIMIT 1`, value) //nolint:gosec
	p, err = scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}

	db.cacheProduct(p, gen)
	return p, nil
}

func (db *DB) productGeneration() uint64 {
	db.productMu.Lock()
	defer db.productMu.Unlock()
	return db.productGen
}

// cacheProduct stores p unless the cache was purged after gen was read.
func (db *DB) cacheProduct(p *models.Product, gen uint64) {
	if db.products == nil {
		return
	}
	db.productMu.Lock()
	defer db.productMu.Unlock()
	if gen != db.productGen {
		return
	}
	db.products.Add("id:"+p.ID, copyProduct(p))
	db.products.Add("slug:"+p.Slug, copyProduct(p))
}

// purgeProducts empties the cache and retires lookups already in flight.
func (db *DB) purgeProducts() {
	if db.products == nil {
		return
	}
	db.productMu.Lock()
	defer db.productMu.Unlock()
	db.productGen++
	db.products.Purge()
}

// ListLatestProducts returns up to limit products, newest first.
func (db *DB) ListLatestProducts(ctx context.Context, limit int) (out []*models.Product, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_products", "products", time.Since(start), err) }()

	if limit <= 0 {
		limit = 4
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out = make([]*models.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateProduct inserts p, assigning an ID and CreatedAt when unset.
func (db *DB) CreateProduct(ctx context.Context, p *models.Product) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("create_product", "products", time.Since(start), err) }()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	encoded, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, p.Category, p.Brand, p.Description, string(encoded),
		p.Price.Cents(), p.Stock, p.Rating, p.NumReviews, p.IsFeatured, p.Banner, p.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// UpdateStock sets the on-hand quantity of a product and returns the
// updated record. The product cache is purged so the next lookup sees it.
func (db *DB) UpdateStock(ctx context.Context, id string, stock int) (p *models.Product, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("update_stock", "products", time.Since(start), ignoreNotFound(err)) }()

	if stock < 0 {
		return nil, fmt.Errorf("stock must be non-negative, got %d", stock)
	}

	res, err := db.conn.ExecContext(ctx, `UPDATE products SET stock = ? WHERE id = ?`, stock, id)
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	db.purgeProducts()
	return db.FindProductByID(ctx, id)
}

// CountProducts returns the catalogue size.
func (db *DB) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p         models.Product
		images    string
		price     int64
		createdAt int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Category, &p.Brand, &p.Description, &images,
		&price, &p.Stock, &p.Rating, &p.NumReviews, &p.IsFeatured, &p.Banner, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return nil, fmt.Errorf("decode product images: %w", err)
	}
	p.Price = models.Cents(price)
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}

func copyProduct(p *models.Product) *models.Product {
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	return &cp
}
