// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/models"
)

// SampleProducts is the demo catalogue inserted by SeedSampleData.
func SampleProducts() []models.Product {
	img := func(slug string) []string {
		return []string{"/images/sample-products/" + slug + "-1.jpg", "/images/sample-products/" + slug + "-2.jpg"}
	}
	return []models.Product{
		{Name: "Polo Sporting Stretch Shirt", Slug: "polo-sporting-stretch-shirt", Category: "Men's Dress Shirts", Brand: "Polo",
			Description: "Classic Polo style with modern comfort", Images: img("p1"), Price: models.MustParseMoney("59.99"),
			Rating: 4.5, NumReviews: 10, Stock: 5, IsFeatured: true, Banner: "banner-1.jpg"},
		{Name: "Brooks Brothers Long Sleeved Shirt", Slug: "brooks-brothers-long-sleeved-shirt", Category: "Men's Dress Shirts", Brand: "Brooks Brothers",
			Description: "Timeless style and premium comfort", Images: img("p2"), Price: models.MustParseMoney("85.90"),
			Rating: 4.2, NumReviews: 8, Stock: 10, IsFeatured: true, Banner: "banner-2.jpg"},
		{Name: "Tommy Hilfiger Classic Fit Dress Shirt", Slug: "tommy-hilfiger-classic-fit-dress-shirt", Category: "Men's Dress Shirts", Brand: "Tommy Hilfiger",
			Description: "A perfect blend of sophistication and comfort", Images: img("p3"), Price: models.MustParseMoney("99.95"),
			Rating: 4.9, NumReviews: 3, Stock: 0},
		{Name: "Calvin Klein Slim Fit Stretch Shirt", Slug: "calvin-klein-slim-fit-stretch-shirt", Category: "Men's Dress Shirts", Brand: "Calvin Klein",
			Description: "Streamlined design with flexible stretch fabric", Images: img("p4"), Price: models.MustParseMoney("39.95"),
			Rating: 3.6, NumReviews: 5, Stock: 10},
		{Name: "Polo Ralph Lauren Oxford Shirt", Slug: "polo-ralph-lauren-oxford-shirt", Category: "Men's Dress Shirts", Brand: "Polo",
			Description: "Iconic Polo design with refined oxford fabric", Images: img("p5"), Price: models.MustParseMoney("79.99"),
			Rating: 4.7, NumReviews: 18, Stock: 6},
		{Name: "Polo Classic Pink Hoodie", Slug: "polo-classic-pink-hoodie", Category: "Men's Sweatshirts", Brand: "Polo",
			Description: "Soft, stylish, and perfect for laid-back days", Images: img("p6"), Price: models.MustParseMoney("99.99"),
			Rating: 4.6, NumReviews: 12, Stock: 8},
	}
}

// sampleUsers are demo accounts. Password for both is "123456".
var sampleUsers = []models.User{
	{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin},
	{Name: "Jane", Email: "user@example.com", Role: models.RoleUser},
}

const samplePassword = "123456"

// SeedSampleData inserts the demo catalogue and accounts when the products
// table is empty. It is a no-op on a populated database.
func (db *DB) SeedSampleData(ctx context.Context) error {
	n, err := db.CountProducts(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Debug().Int("products", n).Msg("Catalogue present, skipping sample data")
		return nil
	}

	// Stagger creation times so "latest products" ordering is stable.
	base := time.Now().UTC().Add(-time.Hour)
	for i, p := range SampleProducts() {
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.CreateProduct(ctx, &p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Slug, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(samplePassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash sample password: %w", err)
	}
	for _, u := range sampleUsers {
		u.PasswordHash = string(hash)
		if err := db.CreateUser(ctx, &u); err != nil && !errors.Is(err, ErrEmailTaken) {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	logging.Warn().
		Int("products", len(SampleProducts())).
		Int("users", len(sampleUsers)).
		Msg("Seeded sample data with default credentials; disable database.seed_sample_data in production")
	return nil
}
