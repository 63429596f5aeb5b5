// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package models

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestParseMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Money
		wantErr bool
	}{
		{"0", 0, false},
		{"10", 1000, false},
		{"10.5", 1050, false},
		{"10.50", 1050, false},
		{"0.07", 7, false},
		{".99", 99, false},
		{" 3.10 ", 310, false},
		{"-1.25", -125, false},
		{"1.234", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1.", 0, true},
		{".", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMoney(%q) expected error, got %v", tt.in, got)
			} else if !errors.Is(err, ErrInvalidMoney) {
				t.Errorf("ParseMoney(%q) error = %v, want ErrInvalidMoney", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMoney(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMoney(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	t.Parallel()

	tests := map[Money]string{
		0:      "0.00",
		5:      "0.05",
		1000:   "10.00",
		6750:   "67.50",
		-125:   "-1.25",
		123456: "1234.56",

		math.MaxInt64: "92233720368547758.07",
		math.MinInt64: "-92233720368547758.08",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("Money(%d).String() = %q, want %q", int64(m), got, want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		P Money `json:"p"`
	}{P: 1050})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"p":"10.50"}` {
		t.Errorf("got %s", data)
	}

	var item CartItem
	if err := json.Unmarshal([]byte(`{"productId":"p1","price":12.5,"qty":2}`), &item); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if item.Price != 1250 {
		t.Errorf("price = %d, want 1250", item.Price)
	}

	if err := json.Unmarshal([]byte(`{"price":"7.99"}`), &item); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if item.Price != 799 {
		t.Errorf("price = %d, want 799", item.Price)
	}

	if err := json.Unmarshal([]byte(`{"price":"7.999"}`), &item); err == nil {
		t.Error("expected error for three fractional digits")
	}
}

func TestCartJSONFlattensPrices(t *testing.T) {
	t.Parallel()

	c := Cart{
		ID:            "c1",
		SessionCartID: "s1",
		Items:         []CartItem{{ProductID: "p1", Name: "Shirt", Slug: "shirt", Price: 5000, Qty: 1}},
		PriceBreakdown: PriceBreakdown{
			ItemsPrice: 5000, ShippingPrice: 1000, TaxPrice: 750, TotalPrice: 6750,
		},
		Version: 4,
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"itemsPrice":"50.00"`, `"shippingPrice":"10.00"`, `"taxPrice":"7.50"`, `"totalPrice":"67.50"`} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %s in %s", want, s)
		}
	}
	if strings.Contains(s, "version") || strings.Contains(s, "Version") {
		t.Errorf("version leaked into JSON: %s", s)
	}
}

func TestCartHelpers(t *testing.T) {
	t.Parallel()

	c := &Cart{Items: []CartItem{
		{ProductID: "a", Qty: 2},
		{ProductID: "b", Qty: 1},
	}}
	if got := c.FindItem("b"); got != 1 {
		t.Errorf("FindItem(b) = %d", got)
	}
	if got := c.FindItem("z"); got != -1 {
		t.Errorf("FindItem(z) = %d", got)
	}
	if got := c.ItemCount(); got != 3 {
		t.Errorf("ItemCount = %d", got)
	}

	clone := c.Clone()
	clone.Items[0].Qty = 9
	if c.Items[0].Qty != 2 {
		t.Error("Clone shares the items slice")
	}

	if !(CartIdentity{}).IsZero() {
		t.Error("empty identity should be zero")
	}
	if (CartIdentity{UserID: "u"}).IsZero() {
		t.Error("identity with user should not be zero")
	}
}

func TestProductAsCartItem(t *testing.T) {
	t.Parallel()

	p := &Product{ID: "p1", Name: "Polo", Slug: "polo", Images: []string{"/images/polo.jpg"}, Price: 2999, Stock: 3}
	item := p.AsCartItem()
	if item.Qty != 1 || item.Price != 2999 || item.Image != "/images/polo.jpg" {
		t.Errorf("unexpected item %+v", item)
	}
	if !p.InStock() {
		t.Error("expected InStock")
	}
	if (&Product{}).Image() != "" {
		t.Error("expected empty image")
	}
}

func TestIsValidRole(t *testing.T) {
	t.Parallel()

	if !IsValidRole(RoleAdmin) || !IsValidRole(RoleUser) {
		t.Error("expected built-in roles to be valid")
	}
	if IsValidRole("root") {
		t.Error("unexpected valid role")
	}
}
