// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Money is an amount in cents.
type Money int64

// ErrInvalidMoney is returned when a money string cannot be parsed.
var ErrInvalidMoney = errors.New("invalid money amount")

// Cents builds a Money value from a cent count.
func Cents(c int64) Money {
	return Money(c)
}

// ParseMoney parses a decimal string such as "10", "10.5" or "10.50".
// More than two fractional digits is rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}

	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, ErrInvalidMoney
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	var units int64
	if whole != "" {
		v, err := strconv.ParseUint(whole, 10, 53)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
		}
		units = int64(v)
	}

	var cents int64
	if frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		v, err := strconv.ParseUint(frac, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
		}
		cents = int64(v)
	}

	total := units*100 + cents
	if neg {
		total = -total
	}
	return Money(total), nil
}

// MustParseMoney is ParseMoney for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents returns the raw cent count.
func (m Money) Cents() int64 {
	return int64(m)
}

// Mul multiplies by a quantity.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// String formats with exactly two fractional digits.
func (m Money) String() string {
	u := uint64(m)
	sign := ""
	if m < 0 {
		sign = "-"
		u = -u // two's complement magnitude, exact for math.MinInt64
	}
	return fmt.Sprintf("%s%d.%02d", sign, u/100, u%100)
}

// MarshalJSON renders the amount as a two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either "12.34" or 12.34.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
