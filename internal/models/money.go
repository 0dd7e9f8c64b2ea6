package models

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Money is an amount in minor units (cents).
type Money int64

// ParsePrice converts a decimal string such as Shopify's "19.99" into cents,
// rounding half away from zero. Empty or malformed input yields 0.
func ParsePrice(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0
	}
	r.Mul(r, big.NewRat(100, 1))

	// Quotient and remainder truncate toward zero; bump when |rem| >= half.
	num, den := r.Num(), r.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	rem.Abs(rem).Mul(rem, big.NewInt(2))
	if rem.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	if !q.IsInt64() {
		return 0
	}
	return Money(q.Int64())
}

// String formats cents as a decimal with two places.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders money as a decimal number (19.99).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = ParsePrice(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid price %s: %w", string(data), err)
	}
	*m = ParsePrice(n.String())
	return nil
}
