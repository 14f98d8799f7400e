// Package money provides an exact monetary amount in minor currency units.
package money

import (
	"fmt"

	"github.com/commercekit/checkout/internal/domain/errors"
)

// Money is an exact amount expressed in the smallest currency unit
// (e.g. cents) together with its ISO-4217 currency code. Arithmetic is
// currency-checked; amounts of different currencies never mix silently.
type Money struct {
	Amount   int64
	Currency string
}

// New creates a Money value.
func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns the zero amount of the given currency.
func Zero(currency string) Money {
	return Money{Amount: 0, Currency: currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// SameCurrency reports whether both amounts share a currency.
func (m Money) SameCurrency(o Money) bool {
	return m.Currency == o.Currency
}

// Add returns m + o, or ErrCurrencyMismatch.
func (m Money) Add(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, fmt.Errorf("add %s to %s: %w", o.Currency, m.Currency, errors.ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}, nil
}

// Sub returns m - o, or ErrCurrencyMismatch.
func (m Money) Sub(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, fmt.Errorf("subtract %s from %s: %w", o.Currency, m.Currency, errors.ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount - o.Amount, Currency: m.Currency}, nil
}

// MulInt returns m multiplied by an integer factor (e.g. a line quantity).
func (m Money) MulInt(n int64) Money {
	return Money{Amount: m.Amount * n, Currency: m.Currency}
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(o Money) bool {
	return m.Amount == o.Amount && m.Currency == o.Currency
}

// String returns a human-readable representation of the amount.
func (m Money) String() string {
	sign := ""
	cents := m.Amount
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, m.Currency)
}

// Validate checks that the value is well formed.
func (m Money) Validate() error {
	if m.Currency == "" {
		return errors.NewValidationError("currency", "cannot be empty")
	}
	if len(m.Currency) != 3 {
		return errors.NewValidationError("currency", "must be a 3-letter ISO code")
	}
	return nil
}
