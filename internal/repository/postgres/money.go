package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/commercekit/checkout/internal/domain/money"
)

// Amounts are stored as NUMERIC(19,2); the domain works in minor units.
// The parse works on the decimal digits directly: a float64 round-trip
// loses precision past 2^53 minor units, well inside the column's range.

func numericToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty numeric string")
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse numeric %q: %w", s, err)
	}

	var frac int64
	if fracPart != "" {
		digits := fracPart
		roundUp := false
		if len(digits) > 2 {
			roundUp = digits[2] >= '5'
			digits = digits[:2]
		}
		if frac, err = strconv.ParseInt(digits, 10, 64); err != nil {
			return 0, fmt.Errorf("parse numeric %q: %w", s, err)
		}
		if len(digits) == 1 {
			frac *= 10
		}
		if roundUp {
			frac++
		}
	}

	cents := units*100 + frac
	if negative {
		cents = -cents
	}
	return cents, nil
}

func centsToNumeric(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func numericToMoney(s, currency string) (money.Money, error) {
	cents, err := numericToCents(s)
	if err != nil {
		return money.Money{}, err
	}
	return money.New(cents, currency), nil
}
