package order

import (
	"fmt"

	"github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
)

// Adjustment is a labeled amount added to or subtracted from an order's
// total: a shipping cost, a payment surcharge, a discount. Labels are
// unique per order; payments and shipments label the adjustments they
// create with their own identifier so they can find and remove them later.
type Adjustment struct {
	Label  string
	Amount money.Money
}

// Adjustments is the adjustment ledger of an order. It owns no business
// logic beyond containment and lookup by label.
type Adjustments []Adjustment

// Add appends an adjustment, rejecting a duplicate label.
func (a *Adjustments) Add(adj Adjustment) error {
	if _, ok := a.FindByLabel(adj.Label); ok {
		return fmt.Errorf("label %q: %w", adj.Label, errors.ErrDuplicateAdjustment)
	}
	*a = append(*a, adj)
	return nil
}

// Remove removes the first adjustment with the given label. It reports
// whether a match was found; a miss is not an error.
func (a *Adjustments) Remove(label string) bool {
	for i, adj := range *a {
		if adj.Label == label {
			*a = append((*a)[:i], (*a)[i+1:]...)
			return true
		}
	}
	return false
}

// FindByLabel returns the adjustment with the given label, if present.
func (a Adjustments) FindByLabel(label string) (Adjustment, bool) {
	for _, adj := range a {
		if adj.Label == label {
			return adj, true
		}
	}
	return Adjustment{}, false
}

// Sum totals the ledger in the given currency. A mixed-currency ledger is
// a configuration fault and fails with ErrCurrencyMismatch.
func (a Adjustments) Sum(currency string) (money.Money, error) {
	total := money.Zero(currency)
	for _, adj := range a {
		var err error
		total, err = total.Add(adj.Amount)
		if err != nil {
			return money.Money{}, fmt.Errorf("adjustment %q: %w", adj.Label, err)
		}
	}
	return total, nil
}
