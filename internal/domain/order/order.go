// Package order holds the Order aggregate: purchasable items, the
// adjustment ledger, payments, shipments and the order state table.
package order

import (
	"fmt"
	"time"

	"github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/google/uuid"
)

// Payment is the view of a payment the order needs for its balance: the
// payment's stable identifier (which doubles as its adjustment label) and
// the amount it settled, if it reached an authorized or paid state. The
// concrete aggregate lives in the payment package; the order does not
// depend on its lifetime.
type Payment interface {
	Identifier() string
	SettledAmount() (money.Money, bool)
}

// Order tracks purchasable items, price adjustments and payments for one
// commerce transaction.
//
// The totals invariant — Total == ItemsTotal + sum of adjustments — is
// recomputed by every mutator, never drifted incrementally. The exported
// Calculate methods exist for rehydration from storage.
type Order struct {
	ID          uuid.UUID
	Currency    string
	State       State
	Items       []*Item
	Adjustments Adjustments
	Payments    []Payment
	Shipments   []*Shipment
	ItemsTotal  money.Money
	Total       money.Money
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New creates an empty order in the cart state.
func New(currency string) *Order {
	now := time.Now()
	return &Order{
		ID:         uuid.New(),
		Currency:   currency,
		State:      StateCart,
		ItemsTotal: money.Zero(currency),
		Total:      money.Zero(currency),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddItem places an orderable on the order. If a line with the same
// orderable identity already exists its quantity is increased and the line
// total recomputed; otherwise a new line is inserted. The resulting line
// is returned.
func (o *Order) AddItem(orderable Orderable, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, errors.NewValidationError("quantity", "must be greater than 0")
	}
	if orderable.UnitPrice().Currency != o.Currency {
		return nil, fmt.Errorf("item %q priced in %s on a %s order: %w",
			orderable.SKU(), orderable.UnitPrice().Currency, o.Currency, errors.ErrCurrencyMismatch)
	}

	if existing := o.findItem(orderable.SKU()); existing != nil {
		existing.Quantity += quantity
		existing.CalculateTotal()
		o.recalculate()
		return existing, nil
	}

	item := newItem(orderable, quantity)
	o.Items = append(o.Items, item)
	o.recalculate()
	return item, nil
}

// RemoveItem removes a line by orderable identity. It reports whether the
// line was present.
func (o *Order) RemoveItem(item *Item) bool {
	for i, it := range o.Items {
		if it.SKU == item.SKU {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.recalculate()
			return true
		}
	}
	return false
}

// ContainsItem returns the line matching the orderable identity, if any.
func (o *Order) ContainsItem(sku string) (*Item, bool) {
	item := o.findItem(sku)
	return item, item != nil
}

func (o *Order) findItem(sku string) *Item {
	for _, it := range o.Items {
		if it.SKU == sku {
			return it
		}
	}
	return nil
}

// AddAdjustment appends to the ledger and recomputes the total.
func (o *Order) AddAdjustment(adj Adjustment) error {
	if !adj.Amount.SameCurrency(o.Total) {
		return fmt.Errorf("adjustment %q in %s on a %s order: %w",
			adj.Label, adj.Amount.Currency, o.Currency, errors.ErrCurrencyMismatch)
	}
	if err := o.Adjustments.Add(adj); err != nil {
		return err
	}
	o.recalculate()
	return nil
}

// RemoveAdjustment removes the adjustment with the given label and
// recomputes the total. A miss reports false and changes nothing.
func (o *Order) RemoveAdjustment(label string) bool {
	if !o.Adjustments.Remove(label) {
		return false
	}
	o.recalculate()
	return true
}

// AddPayment registers a payment against the order.
func (o *Order) AddPayment(p Payment) {
	o.Payments = append(o.Payments, p)
	o.touch()
}

// RemovePayment removes a payment by identifier.
func (o *Order) RemovePayment(identifier string) bool {
	for i, p := range o.Payments {
		if p.Identifier() == identifier {
			o.Payments = append(o.Payments[:i], o.Payments[i+1:]...)
			o.touch()
			return true
		}
	}
	return false
}

// FindPayment returns the payment with the given identifier, if present.
func (o *Order) FindPayment(identifier string) (Payment, bool) {
	for _, p := range o.Payments {
		if p.Identifier() == identifier {
			return p, true
		}
	}
	return nil, false
}

// AddShipment attaches a shipment; a non-zero shipping cost becomes an
// adjustment labeled with the shipment identifier.
func (o *Order) AddShipment(s *Shipment) error {
	if !s.Method.Cost.IsZero() {
		if err := o.AddAdjustment(Adjustment{Label: s.Identifier, Amount: s.Method.Cost}); err != nil {
			return err
		}
	}
	o.Shipments = append(o.Shipments, s)
	o.touch()
	return nil
}

// RemoveShipment detaches a shipment and its cost adjustment.
func (o *Order) RemoveShipment(identifier string) bool {
	for i, s := range o.Shipments {
		if s.Identifier == identifier {
			o.Shipments = append(o.Shipments[:i], o.Shipments[i+1:]...)
			o.RemoveAdjustment(identifier)
			o.touch()
			return true
		}
	}
	return false
}

// ShippingCost sums the cost of all shipments on the order.
func (o *Order) ShippingCost() money.Money {
	cost := money.Zero(o.Currency)
	for _, s := range o.Shipments {
		if c, err := cost.Add(s.Method.Cost); err == nil {
			cost = c
		}
	}
	return cost
}

// CalculateItemsTotalAmount recomputes the items total from the lines.
func (o *Order) CalculateItemsTotalAmount() {
	total := money.Zero(o.Currency)
	for _, item := range o.Items {
		// Lines are currency-checked on the way in.
		total, _ = total.Add(item.Total)
	}
	o.ItemsTotal = total
}

// CalculateTotalAmount recomputes Total = ItemsTotal + adjustments.
func (o *Order) CalculateTotalAmount() error {
	adj, err := o.Adjustments.Sum(o.Currency)
	if err != nil {
		return err
	}
	total, err := o.ItemsTotal.Add(adj)
	if err != nil {
		return err
	}
	o.Total = total
	return nil
}

func (o *Order) recalculate() {
	o.CalculateItemsTotalAmount()
	// Mutators validate currencies before touching state, so the sum
	// cannot fail here.
	_ = o.CalculateTotalAmount()
	o.touch()
}

// TotalQuantity returns the summed quantity across all lines.
func (o *Order) TotalQuantity() int {
	var q int
	for _, item := range o.Items {
		q += item.Quantity
	}
	return q
}

// Balance is the total minus the settled payment amounts. Positive means
// the customer still owes; negative means the order is overpaid.
func (o *Order) Balance() (money.Money, error) {
	balance := o.Total
	for _, p := range o.Payments {
		amount, ok := p.SettledAmount()
		if !ok {
			continue
		}
		var err error
		balance, err = balance.Sub(amount)
		if err != nil {
			return money.Money{}, fmt.Errorf("payment %s: %w", p.Identifier(), err)
		}
	}
	return balance, nil
}

// Apply applies a named transition against the order state table. An
// undefined or disallowed transition fails with ErrIllegalTransition and
// leaves the state unchanged.
func (o *Order) Apply(transition string) error {
	next, err := Transitions.Apply(o.State, transition)
	if err != nil {
		return err
	}
	o.State = next
	o.touch()
	return nil
}

// CanApply reports whether the named transition is currently allowed.
func (o *Order) CanApply(transition string) bool {
	return Transitions.Can(o.State, transition)
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
}
