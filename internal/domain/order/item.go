package order

import (
	"github.com/commercekit/checkout/internal/domain/money"
)

// Orderable is anything that can be placed on an order as a line item.
type Orderable interface {
	SKU() string
	Description() string
	UnitPrice() money.Money
}

// Product is a plain orderable, enough for catalogs that live outside
// this module.
type Product struct {
	Code  string
	Name  string
	Price money.Money
}

func (p Product) SKU() string            { return p.Code }
func (p Product) Description() string    { return p.Name }
func (p Product) UnitPrice() money.Money { return p.Price }

// Item is one order line. Two lines are equivalent when they reference the
// same orderable identity (SKU); adding an equivalent line increases the
// quantity instead of inserting a duplicate.
type Item struct {
	SKU         string
	Description string
	UnitPrice   money.Money
	Quantity    int
	Total       money.Money
}

func newItem(orderable Orderable, quantity int) *Item {
	item := &Item{
		SKU:         orderable.SKU(),
		Description: orderable.Description(),
		UnitPrice:   orderable.UnitPrice(),
		Quantity:    quantity,
	}
	item.CalculateTotal()
	return item
}

// CalculateTotal recomputes the line total from unit price and quantity.
func (i *Item) CalculateTotal() {
	i.Total = i.UnitPrice.MulInt(int64(i.Quantity))
}
