// Package cart is a thin convenience layer over the order aggregate for
// the storefront flow: build up an order, pick shipping, attach a payment
// method, move it through checkout.
package cart

import (
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/domain/payment"
)

// Cart wraps a single order, creating it lazily on first use.
type Cart struct {
	currency string
	order    *order.Order
}

func New(currency string) *Cart {
	return &Cart{currency: currency}
}

// NewWithOrder wraps an existing order, e.g. one rehydrated from storage.
func NewWithOrder(o *order.Order) *Cart {
	return &Cart{currency: o.Currency, order: o}
}

// Order returns the underlying order, creating a fresh one in the cart
// state when none exists yet.
func (c *Cart) Order() *order.Order {
	if c.order == nil {
		c.order = order.New(c.currency)
	}
	return c.order
}

// AddItem places an orderable on the order; an equivalent line has its
// quantity increased instead.
func (c *Cart) AddItem(orderable order.Orderable, quantity int) (*order.Item, error) {
	return c.Order().AddItem(orderable, quantity)
}

// RemoveItem removes a line from the order.
func (c *Cart) RemoveItem(item *order.Item) bool {
	return c.Order().RemoveItem(item)
}

// Items returns the order's lines.
func (c *Cart) Items() []*order.Item {
	return c.Order().Items
}

// ItemsCount returns the number of distinct lines.
func (c *Cart) ItemsCount() int {
	return len(c.Order().Items)
}

// TotalQuantity returns the summed quantity across all lines.
func (c *Cart) TotalQuantity() int {
	return c.Order().TotalQuantity()
}

// AddPaymentMethod creates a payment for the given method, attaches it to
// the order (creating the method's cost adjustment when it has one) and
// registers it on the order. A nil amount means the payment charges the
// order total at processing time.
func (c *Cart) AddPaymentMethod(method *payment.Method, amount *money.Money) (*payment.Payment, error) {
	var opts []payment.Option
	if amount != nil {
		opts = append(opts, payment.WithAmount(*amount))
	}

	p := payment.New(method, opts...)
	if err := p.AttachOrder(c.Order()); err != nil {
		return nil, err
	}
	c.Order().AddPayment(p)

	return p, nil
}

// SetShippingMethod creates one shipment carrying every current line and
// puts its cost on the order.
func (c *Cart) SetShippingMethod(method order.ShippingMethod) (*order.Shipment, error) {
	shipment := order.NewShipment(method)
	for _, item := range c.Order().Items {
		shipment.AddItem(item)
	}
	if err := c.Order().AddShipment(shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

// ProcessTo applies a named transition to the order.
func (c *Cart) ProcessTo(transition string) error {
	return c.Order().Apply(transition)
}
