package order

import (
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/google/uuid"
)

// ShippingMethod describes a way to ship order items and what it costs.
type ShippingMethod struct {
	Code string
	Name string
	Cost money.Money
}

// Shipment groups order items under a shipping method. Its identifier is
// reused as the label of the shipping-cost adjustment it creates on the
// order, mirroring how payments label their surcharge.
type Shipment struct {
	Identifier string
	Method     ShippingMethod
	Items      []*Item
}

// NewShipment creates a shipment for the given method.
func NewShipment(method ShippingMethod) *Shipment {
	return &Shipment{
		Identifier: uuid.NewString(),
		Method:     method,
	}
}

// AddItem assigns an order item to this shipment.
func (s *Shipment) AddItem(item *Item) {
	s.Items = append(s.Items, item)
}
