package payment

import (
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/providers"
)

// Method is a way to pay: a default action, a surcharge and the provider
// that moves the money. Methods are shared across payments, never owned
// by one.
type Method struct {
	Code     string
	Name     string
	Action   string
	Cost     money.Money
	Provider providers.Provider
}

// Resolver maps a stored method code back to a configured Method when a
// payment is rehydrated.
type Resolver interface {
	Resolve(code string) (*Method, error)
}
