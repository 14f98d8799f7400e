// Package testutil provides fixtures and in-memory implementations of the
// service ports for tests.
package testutil

import (
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/providers"
)

// NewTestOrder builds an order with one line per given price, quantity 1.
func NewTestOrder(currency string, priceCents ...int64) *order.Order {
	o := order.New(currency)
	for i, cents := range priceCents {
		product := order.Product{
			Code:  productCode(i),
			Name:  productCode(i),
			Price: money.New(cents, currency),
		}
		if _, err := o.AddItem(product, 1); err != nil {
			panic(err)
		}
	}
	return o
}

func productCode(i int) string {
	return "SKU-" + string(rune('A'+i))
}

// NewTestMethod builds a purchase method with the given cost backed by a
// fresh mock provider.
func NewTestMethod(code string, costCents int64, currency string, opts ...providers.MockProviderOption) *payment.Method {
	return &payment.Method{
		Code:     code,
		Name:     code,
		Action:   providers.ActionPurchase,
		Cost:     money.New(costCents, currency),
		Provider: providers.NewMockProvider(code+"_gw", opts...),
	}
}

// Int64Ptr returns a pointer to the given value.
func Int64Ptr(v int64) *int64 {
	return &v
}
