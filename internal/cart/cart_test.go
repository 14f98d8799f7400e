package cart_test

import (
	"context"
	"testing"

	"github.com/commercekit/checkout/internal/cart"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eur(cents int64) money.Money { return money.New(cents, "EUR") }

func product(code string, cents int64) order.Product {
	return order.Product{Code: code, Name: code, Price: eur(cents)}
}

func TestOrder_LazilyCreated(t *testing.T) {
	c := cart.New("EUR")
	o := c.Order()
	require.NotNil(t, o)
	assert.Equal(t, order.StateCart, o.State)
	assert.Same(t, o, c.Order())
}

func TestAddItem_MergesDuplicates(t *testing.T) {
	c := cart.New("EUR")

	first, err := c.AddItem(product("SKU-1", 500), 2)
	require.NoError(t, err)
	second, err := c.AddItem(product("SKU-1", 500), 3)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.ItemsCount())
	assert.Equal(t, 5, c.TotalQuantity())
	assert.Equal(t, eur(2500), c.Order().Total)
}

func TestRemoveItem(t *testing.T) {
	c := cart.New("EUR")
	item, err := c.AddItem(product("SKU-1", 500), 1)
	require.NoError(t, err)

	assert.True(t, c.RemoveItem(item))
	assert.Equal(t, 0, c.ItemsCount())
	assert.True(t, c.Order().Total.IsZero())
}

func TestAddPaymentMethod_AttachesAndRegisters(t *testing.T) {
	c := cart.New("EUR")
	_, err := c.AddItem(product("SKU-1", 9500), 1)
	require.NoError(t, err)

	method := &payment.Method{
		Code:     "credit_card",
		Name:     "Credit Card",
		Action:   providers.ActionPurchase,
		Cost:     eur(500),
		Provider: providers.NewMockProvider("gw"),
	}
	p, err := c.AddPaymentMethod(method, nil)
	require.NoError(t, err)

	assert.Equal(t, eur(10000), c.Order().Total)
	found, ok := c.Order().FindPayment(p.Identifier())
	require.True(t, ok)
	assert.Equal(t, p.Identifier(), found.Identifier())
}

func TestAddPaymentMethod_ExplicitAmount(t *testing.T) {
	c := cart.New("EUR")
	_, err := c.AddItem(product("SKU-1", 9500), 1)
	require.NoError(t, err)

	method := &payment.Method{
		Code:     "cod",
		Name:     "Cash on Delivery",
		Action:   providers.ActionPurchase,
		Cost:     eur(0),
		Provider: providers.NewMockProvider("gw"),
	}
	amount := eur(10000)
	p, err := c.AddPaymentMethod(method, &amount)
	require.NoError(t, err)

	require.NotNil(t, p.Amount)
	assert.Equal(t, eur(10000), *p.Amount)
}

func TestSetShippingMethod_CoversAllItems(t *testing.T) {
	c := cart.New("EUR")
	_, err := c.AddItem(product("SKU-1", 500), 1)
	require.NoError(t, err)
	_, err = c.AddItem(product("SKU-2", 700), 2)
	require.NoError(t, err)

	shipment, err := c.SetShippingMethod(order.ShippingMethod{Code: "courier", Name: "Courier", Cost: eur(400)})
	require.NoError(t, err)

	assert.Len(t, shipment.Items, 2)
	assert.Equal(t, eur(2300), c.Order().Total)
	assert.Equal(t, eur(400), c.Order().ShippingCost())
}

func TestProcessTo(t *testing.T) {
	c := cart.New("EUR")
	_, err := c.AddItem(product("SKU-1", 500), 1)
	require.NoError(t, err)

	require.NoError(t, c.ProcessTo(order.TransitionCheckout))
	assert.Equal(t, order.StateCheckout, c.Order().State)

	err = c.ProcessTo(order.TransitionShip)
	assert.Error(t, err)
	assert.Equal(t, order.StateCheckout, c.Order().State)
}

func TestFullCheckoutFlow(t *testing.T) {
	c := cart.New("EUR")
	_, err := c.AddItem(product("SKU-1", 9500), 1)
	require.NoError(t, err)

	method := &payment.Method{
		Code:     "credit_card",
		Name:     "Credit Card",
		Action:   providers.ActionPurchase,
		Cost:     eur(500),
		Provider: providers.NewMockProvider("gw"),
	}
	p, err := c.AddPaymentMethod(method, nil)
	require.NoError(t, err)
	require.NoError(t, c.ProcessTo(order.TransitionCheckout))

	resp, err := p.Process(context.Background(), "")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())

	require.NoError(t, c.ProcessTo(order.TransitionPay))
	assert.Equal(t, order.StatePaid, c.Order().State)

	balance, err := c.Order().Balance()
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
