package controller

import (
	"testing"

	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttachedPayment(t *testing.T, o *order.Order, method *payment.Method) *payment.Payment {
	t.Helper()
	p := payment.New(method)
	require.NoError(t, p.AttachOrder(o))
	return p
}

func TestFromOrder(t *testing.T) {
	o := testutil.NewTestOrder("EUR", 500, 1000)

	resp := FromOrder(o)

	assert.Equal(t, o.ID.String(), resp.ID)
	assert.Equal(t, "cart", resp.State)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 5.00, resp.Items[0].UnitPrice)
	assert.Equal(t, 15.00, resp.Total)
	require.NotNil(t, resp.Balance)
	assert.Equal(t, 15.00, *resp.Balance)
	assert.Empty(t, resp.Payments)
	assert.Empty(t, resp.Shipments)
}

func TestFromPayment_NoAmount(t *testing.T) {
	method := testutil.NewTestMethod("credit_card", 0, "EUR")
	o := testutil.NewTestOrder("EUR", 1000)
	p := newAttachedPayment(t, o, method)

	resp := FromPayment(p)

	assert.Equal(t, p.ID, resp.ID)
	assert.Equal(t, "unpaid", resp.State)
	assert.Nil(t, resp.Amount)
	assert.Equal(t, "credit_card", resp.Method)
	assert.Empty(t, resp.Transactions)
	assert.Nil(t, resp.LastResponse)
}

func TestFloatToCents(t *testing.T) {
	tests := []struct {
		input float64
		want  int64
	}{
		{0, 0},
		{0.01, 1},
		{1.00, 100},
		{123.45, 12345},
		{10.999, 1100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floatToCents(tt.input), "input %v", tt.input)
	}
}

func TestCentsToFloat(t *testing.T) {
	assert.Equal(t, 123.45, centsToFloat(12345))
	assert.Equal(t, 0.01, centsToFloat(1))
	assert.Equal(t, -0.99, centsToFloat(-99))
}
