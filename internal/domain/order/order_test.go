package order_test

import (
	"math/rand"
	"testing"

	"github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/pkg/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(sku string, cents int64) order.Product {
	return order.Product{Code: sku, Name: "product " + sku, Price: money.New(cents, "EUR")}
}

// assertTotalsInvariant checks Total == ItemsTotal + sum(adjustments).
func assertTotalsInvariant(t *testing.T, o *order.Order) {
	t.Helper()
	adj, err := o.Adjustments.Sum(o.Currency)
	require.NoError(t, err)
	want, err := o.ItemsTotal.Add(adj)
	require.NoError(t, err)
	assert.Equal(t, want, o.Total)
}

func TestNew(t *testing.T) {
	o := order.New("EUR")
	assert.Equal(t, order.StateCart, o.State)
	assert.True(t, o.Total.IsZero())
	assert.True(t, o.ItemsTotal.IsZero())
	assert.NotEqual(t, "", o.ID.String())
}

func TestAddItem(t *testing.T) {
	o := order.New("EUR")

	item, err := o.AddItem(product("SKU-1", 1500), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, money.New(3000, "EUR"), item.Total)
	assert.Equal(t, money.New(3000, "EUR"), o.ItemsTotal)
	assertTotalsInvariant(t, o)
}

func TestAddItem_MergesSameOrderable(t *testing.T) {
	o := order.New("EUR")

	first, err := o.AddItem(product("SKU-1", 1500), 2)
	require.NoError(t, err)
	second, err := o.AddItem(product("SKU-1", 1500), 3)
	require.NoError(t, err)

	// One line, quantity q1+q2, never two lines.
	assert.Same(t, first, second)
	assert.Len(t, o.Items, 1)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, money.New(7500, "EUR"), second.Total)
	assertTotalsInvariant(t, o)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	o := order.New("EUR")
	_, err := o.AddItem(product("SKU-1", 1500), 0)
	assert.Error(t, err)
}

func TestAddItem_CurrencyMismatch(t *testing.T) {
	o := order.New("EUR")
	_, err := o.AddItem(order.Product{Code: "SKU-1", Name: "x", Price: money.New(100, "USD")}, 1)
	assert.ErrorIs(t, err, errors.ErrCurrencyMismatch)
	assert.Empty(t, o.Items)
}

func TestRemoveItem(t *testing.T) {
	o := order.New("EUR")
	item, err := o.AddItem(product("SKU-1", 1000), 1)
	require.NoError(t, err)
	_, err = o.AddItem(product("SKU-2", 2000), 1)
	require.NoError(t, err)

	assert.True(t, o.RemoveItem(item))
	assert.Len(t, o.Items, 1)
	assert.Equal(t, money.New(2000, "EUR"), o.ItemsTotal)
	assertTotalsInvariant(t, o)

	assert.False(t, o.RemoveItem(item))
}

func TestAdjustmentsRecomputeTotal(t *testing.T) {
	o := order.New("EUR")
	_, err := o.AddItem(product("SKU-1", 9500), 1)
	require.NoError(t, err)

	require.NoError(t, o.AddAdjustment(order.Adjustment{Label: "shipping", Amount: money.New(500, "EUR")}))
	assert.Equal(t, money.New(10000, "EUR"), o.Total)
	assertTotalsInvariant(t, o)

	assert.True(t, o.RemoveAdjustment("shipping"))
	assert.Equal(t, money.New(9500, "EUR"), o.Total)
	assertTotalsInvariant(t, o)
}

func TestAddAdjustment_CurrencyMismatch(t *testing.T) {
	o := order.New("EUR")
	err := o.AddAdjustment(order.Adjustment{Label: "fee", Amount: money.New(100, "USD")})
	assert.ErrorIs(t, err, errors.ErrCurrencyMismatch)
	assert.Empty(t, o.Adjustments)
}

// The invariant must hold after every mutation in arbitrary sequences.
func TestTotalsInvariant_RandomMutationSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	o := order.New("EUR")

	skus := []string{"A", "B", "C", "D"}
	labels := []string{"l1", "l2", "l3"}

	for i := 0; i < 200; i++ {
		switch rng.Intn(4) {
		case 0:
			sku := skus[rng.Intn(len(skus))]
			_, err := o.AddItem(product(sku, int64(rng.Intn(5000)+1)), rng.Intn(3)+1)
			require.NoError(t, err)
		case 1:
			if len(o.Items) > 0 {
				o.RemoveItem(o.Items[rng.Intn(len(o.Items))])
			}
		case 2:
			label := labels[rng.Intn(len(labels))]
			// Duplicate labels are rejected; that's fine here.
			_ = o.AddAdjustment(order.Adjustment{Label: label, Amount: money.New(int64(rng.Intn(2000)-1000), "EUR")})
		case 3:
			o.RemoveAdjustment(labels[rng.Intn(len(labels))])
		}
		assertTotalsInvariant(t, o)
	}
}

type stubPayment struct {
	id      string
	amount  money.Money
	settled bool
}

func (s stubPayment) Identifier() string { return s.id }
func (s stubPayment) SettledAmount() (money.Money, bool) {
	return s.amount, s.settled
}

func TestBalance(t *testing.T) {
	o := order.New("EUR")
	_, err := o.AddItem(product("SKU-1", 10000), 1)
	require.NoError(t, err)

	o.AddPayment(stubPayment{id: "p1", amount: money.New(6000, "EUR"), settled: true})
	o.AddPayment(stubPayment{id: "p2", amount: money.New(1000, "EUR"), settled: false})

	balance, err := o.Balance()
	require.NoError(t, err)
	assert.Equal(t, money.New(4000, "EUR"), balance)
}

func TestBalance_Overpaid(t *testing.T) {
	o := order.New("EUR")
	_, err := o.AddItem(product("SKU-1", 5000), 1)
	require.NoError(t, err)

	o.AddPayment(stubPayment{id: "p1", amount: money.New(8000, "EUR"), settled: true})

	balance, err := o.Balance()
	require.NoError(t, err)
	assert.Equal(t, int64(-3000), balance.Amount)
}

func TestRemovePayment(t *testing.T) {
	o := order.New("EUR")
	o.AddPayment(stubPayment{id: "p1"})

	assert.True(t, o.RemovePayment("p1"))
	assert.False(t, o.RemovePayment("p1"))
}

func TestShipments(t *testing.T) {
	o := order.New("EUR")
	_, err := o.AddItem(product("SKU-1", 9000), 1)
	require.NoError(t, err)

	shipment := order.NewShipment(order.ShippingMethod{Code: "courier", Name: "Courier", Cost: money.New(700, "EUR")})
	require.NoError(t, o.AddShipment(shipment))

	assert.Equal(t, money.New(9700, "EUR"), o.Total)
	assert.Equal(t, money.New(700, "EUR"), o.ShippingCost())
	assertTotalsInvariant(t, o)

	assert.True(t, o.RemoveShipment(shipment.Identifier))
	assert.Equal(t, money.New(9000, "EUR"), o.Total)
	assertTotalsInvariant(t, o)
}

// --- State machine ---

func TestApply_HappyPath(t *testing.T) {
	o := order.New("EUR")

	for _, transition := range []string{
		order.TransitionCheckout,
		order.TransitionPay,
		order.TransitionProcess,
		order.TransitionShip,
		order.TransitionDeliver,
	} {
		require.NoError(t, o.Apply(transition), "transition %s", transition)
	}
	assert.Equal(t, order.StateDelivered, o.State)

	require.NoError(t, o.Apply(order.TransitionReturn))
	assert.Equal(t, order.StateReturned, o.State)
}

func TestApply_PartialPayment(t *testing.T) {
	o := order.New("EUR")
	require.NoError(t, o.Apply(order.TransitionCheckout))
	require.NoError(t, o.Apply(order.TransitionPartiallyPay))
	require.NoError(t, o.Apply(order.TransitionPay))
	assert.Equal(t, order.StatePaid, o.State)
}

func TestApply_CancelFromNonTerminal(t *testing.T) {
	for _, setup := range [][]string{
		{},
		{order.TransitionCheckout},
		{order.TransitionCheckout, order.TransitionPay},
		{order.TransitionCheckout, order.TransitionPay, order.TransitionProcess},
	} {
		o := order.New("EUR")
		for _, tr := range setup {
			require.NoError(t, o.Apply(tr))
		}
		require.NoError(t, o.Apply(order.TransitionCancel))
		assert.Equal(t, order.StateCancelled, o.State)
	}
}

func TestApply_UndefinedTransition(t *testing.T) {
	o := order.New("EUR")
	err := o.Apply("teleport")
	assert.ErrorIs(t, err, fsm.ErrIllegalTransition)
	assert.Equal(t, order.StateCart, o.State)
}

func TestApply_IllegalTransition(t *testing.T) {
	o := order.New("EUR")
	// Cannot ship straight out of the cart.
	err := o.Apply(order.TransitionShip)
	assert.ErrorIs(t, err, fsm.ErrIllegalTransition)
	assert.Equal(t, order.StateCart, o.State)
}

func TestApply_ReturnOnlyFromDelivered(t *testing.T) {
	o := order.New("EUR")
	require.NoError(t, o.Apply(order.TransitionCheckout))
	assert.ErrorIs(t, o.Apply(order.TransitionReturn), fsm.ErrIllegalTransition)
}

func TestApply_TerminalStates(t *testing.T) {
	o := order.New("EUR")
	require.NoError(t, o.Apply(order.TransitionCancel))
	assert.True(t, o.State.IsTerminal())
	assert.ErrorIs(t, o.Apply(order.TransitionCheckout), fsm.ErrIllegalTransition)
}

func TestTotalQuantity(t *testing.T) {
	o := order.New("EUR")
	_, err := o.AddItem(product("SKU-1", 1000), 2)
	require.NoError(t, err)
	_, err = o.AddItem(product("SKU-2", 1000), 3)
	require.NoError(t, err)
	assert.Equal(t, 5, o.TotalQuantity())
}
