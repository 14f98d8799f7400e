package service_test

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/infrastructure/observability"
	"github.com/commercekit/checkout/internal/providers"
	"github.com/commercekit/checkout/internal/service"
	"github.com/commercekit/checkout/internal/testutil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	orders    *testutil.MockOrderRepository
	payments  *testutil.MockPaymentRepository
	methods   *service.MethodRegistry
	locker    *testutil.MockLocker
	publisher *testutil.MockEventPublisher
	svc       *service.CheckoutService
}

func newFixture(t *testing.T, methods ...*payment.Method) *fixture {
	t.Helper()
	f := &fixture{
		orders:    testutil.NewMockOrderRepository(),
		payments:  testutil.NewMockPaymentRepository(),
		methods:   service.NewMethodRegistry(methods...),
		locker:    testutil.NewMockLocker(),
		publisher: testutil.NewMockEventPublisher(),
	}
	f.svc = service.NewCheckoutService(
		f.orders,
		f.payments,
		f.methods,
		providers.NewFactory(),
		testutil.NewMockTransactionManager(),
		f.locker,
		f.publisher,
		observability.NewMetrics("test", prometheus.NewRegistry()),
		zerolog.Nop(),
	)
	return f
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, order.StateCart, o.State)

	loaded, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, loaded.ID)
}

func TestCreateOrder_InvalidCurrency(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), "EURO")
	assert.Error(t, err)
}

func TestAddItem(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)

	_, err = f.svc.AddItem(context.Background(), o.ID, service.AddItemRequest{
		SKU: "SKU-1", Description: "widget", UnitPrice: 500, Quantity: 2,
	})
	require.NoError(t, err)
	updated, err := f.svc.AddItem(context.Background(), o.ID, service.AddItemRequest{
		SKU: "SKU-1", Description: "widget", UnitPrice: 500, Quantity: 3,
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, 5, updated.Items[0].Quantity)
	assert.Equal(t, int64(2500), updated.Total.Amount)
	assert.Contains(t, f.locker.Keys, "order:"+o.ID.String())
}

func TestAddItem_OrderNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddItem(context.Background(), uuid.New(), service.AddItemRequest{
		SKU: "SKU-1", Description: "widget", UnitPrice: 500, Quantity: 1,
	})
	assert.ErrorIs(t, err, domainErrors.ErrOrderNotFound)
}

func TestRemoveItem_NotFound(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)

	_, err = f.svc.RemoveItem(context.Background(), o.ID, "SKU-404")
	assert.ErrorIs(t, err, domainErrors.ErrItemNotFound)
}

func TestSetShipping(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)
	_, err = f.svc.AddItem(context.Background(), o.ID, service.AddItemRequest{
		SKU: "SKU-1", Description: "widget", UnitPrice: 1000, Quantity: 1,
	})
	require.NoError(t, err)

	updated, err := f.svc.SetShipping(context.Background(), o.ID, order.ShippingMethod{
		Code: "courier", Name: "Courier", Cost: money.New(400, "EUR"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1400), updated.Total.Amount)
	assert.Equal(t, int64(400), updated.ShippingCost().Amount)
	require.Len(t, updated.Shipments, 1)
	assert.Len(t, updated.Shipments[0].Items, 1)
}

func TestAttachPaymentMethod(t *testing.T) {
	method := testutil.NewTestMethod("credit_card", 500, "EUR")
	f := newFixture(t, method)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)
	_, err = f.svc.AddItem(context.Background(), o.ID, service.AddItemRequest{
		SKU: "SKU-1", Description: "widget", UnitPrice: 9500, Quantity: 1,
	})
	require.NoError(t, err)

	p, err := f.svc.AttachPaymentMethod(context.Background(), o.ID, "credit_card", nil)
	require.NoError(t, err)

	loaded, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), loaded.Total.Amount)
	_, ok := loaded.Adjustments.FindByLabel(p.ID)
	assert.True(t, ok)

	stored, err := f.payments.GetByIdentifier(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
}

func TestAttachPaymentMethod_UnknownCode(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)

	_, err = f.svc.AttachPaymentMethod(context.Background(), o.ID, "wire", nil)
	assert.ErrorIs(t, err, domainErrors.ErrPaymentMethodUnknown)
}

func TestProcessPayment_PaysOrderInFull(t *testing.T) {
	method := testutil.NewTestMethod("credit_card", 500, "EUR", providers.WithTransactionID("T1"))
	f := newFixture(t, method)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)
	_, err = f.svc.AddItem(context.Background(), o.ID, service.AddItemRequest{
		SKU: "SKU-1", Description: "widget", UnitPrice: 9500, Quantity: 1,
	})
	require.NoError(t, err)
	p, err := f.svc.AttachPaymentMethod(context.Background(), o.ID, "credit_card", nil)
	require.NoError(t, err)
	_, err = f.svc.ApplyOrderTransition(context.Background(), o.ID, order.TransitionCheckout)
	require.NoError(t, err)

	resp, err := f.svc.ProcessPayment(context.Background(), o.ID, p.ID, "")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())
	assert.Equal(t, "T1", resp.TransactionID)

	loaded, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatePaid, loaded.State)

	stored, err := f.payments.GetByIdentifier(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatePaid, stored.State)
	require.NotNil(t, stored.Amount)
	assert.Equal(t, int64(10000), stored.Amount.Amount)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "payment.success", events[0].EventType)
	assert.Equal(t, p.ID, events[0].PaymentID)
}

func TestProcessPayment_Declined(t *testing.T) {
	method := testutil.NewTestMethod("credit_card", 0, "EUR", providers.WithDecline("do not honor"))
	f := newFixture(t, method)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)
	_, err = f.svc.AddItem(context.Background(), o.ID, service.AddItemRequest{
		SKU: "SKU-1", Description: "widget", UnitPrice: 1000, Quantity: 1,
	})
	require.NoError(t, err)
	p, err := f.svc.AttachPaymentMethod(context.Background(), o.ID, "credit_card", nil)
	require.NoError(t, err)
	_, err = f.svc.ApplyOrderTransition(context.Background(), o.ID, order.TransitionCheckout)
	require.NoError(t, err)

	resp, err := f.svc.ProcessPayment(context.Background(), o.ID, p.ID, "")
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess())

	loaded, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StateCheckout, loaded.State, "declined charge does not advance the order")

	stored, err := f.payments.GetByIdentifier(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Transactions, 1, "the decline is on record")

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "payment.failed", events[0].EventType)
}

func TestProcessPayment_CommunicationErrorPersistsLedger(t *testing.T) {
	method := testutil.NewTestMethod("credit_card", 0, "EUR",
		providers.WithCommunicationError(errors.New("gateway timeout")))
	f := newFixture(t, method)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)
	_, err = f.svc.AddItem(context.Background(), o.ID, service.AddItemRequest{
		SKU: "SKU-1", Description: "widget", UnitPrice: 1000, Quantity: 1,
	})
	require.NoError(t, err)
	p, err := f.svc.AttachPaymentMethod(context.Background(), o.ID, "credit_card", nil)
	require.NoError(t, err)
	_, err = f.svc.ApplyOrderTransition(context.Background(), o.ID, order.TransitionCheckout)
	require.NoError(t, err)

	var saves int
	f.payments.SaveFunc = func(ctx context.Context, saved *payment.Payment) error {
		saves++
		f.payments.AddPayment(o.ID, saved)
		return nil
	}

	_, err = f.svc.ProcessPayment(context.Background(), o.ID, p.ID, "")
	require.ErrorIs(t, err, domainErrors.ErrProviderCommunication)

	assert.GreaterOrEqual(t, saves, 1, "the inconclusive attempt must reach storage")

	stored, err := f.payments.GetByIdentifier(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Transactions, 1)
	assert.Equal(t, providers.StatusFailed, stored.Transactions[0].Status)

	loaded, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StateCheckout, loaded.State)
}

func TestProcessPayment_NotOnOrder(t *testing.T) {
	method := testutil.NewTestMethod("credit_card", 0, "EUR")
	f := newFixture(t, method)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)

	stray := payment.New(method)
	f.payments.AddPayment(uuid.New(), stray)

	_, err = f.svc.ProcessPayment(context.Background(), o.ID, stray.ID, "")
	assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)
}

func TestProcessPayment_PersistFailureDetachesFreshSurcharge(t *testing.T) {
	method := testutil.NewTestMethod("credit_card", 500, "EUR")
	f := newFixture(t, method)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)
	_, err = f.svc.AddItem(context.Background(), o.ID, service.AddItemRequest{
		SKU: "SKU-1", Description: "widget", UnitPrice: 9500, Quantity: 1,
	})
	require.NoError(t, err)

	// Payment registered on the order but never attached, so processing
	// creates the surcharge itself.
	p := payment.New(method)
	loaded, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	loaded.AddPayment(p)
	f.payments.AddPayment(o.ID, p)

	f.payments.SaveFunc = func(ctx context.Context, p *payment.Payment) error {
		return errors.New("connection lost")
	}

	_, err = f.svc.ProcessPayment(context.Background(), o.ID, p.ID, "")
	require.Error(t, err)

	// The compensation removed the surcharge added during this attempt.
	after, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	_, ok := after.Adjustments.FindByLabel(p.ID)
	assert.False(t, ok)
	assert.Equal(t, int64(9500), after.Total.Amount)
}

func TestApplyOrderTransition_Illegal(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.CreateOrder(context.Background(), "EUR")
	require.NoError(t, err)

	_, err = f.svc.ApplyOrderTransition(context.Background(), o.ID, order.TransitionShip)
	assert.Error(t, err)

	loaded, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StateCart, loaded.State)
}
