package providers_test

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(cents int64) money.Money { return money.New(cents, "USD") }

func TestDispatch_KnownActions(t *testing.T) {
	p := providers.NewMockProvider("gw")
	for _, action := range []string{
		providers.ActionPurchase,
		providers.ActionAuthorize,
		providers.ActionCapture,
		providers.ActionVoid,
		providers.ActionCredit,
	} {
		op, err := providers.Dispatch(p, action)
		require.NoError(t, err, action)
		require.NotNil(t, op, action)
	}
}

func TestDispatch_UnknownAction(t *testing.T) {
	p := providers.NewMockProvider("gw")

	op, err := providers.Dispatch(p, "settle")
	assert.ErrorIs(t, err, domainErrors.ErrUnsupportedAction)
	assert.Nil(t, op)
	assert.Empty(t, p.Calls(), "rejected at dispatch, never reaches the gateway")
}

func TestMockProvider_DefaultSuccess(t *testing.T) {
	p := providers.NewMockProvider("stripe")

	resp, err := p.Purchase(context.Background(), usd(1000), providers.Options{"order_id": "o1"})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Contains(t, resp.TransactionID, "stripe_txn_")

	calls := p.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, providers.ActionPurchase, calls[0].Action)
	assert.Equal(t, usd(1000), calls[0].Amount)
	assert.Equal(t, "o1", calls[0].Opts["order_id"])
}

func TestMockProvider_Decline(t *testing.T) {
	p := providers.NewMockProvider("gw", providers.WithDecline("card expired"))

	resp, err := p.Authorize(context.Background(), usd(500), nil)
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, "card expired", resp.Reason)
}

func TestMockProvider_RedirectOnlyOnInitialActions(t *testing.T) {
	p := providers.NewMockProvider("gw",
		providers.WithRedirect("https://3ds.example/verify"),
		providers.WithTransactionID("R1"),
	)

	resp, err := p.Purchase(context.Background(), usd(500), nil)
	require.NoError(t, err)
	assert.True(t, resp.IsRedirect())
	assert.Equal(t, "https://3ds.example/verify", resp.RedirectURL)

	// Capture, void and credit operate on an existing transaction and
	// never redirect.
	resp, err = p.Capture(context.Background(), usd(500), nil)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestFactory_Get(t *testing.T) {
	f := providers.NewFactory(providers.NewMockProvider("stripe"), providers.NewMockProvider("paypal"))

	p, err := f.Get("stripe")
	require.NoError(t, err)
	assert.Equal(t, "stripe", p.Name())

	resp, err := p.Purchase(context.Background(), usd(100), nil)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	assert.ElementsMatch(t, []string{"stripe", "paypal"}, f.Names())
}

func TestFactory_Get_Unknown(t *testing.T) {
	f := providers.NewFactory()

	_, err := f.Get("adyen")
	assert.ErrorIs(t, err, domainErrors.ErrProviderNotFound)
}

func TestFactory_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	boom := errors.New("connection refused")
	f := providers.NewFactory(providers.NewMockProvider("flaky", providers.WithCommunicationError(boom)))

	p, err := f.Get("flaky")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := p.Purchase(context.Background(), usd(100), nil)
		require.ErrorIs(t, err, boom)
	}

	// The breaker has tripped: subsequent calls are rejected up front.
	_, err = p.Purchase(context.Background(), usd(100), nil)
	assert.ErrorIs(t, err, domainErrors.ErrProviderUnavailable)
}

func TestFactory_DeclinesDoNotTripBreaker(t *testing.T) {
	f := providers.NewFactory(providers.NewMockProvider("gw", providers.WithDecline("do not honor")))

	p, err := f.Get("gw")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		resp, err := p.Purchase(context.Background(), usd(100), nil)
		require.NoError(t, err)
		require.False(t, resp.IsSuccess())
	}
}
