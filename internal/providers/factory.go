package providers

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/sony/gobreaker/v2"
)

// Factory is the provider registry. Every registered provider is wrapped
// in its own circuit breaker; a tripped breaker surfaces as
// ErrProviderUnavailable without reaching the gateway.
type Factory struct {
	providers       map[string]Provider
	circuitBreakers map[string]*gobreaker.CircuitBreaker[*Response]
}

func NewFactory(providersList ...Provider) *Factory {
	f := &Factory{
		providers:       make(map[string]Provider),
		circuitBreakers: make(map[string]*gobreaker.CircuitBreaker[*Response]),
	}
	for _, p := range providersList {
		f.Register(p)
	}
	return f
}

func (f *Factory) Register(p Provider) {
	f.providers[p.Name()] = p
	f.circuitBreakers[p.Name()] = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})
}

// Get returns the named provider wrapped in its circuit breaker.
func (f *Factory) Get(name string) (Provider, error) {
	p, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", name, domainErrors.ErrProviderNotFound)
	}
	return &breakered{inner: p, breaker: f.circuitBreakers[name]}, nil
}

// Names lists the registered provider names.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	return names
}

// breakered routes every capability through the provider's breaker.
// Declined responses are not breaker failures; only transport errors are.
type breakered struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[*Response]
}

func (b *breakered) Name() string { return b.inner.Name() }

func (b *breakered) execute(op Operation, ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	resp, err := b.breaker.Execute(func() (*Response, error) {
		return op(ctx, amount, opts)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("%s: %w", b.inner.Name(), domainErrors.ErrProviderUnavailable)
	}
	return resp, err
}

func (b *breakered) Purchase(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return b.execute(b.inner.Purchase, ctx, amount, opts)
}

func (b *breakered) Authorize(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return b.execute(b.inner.Authorize, ctx, amount, opts)
}

func (b *breakered) Capture(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return b.execute(b.inner.Capture, ctx, amount, opts)
}

func (b *breakered) Void(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return b.execute(b.inner.Void, ctx, amount, opts)
}

func (b *breakered) Credit(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return b.execute(b.inner.Credit, ctx, amount, opts)
}
