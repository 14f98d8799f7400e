package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/google/uuid"
)

// Call records one invocation against a MockProvider.
type Call struct {
	Action string
	Amount money.Money
	Opts   Options
}

// MockProvider is a scriptable in-memory gateway for tests and local runs.
// By default every operation succeeds with a generated transaction id.
type MockProvider struct {
	name          string
	latency       time.Duration
	declineReason string
	redirectURL   string
	commErr       error
	transactionID string

	mu    sync.Mutex
	calls []Call
}

type MockProviderOption func(*MockProvider)

// WithLatency makes every operation sleep before responding.
func WithLatency(d time.Duration) MockProviderOption {
	return func(p *MockProvider) { p.latency = d }
}

// WithDecline makes every operation return a failed response.
func WithDecline(reason string) MockProviderOption {
	return func(p *MockProvider) { p.declineReason = reason }
}

// WithRedirect makes purchase and authorize return a redirect response.
func WithRedirect(url string) MockProviderOption {
	return func(p *MockProvider) { p.redirectURL = url }
}

// WithCommunicationError makes every operation fail at the transport level.
func WithCommunicationError(err error) MockProviderOption {
	return func(p *MockProvider) { p.commErr = err }
}

// WithTransactionID fixes the transaction id instead of generating one.
func WithTransactionID(id string) MockProviderOption {
	return func(p *MockProvider) { p.transactionID = id }
}

func NewMockProvider(name string, opts ...MockProviderOption) *MockProvider {
	p := &MockProvider{name: name}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *MockProvider) Name() string { return p.name }

// Calls returns the recorded invocations.
func (p *MockProvider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *MockProvider) Purchase(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return p.respond(ctx, ActionPurchase, amount, opts, true)
}

func (p *MockProvider) Authorize(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return p.respond(ctx, ActionAuthorize, amount, opts, true)
}

func (p *MockProvider) Capture(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return p.respond(ctx, ActionCapture, amount, opts, false)
}

func (p *MockProvider) Void(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return p.respond(ctx, ActionVoid, amount, opts, false)
}

func (p *MockProvider) Credit(ctx context.Context, amount money.Money, opts Options) (*Response, error) {
	return p.respond(ctx, ActionCredit, amount, opts, false)
}

func (p *MockProvider) respond(ctx context.Context, action string, amount money.Money, opts Options, redirectable bool) (*Response, error) {
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return nil, fmt.Errorf("%s %s: %w", p.name, action, domainErrors.ErrProviderCommunication)
		}
	}

	p.mu.Lock()
	p.calls = append(p.calls, Call{Action: action, Amount: amount, Opts: opts})
	p.mu.Unlock()

	if p.commErr != nil {
		return nil, p.commErr
	}
	if p.declineReason != "" {
		return Failure(p.declineReason), nil
	}
	if redirectable && p.redirectURL != "" {
		return Redirect(p.txID(), p.redirectURL), nil
	}
	return Success(p.txID()), nil
}

func (p *MockProvider) txID() string {
	if p.transactionID != "" {
		return p.transactionID
	}
	return fmt.Sprintf("%s_txn_%s", p.name, uuid.NewString()[:8])
}
