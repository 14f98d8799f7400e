// Package providers defines the payment-provider contract: a fixed
// capability set of named operations, the response variants they produce,
// and the closed dispatch from action name to operation.
package providers

import (
	"context"
	"fmt"

	"github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
)

// The capability set. Every provider implements exactly these actions;
// dispatch rejects anything else before a side effect can happen.
const (
	ActionPurchase  = "purchase"
	ActionAuthorize = "authorize"
	ActionCapture   = "capture"
	ActionVoid      = "void"
	ActionCredit    = "credit"
)

// Status classifies a provider response.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRedirect Status = "redirect"
)

// Options carries additional data for the gateway: billing address,
// customer info, order number and the like.
type Options map[string]any

// Response is the outcome of one provider invocation.
type Response struct {
	TransactionID string
	Status        Status
	RedirectURL   string
	Reason        string
}

// IsSuccess reports a confirmed successful outcome.
func (r *Response) IsSuccess() bool { return r.Status == StatusSuccess }

// IsRedirect reports an asynchronous redirect-style outcome: the customer
// must complete the flow at RedirectURL before the payment finalizes.
func (r *Response) IsRedirect() bool { return r.Status == StatusRedirect }

// Success builds a successful response.
func Success(transactionID string) *Response {
	return &Response{TransactionID: transactionID, Status: StatusSuccess}
}

// Failure builds a declined response.
func Failure(reason string) *Response {
	return &Response{Status: StatusFailed, Reason: reason}
}

// Redirect builds a redirect response.
func Redirect(transactionID, url string) *Response {
	return &Response{TransactionID: transactionID, Status: StatusRedirect, RedirectURL: url}
}

// Provider is the external gateway abstraction that actually moves money.
// Implementations are injected, never constructed by the core.
type Provider interface {
	Name() string
	Purchase(ctx context.Context, amount money.Money, opts Options) (*Response, error)
	Authorize(ctx context.Context, amount money.Money, opts Options) (*Response, error)
	Capture(ctx context.Context, amount money.Money, opts Options) (*Response, error)
	Void(ctx context.Context, amount money.Money, opts Options) (*Response, error)
	Credit(ctx context.Context, amount money.Money, opts Options) (*Response, error)
}

// Operation is one bound provider capability.
type Operation func(ctx context.Context, amount money.Money, opts Options) (*Response, error)

// Dispatch resolves an action name against the provider's capability set.
// The mapping is closed: an unknown name fails with ErrUnsupportedAction
// at dispatch time, before any network call is made.
func Dispatch(p Provider, action string) (Operation, error) {
	ops := map[string]Operation{
		ActionPurchase:  p.Purchase,
		ActionAuthorize: p.Authorize,
		ActionCapture:   p.Capture,
		ActionVoid:      p.Void,
		ActionCredit:    p.Credit,
	}
	op, ok := ops[action]
	if !ok {
		return nil, fmt.Errorf("action %q: %w", action, errors.ErrUnsupportedAction)
	}
	return op, nil
}
