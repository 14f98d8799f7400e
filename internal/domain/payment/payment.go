// Package payment holds the Payment aggregate: one attempt, possibly
// multi-step, to collect money against an order through a payment method.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/providers"
	"github.com/google/uuid"
)

// IdentifierFunc generates payment identifiers. Injected so construction
// stays deterministic under test.
type IdentifierFunc func() string

// DefaultIdentifier is the production identifier generator.
func DefaultIdentifier() string {
	return uuid.NewString()
}

// Payment drives money movement against an order. Its identifier is
// generated at construction, never changes, and is reused as the label of
// the surcharge adjustment it creates on the order — which is how the
// payment finds and removes "its" adjustment on detach.
//
// Amount is optional: nil means "charge the order's current total". On the
// first successful charge the computed amount is frozen onto the payment
// so later order mutations cannot retroactively change what was charged.
type Payment struct {
	ID           string
	State        State
	Amount       *money.Money
	Frozen       bool
	Method       *Method
	Order        *order.Order
	Transactions []Transaction
	LastResponse *providers.Response
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Option configures a payment at construction.
type Option func(*Payment)

// WithAmount sets an explicit amount (e.g. cash on delivery), overriding
// the order total.
func WithAmount(amount money.Money) Option {
	return func(p *Payment) {
		a := amount
		p.Amount = &a
	}
}

// WithIdentifierFunc overrides identifier generation.
func WithIdentifierFunc(fn IdentifierFunc) Option {
	return func(p *Payment) {
		p.ID = fn()
	}
}

// New creates an unpaid payment for the given method.
func New(method *Method, opts ...Option) *Payment {
	now := time.Now()
	p := &Payment{
		ID:        DefaultIdentifier(),
		State:     StateUnpaid,
		Method:    method,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Identifier returns the payment's stable identifier.
func (p *Payment) Identifier() string { return p.ID }

// SettledAmount returns the amount this payment holds against the order
// balance: its frozen amount once the payment is authorized or paid.
func (p *Payment) SettledAmount() (money.Money, bool) {
	if p.Amount == nil {
		return money.Money{}, false
	}
	if p.State != StateAuthorized && p.State != StatePaid {
		return money.Money{}, false
	}
	return *p.Amount, true
}

// AttachOrder sets the order back-reference and, if the method carries a
// non-zero cost, creates the surcharge adjustment labeled with this
// payment's identifier. Attaching twice is a no-op; the adjustment is
// created at most once.
func (p *Payment) AttachOrder(o *order.Order) error {
	p.Order = o
	if p.Method == nil || p.Method.Cost.IsZero() {
		return nil
	}
	if _, ok := o.Adjustments.FindByLabel(p.ID); ok {
		return nil
	}
	return o.AddAdjustment(order.Adjustment{Label: p.ID, Amount: p.Method.Cost})
}

// DetachOrder removes the surcharge adjustment this payment created and
// clears the order reference. When no such adjustment exists — the method
// was free of cost, or the payment was never attached — it reports false
// and mutates nothing. The transaction history is retained either way.
func (p *Payment) DetachOrder() bool {
	if p.Order == nil {
		return false
	}
	if !p.Order.RemoveAdjustment(p.ID) {
		return false
	}
	p.Order = nil
	p.touch()
	return true
}

// Process runs one provider invocation. The action defaults to the
// method's action when empty.
//
// The resulting state transition is validated against the state table
// before the provider is called, so no money moves for a charge whose
// outcome could not be applied. Exactly one Transaction is appended per
// invocation, whatever the outcome.
//
// A declined charge is returned as a failed Response with a nil error —
// callers check the response, and every attempt stays inspectable in the
// transaction ledger. Errors are reserved for configuration faults and
// transport failures.
func (p *Payment) Process(ctx context.Context, action string) (*providers.Response, error) {
	if p.Method == nil {
		return nil, errors.ErrMissingPaymentMethod
	}

	amount, err := p.chargeableAmount()
	if err != nil {
		return nil, err
	}

	if action == "" {
		action = p.Method.Action
	}

	op, err := providers.Dispatch(p.Method.Provider, action)
	if err != nil {
		return nil, err
	}

	if _, err := Transitions.Apply(p.State, action); err != nil {
		return nil, err
	}

	resp, err := op(ctx, amount, p.options())
	if err != nil {
		// The attempt still enters the ledger so a retry after a
		// timeout is auditable and cannot silently double-charge.
		p.appendTransaction(amount, &providers.Response{Status: providers.StatusFailed, Reason: err.Error()})
		return nil, fmt.Errorf("%s %s: %v: %w", p.Method.Provider.Name(), action, err, errors.ErrProviderCommunication)
	}

	p.appendTransaction(amount, resp)

	switch {
	case resp.IsRedirect():
		if next, err := Transitions.Apply(p.State, TransitionRedirect); err == nil {
			p.State = next
		}
		p.touch()
		return resp, nil

	case resp.IsSuccess():
		if p.Amount == nil {
			p.Amount = &amount
			p.Frozen = true
		}
		p.LastResponse = resp
		next, err := Transitions.Apply(p.State, action)
		if err != nil {
			return nil, err
		}
		p.State = next
		p.touch()
		return resp, nil

	default:
		p.touch()
		return resp, nil
	}
}

// chargeableAmount is the explicit amount if set, the order total
// otherwise, plus the method's cost. When the cost already sits on the
// attached order as this payment's adjustment it is part of the total and
// must not be added a second time.
func (p *Payment) chargeableAmount() (money.Money, error) {
	if p.Amount != nil {
		if p.Frozen {
			// A frozen amount is what was actually charged, cost
			// included; a capture or credit reuses it verbatim.
			return *p.Amount, nil
		}
		return p.Amount.Add(p.Method.Cost)
	}
	if p.Order == nil {
		return money.Money{}, errors.ErrMissingAmount
	}
	if _, ok := p.Order.Adjustments.FindByLabel(p.ID); ok {
		return p.Order.Total, nil
	}
	return p.Order.Total.Add(p.Method.Cost)
}

// options collects additional data to pass to the provider.
func (p *Payment) options() providers.Options {
	opts := providers.Options{"payment_id": p.ID}
	if p.Order != nil {
		opts["order_id"] = p.Order.ID.String()
	}
	return opts
}

func (p *Payment) appendTransaction(amount money.Money, resp *providers.Response) {
	p.Transactions = append(p.Transactions, Transaction{
		PaymentID:     p.ID,
		Amount:        amount,
		TransactionID: resp.TransactionID,
		Status:        resp.Status,
		Reason:        resp.Reason,
		CreatedAt:     time.Now(),
	})
	p.touch()
}

// ContainsTransaction reports whether a transaction with the given
// provider transaction id is in the ledger.
func (p *Payment) ContainsTransaction(transactionID string) bool {
	for _, tx := range p.Transactions {
		if tx.TransactionID == transactionID {
			return true
		}
	}
	return false
}

// Apply applies a named transition without processing, e.g. when an
// asynchronous redirect flow is confirmed by a webhook. Reaching a settled
// state freezes the amount of the last provider attempt: the confirmation
// settles what was actually sent to the gateway, not whatever the order
// totals by then.
func (p *Payment) Apply(transition string) error {
	next, err := Transitions.Apply(p.State, transition)
	if err != nil {
		return err
	}
	p.State = next
	if p.Amount == nil && (next == StateAuthorized || next == StatePaid) {
		if n := len(p.Transactions); n > 0 {
			amount := p.Transactions[n-1].Amount
			p.Amount = &amount
			p.Frozen = true
		}
	}
	p.touch()
	return nil
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now()
}
