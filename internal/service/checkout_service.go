// Package service orchestrates the checkout flow over the order and
// payment aggregates: loading, mutating under a per-order lock, charging
// through providers and persisting the outcome.
package service

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/infrastructure/observability"
	"github.com/commercekit/checkout/internal/providers"
	"github.com/commercekit/checkout/pkg/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutService is the application service for the checkout flow.
type CheckoutService struct {
	orders    order.Repository
	payments  payment.Repository
	methods   payment.Resolver
	factory   *providers.Factory
	txManager TransactionManager
	locker    Locker
	publisher EventPublisher
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

func NewCheckoutService(
	orders order.Repository,
	payments payment.Repository,
	methods payment.Resolver,
	factory *providers.Factory,
	txManager TransactionManager,
	locker Locker,
	publisher EventPublisher,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		payments:  payments,
		methods:   methods,
		factory:   factory,
		txManager: txManager,
		locker:    locker,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "checkout_service").Logger(),
	}
}

// CreateOrder starts an empty order in the given currency.
func (s *CheckoutService) CreateOrder(ctx context.Context, currency string) (*order.Order, error) {
	if err := (money.Money{Currency: currency}).Validate(); err != nil {
		return nil, err
	}

	o := order.New(currency)
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info().Str("order_id", o.ID.String()).Str("currency", currency).Msg("order created")
	return o, nil
}

// GetOrder loads an order with its payments.
func (s *CheckoutService) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// AddItemRequest describes a line to place on an order.
type AddItemRequest struct {
	SKU         string
	Description string
	UnitPrice   int64
	Quantity    int
}

// AddItem places a line on the order, merging with an existing line for
// the same SKU.
func (s *CheckoutService) AddItem(ctx context.Context, orderID uuid.UUID, req AddItemRequest) (*order.Order, error) {
	var o *order.Order
	err := s.withOrder(ctx, orderID, func(ctx context.Context, loaded *order.Order) error {
		product := order.Product{
			Code:  req.SKU,
			Name:  req.Description,
			Price: money.New(req.UnitPrice, loaded.Currency),
		}
		if _, err := loaded.AddItem(product, req.Quantity); err != nil {
			return err
		}
		o = loaded
		return s.orders.Save(ctx, loaded)
	})
	return o, err
}

// RemoveItem removes the line with the given SKU.
func (s *CheckoutService) RemoveItem(ctx context.Context, orderID uuid.UUID, sku string) (*order.Order, error) {
	var o *order.Order
	err := s.withOrder(ctx, orderID, func(ctx context.Context, loaded *order.Order) error {
		item, ok := loaded.ContainsItem(sku)
		if !ok {
			return domainErrors.ErrItemNotFound
		}
		loaded.RemoveItem(item)
		o = loaded
		return s.orders.Save(ctx, loaded)
	})
	return o, err
}

// SetShipping creates one shipment carrying every current line and puts
// its cost on the order.
func (s *CheckoutService) SetShipping(ctx context.Context, orderID uuid.UUID, method order.ShippingMethod) (*order.Order, error) {
	var o *order.Order
	err := s.withOrder(ctx, orderID, func(ctx context.Context, loaded *order.Order) error {
		shipment := order.NewShipment(method)
		for _, item := range loaded.Items {
			shipment.AddItem(item)
		}
		if err := loaded.AddShipment(shipment); err != nil {
			return err
		}
		o = loaded
		return s.orders.Save(ctx, loaded)
	})
	return o, err
}

// AttachPaymentMethod creates a payment for the configured method code and
// attaches it to the order. A nil amount means the payment charges the
// order total at processing time.
func (s *CheckoutService) AttachPaymentMethod(ctx context.Context, orderID uuid.UUID, methodCode string, amount *int64) (*payment.Payment, error) {
	method, err := s.methods.Resolve(methodCode)
	if err != nil {
		return nil, err
	}

	var p *payment.Payment
	err = s.withOrder(ctx, orderID, func(ctx context.Context, loaded *order.Order) error {
		var opts []payment.Option
		if amount != nil {
			opts = append(opts, payment.WithAmount(money.New(*amount, loaded.Currency)))
		}

		p = payment.New(method, opts...)
		if err := p.AttachOrder(loaded); err != nil {
			return err
		}
		loaded.AddPayment(p)

		return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.payments.Create(ctx, loaded.ID, p); err != nil {
				return err
			}
			return s.orders.Save(ctx, loaded)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("payment_id", p.ID).
		Str("method", methodCode).
		Msg("payment method attached")
	return p, nil
}

// DetachPayment removes a not-yet-settled payment and its cost adjustment
// from the order.
func (s *CheckoutService) DetachPayment(ctx context.Context, orderID uuid.UUID, paymentID string) error {
	return s.withOrder(ctx, orderID, func(ctx context.Context, loaded *order.Order) error {
		p, err := s.payments.GetByIdentifier(ctx, paymentID)
		if err != nil {
			return err
		}
		if _, settled := p.SettledAmount(); settled {
			return domainErrors.NewDomainError("payment_settled", "cannot detach a settled payment", nil)
		}

		p.Order = loaded
		p.DetachOrder()
		loaded.RemovePayment(paymentID)

		return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.payments.Save(ctx, p); err != nil {
				return err
			}
			return s.orders.Save(ctx, loaded)
		})
	})
}

// ProcessPayment runs one provider invocation for the named payment under
// the order's lock. The action defaults to the method's configured action.
//
// The charge is wrapped in a saga: when persisting the outcome fails after
// a fresh attachment, the attachment is rolled back so the order is not
// left carrying a surcharge for a payment that was never recorded.
func (s *CheckoutService) ProcessPayment(ctx context.Context, orderID uuid.UUID, paymentID, action string) (*providers.Response, error) {
	start := time.Now()

	var resp *providers.Response
	err := s.withOrder(ctx, orderID, func(ctx context.Context, loaded *order.Order) error {
		p, err := s.payments.GetByIdentifier(ctx, paymentID)
		if err != nil {
			return err
		}
		if _, ok := loaded.FindPayment(paymentID); !ok {
			return domainErrors.ErrPaymentNotFound
		}

		attached := false
		checkout := saga.New("process-payment").
			AddStep(saga.Step{
				Name: "attach",
				Execute: func(ctx context.Context) error {
					hadAdjustment := false
					if _, ok := loaded.Adjustments.FindByLabel(p.ID); ok {
						hadAdjustment = true
					}
					if err := p.AttachOrder(loaded); err != nil {
						return err
					}
					attached = !hadAdjustment
					return nil
				},
				Compensate: func(ctx context.Context) error {
					if attached {
						p.DetachOrder()
					}
					return nil
				},
			}).
			AddStep(saga.Step{
				Name: "charge",
				Execute: func(ctx context.Context) error {
					r, err := p.Process(ctx, action)
					if err != nil {
						// An inconclusive attempt still appended a ledger
						// record; it must reach storage before the error
						// surfaces or a retry is not auditable.
						if saveErr := s.payments.Save(ctx, p); saveErr != nil {
							s.logger.Error().Err(saveErr).Str("payment_id", p.ID).Msg("failed to persist transaction after provider error")
						}
						return err
					}
					resp = r
					return nil
				},
				// A completed provider call is never unwound here: the
				// transaction ledger is the record for manual follow-up.
			}).
			AddStep(saga.Step{
				Name: "persist",
				Execute: func(ctx context.Context) error {
					return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
						if err := s.payments.Save(ctx, p); err != nil {
							return err
						}
						return s.orders.Save(ctx, loaded)
					})
				},
			})

		if _, err := checkout.Execute(ctx); err != nil {
			return err
		}

		s.advanceOrder(loaded, p)
		if err := s.orders.Save(ctx, loaded); err != nil {
			return err
		}

		s.publishOutcome(ctx, p, resp)
		return nil
	})
	if err != nil {
		s.metrics.PaymentsTotal.WithLabelValues(action, "error").Inc()
		return nil, err
	}

	s.metrics.PaymentsTotal.WithLabelValues(action, string(resp.Status)).Inc()
	s.metrics.PaymentDuration.WithLabelValues(action, string(resp.Status)).Observe(time.Since(start).Seconds())
	return resp, nil
}

// ApplyOrderTransition applies a named transition to the order.
func (s *CheckoutService) ApplyOrderTransition(ctx context.Context, orderID uuid.UUID, transition string) (*order.Order, error) {
	var o *order.Order
	err := s.withOrder(ctx, orderID, func(ctx context.Context, loaded *order.Order) error {
		if err := loaded.Apply(transition); err != nil {
			return err
		}
		o = loaded
		return s.orders.Save(ctx, loaded)
	})
	return o, err
}

// advanceOrder moves a checkout-state order forward after a successful
// charge: paid when the balance reaches zero, partially paid otherwise.
func (s *CheckoutService) advanceOrder(o *order.Order, p *payment.Payment) {
	if _, settled := p.SettledAmount(); !settled {
		return
	}

	balance, err := o.Balance()
	if err != nil {
		return
	}

	switch {
	case balance.Amount <= 0 && o.CanApply(order.TransitionPay):
		_ = o.Apply(order.TransitionPay)
	case balance.Amount > 0 && o.CanApply(order.TransitionPartiallyPay):
		_ = o.Apply(order.TransitionPartiallyPay)
	}
}

func (s *CheckoutService) publishOutcome(ctx context.Context, p *payment.Payment, resp *providers.Response) {
	eventType := "payment." + string(resp.Status)
	data := map[string]any{
		"state":          string(p.State),
		"transaction_id": resp.TransactionID,
	}
	if p.Amount != nil {
		data["amount_cents"] = p.Amount.Amount
		data["currency"] = p.Amount.Currency
	}
	if err := s.publisher.PublishPaymentEvent(ctx, p.ID, eventType, data); err != nil {
		s.logger.Warn().Err(err).Str("payment_id", p.ID).Msg("event publish failed")
	}
}

// withOrder loads the order and runs fn under its lock.
func (s *CheckoutService) withOrder(ctx context.Context, orderID uuid.UUID, fn func(ctx context.Context, o *order.Order) error) error {
	return s.locker.WithLock(ctx, "order:"+orderID.String(), func(ctx context.Context) error {
		loaded, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		return fn(ctx, loaded)
	})
}
