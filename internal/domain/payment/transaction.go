package payment

import (
	"time"

	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/providers"
)

// Transaction is the immutable audit record of one provider invocation
// against a payment. Exactly one is created per invocation, success or
// failure, and none is ever mutated or removed afterwards.
type Transaction struct {
	PaymentID     string
	Amount        money.Money
	TransactionID string
	Status        providers.Status
	Reason        string
	CreatedAt     time.Time
}
