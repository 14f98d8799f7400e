package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository loads and saves payments as whole aggregates, transactions
// included, keyed by the payment identifier.
type Repository interface {
	Create(ctx context.Context, orderID uuid.UUID, p *Payment) error
	GetByIdentifier(ctx context.Context, identifier string) (*Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)
	Save(ctx context.Context, p *Payment) error
}
