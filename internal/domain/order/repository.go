package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository loads and saves orders as whole aggregates (items and
// adjustments included) keyed by order id. Serializing concurrent writers
// per aggregate is the store's responsibility, not the aggregate's.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Save(ctx context.Context, o *Order) error
}
