package service

import "context"

// TransactionManager wraps multiple repository operations in a single
// database transaction. If fn returns an error the transaction is rolled
// back, otherwise committed.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
