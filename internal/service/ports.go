package service

import "context"

// Locker serializes writers per aggregate. The production implementation
// is a redis lock keyed by order id; tests use an in-process one.
type Locker interface {
	// WithLock runs fn while holding the named lock, releasing it after.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// EventPublisher fans payment lifecycle events out to interested
// consumers (notifications, reporting). Publishing is best-effort: a
// failed publish is logged, never surfaced to the caller.
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, paymentID, eventType string, data map[string]any) error
}
