package testutil

import (
	"context"
	"sync"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/google/uuid"
)

// --- Order Repository Mock ---

// MockOrderRepository is an in-memory implementation of order.Repository.
type MockOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*order.Order

	CreateFunc  func(ctx context.Context, o *order.Order) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	SaveFunc    func(ctx context.Context, o *order.Order) error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[uuid.UUID]*order.Order)}
}

// AddOrder pre-populates the mock with an order.
func (m *MockOrderRepository) AddOrder(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	return o, nil
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

// --- Payment Repository Mock ---

// MockPaymentRepository is an in-memory implementation of
// payment.Repository.
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[string]*payment.Payment
	byOrder  map[uuid.UUID][]string

	CreateFunc          func(ctx context.Context, orderID uuid.UUID, p *payment.Payment) error
	GetByIdentifierFunc func(ctx context.Context, identifier string) (*payment.Payment, error)
	ListByOrderFunc     func(ctx context.Context, orderID uuid.UUID) ([]*payment.Payment, error)
	SaveFunc            func(ctx context.Context, p *payment.Payment) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*payment.Payment),
		byOrder:  make(map[uuid.UUID][]string),
	}
}

// AddPayment pre-populates the mock with a payment.
func (m *MockPaymentRepository) AddPayment(orderID uuid.UUID, p *payment.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	m.byOrder[orderID] = append(m.byOrder[orderID], p.ID)
}

func (m *MockPaymentRepository) Create(ctx context.Context, orderID uuid.UUID, p *payment.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, orderID, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	m.byOrder[orderID] = append(m.byOrder[orderID], p.ID)
	return nil
}

func (m *MockPaymentRepository) GetByIdentifier(ctx context.Context, identifier string) (*payment.Payment, error) {
	if m.GetByIdentifierFunc != nil {
		return m.GetByIdentifierFunc(ctx, identifier)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[identifier]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return p, nil
}

func (m *MockPaymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*payment.Payment, error) {
	if m.ListByOrderFunc != nil {
		return m.ListByOrderFunc(ctx, orderID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.byOrder[orderID]
	out := make([]*payment.Payment, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.payments[id])
	}
	return out, nil
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

// --- Transaction Manager Mock ---

// MockTransactionManager runs the function directly, without a database.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// --- Locker Mock ---

// MockLocker serializes per key in-process, recording acquisitions.
type MockLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	Keys  []string

	WithLockFunc func(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{locks: make(map[string]*sync.Mutex)}
}

func (m *MockLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if m.WithLockFunc != nil {
		return m.WithLockFunc(ctx, key, fn)
	}
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.Keys = append(m.Keys, key)
	m.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(ctx)
}

// --- Event Publisher Mock ---

// PublishedEvent is one recorded event.
type PublishedEvent struct {
	PaymentID string
	EventType string
	Data      map[string]any
}

// MockEventPublisher records published events.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent

	PublishFunc func(ctx context.Context, paymentID, eventType string, data map[string]any) error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) PublishPaymentEvent(ctx context.Context, paymentID, eventType string, data map[string]any) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, paymentID, eventType, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{PaymentID: paymentID, EventType: eventType, Data: data})
	return nil
}

// Events returns the recorded events.
func (m *MockEventPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}
