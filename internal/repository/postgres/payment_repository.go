package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/providers"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository implements payment.Repository. Method bindings are
// configuration, not data: on load the stored method code is resolved
// back to the configured method through the resolver.
type PaymentRepository struct {
	pool    *pgxpool.Pool
	methods payment.Resolver
}

func NewPaymentRepository(pool *pgxpool.Pool, methods payment.Resolver) *PaymentRepository {
	return &PaymentRepository{pool: pool, methods: methods}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *PaymentRepository) Create(ctx context.Context, orderID uuid.UUID, p *payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, order_id, state, amount, currency, frozen, method_code,
		  last_transaction_id, last_status, last_reason, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		r.insertArgs(orderID, p)...,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("payment %s already exists: %w", p.ID, domainErrors.ErrInvalidInput)
		}
		return fmt.Errorf("insert payment: %w", err)
	}

	return r.saveTransactions(ctx, p)
}

func (r *PaymentRepository) GetByIdentifier(ctx context.Context, identifier string) (*payment.Payment, error) {
	p, err := r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT id, state, amount, currency, frozen, method_code,
		        last_transaction_id, last_status, last_reason, created_at, updated_at
		 FROM payments WHERE id = $1`, identifier))
	if err != nil {
		return nil, err
	}
	if err := r.loadTransactions(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*payment.Payment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, state, amount, currency, frozen, method_code,
		        last_transaction_id, last_status, last_reason, created_at, updated_at
		 FROM payments WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range payments {
		if err := r.loadTransactions(ctx, p); err != nil {
			return nil, err
		}
	}
	return payments, nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	var amount *string
	currency := ""
	if p.Amount != nil {
		s := centsToNumeric(p.Amount.Amount)
		amount = &s
		currency = p.Amount.Currency
	}

	var lastTxID, lastStatus, lastReason *string
	if p.LastResponse != nil {
		lastTxID = &p.LastResponse.TransactionID
		s := string(p.LastResponse.Status)
		lastStatus = &s
		lastReason = &p.LastResponse.Reason
	}

	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET
		  state=$1, amount=$2, currency=$3, frozen=$4,
		  last_transaction_id=$5, last_status=$6, last_reason=$7, updated_at=$8
		 WHERE id=$9`,
		string(p.State), amount, currency, p.Frozen,
		lastTxID, lastStatus, lastReason, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}

	return r.saveTransactions(ctx, p)
}

// saveTransactions appends ledger rows not yet stored. The ledger is
// append-only, so rows are keyed by position.
func (r *PaymentRepository) saveTransactions(ctx context.Context, p *payment.Payment) error {
	var stored int
	err := r.db(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_transactions WHERE payment_id=$1`, p.ID,
	).Scan(&stored)
	if err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}

	for i := stored; i < len(p.Transactions); i++ {
		tx := p.Transactions[i]
		if _, err := r.db(ctx).Exec(ctx,
			`INSERT INTO payment_transactions
			 (payment_id, position, amount, currency, transaction_id, status, reason, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			p.ID, i, centsToNumeric(tx.Amount.Amount), tx.Amount.Currency,
			tx.TransactionID, string(tx.Status), tx.Reason, tx.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}
	return nil
}

func (r *PaymentRepository) loadTransactions(ctx context.Context, p *payment.Payment) error {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT amount, currency, transaction_id, status, reason, created_at
		 FROM payment_transactions WHERE payment_id=$1 ORDER BY position`, p.ID)
	if err != nil {
		return fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		tx := payment.Transaction{PaymentID: p.ID}
		var amount, currency, status string
		if err := rows.Scan(&amount, &currency, &tx.TransactionID, &status, &tx.Reason, &tx.CreatedAt); err != nil {
			return fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Amount, err = numericToMoney(amount, currency); err != nil {
			return err
		}
		tx.Status = providers.Status(status)
		p.Transactions = append(p.Transactions, tx)
	}
	return rows.Err()
}

func (r *PaymentRepository) insertArgs(orderID uuid.UUID, p *payment.Payment) []any {
	var amount *string
	currency := ""
	if p.Amount != nil {
		s := centsToNumeric(p.Amount.Amount)
		amount = &s
		currency = p.Amount.Currency
	}

	var lastTxID, lastStatus, lastReason *string
	if p.LastResponse != nil {
		lastTxID = &p.LastResponse.TransactionID
		s := string(p.LastResponse.Status)
		lastStatus = &s
		lastReason = &p.LastResponse.Reason
	}

	methodCode := ""
	if p.Method != nil {
		methodCode = p.Method.Code
	}

	return []any{
		p.ID, orderID, string(p.State), amount, currency, p.Frozen, methodCode,
		lastTxID, lastStatus, lastReason, p.CreatedAt, p.UpdatedAt,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PaymentRepository) scanPayment(s scanner) (*payment.Payment, error) {
	p := &payment.Payment{}
	var (
		state      string
		amount     *string
		currency   string
		methodCode string
		lastTxID   *string
		lastStatus *string
		lastReason *string
	)
	err := s.Scan(
		&p.ID, &state, &amount, &currency, &p.Frozen, &methodCode,
		&lastTxID, &lastStatus, &lastReason, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	p.State = payment.State(state)
	if amount != nil {
		m, err := numericToMoney(*amount, currency)
		if err != nil {
			return nil, fmt.Errorf("payment amount: %w", err)
		}
		p.Amount = &m
	}
	if lastStatus != nil {
		p.LastResponse = &providers.Response{Status: providers.Status(*lastStatus)}
		if lastTxID != nil {
			p.LastResponse.TransactionID = *lastTxID
		}
		if lastReason != nil {
			p.LastResponse.Reason = *lastReason
		}
	}

	if methodCode != "" {
		method, err := r.methods.Resolve(methodCode)
		if err != nil {
			return nil, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		p.Method = method
	}

	return p, nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
