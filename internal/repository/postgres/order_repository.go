package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository implements order.Repository. The aggregate is stored
// whole: Save rewrites the order's child rows in one transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO orders (id, currency, state, items_total, total, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.Currency, string(o.State),
		centsToNumeric(o.ItemsTotal.Amount), centsToNumeric(o.Total.Amount),
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o := &order.Order{}
	var state, itemsTotal, total string

	err := r.db(ctx).QueryRow(ctx,
		`SELECT id, currency, state, items_total, total, created_at, updated_at
		 FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.Currency, &state, &itemsTotal, &total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	o.State = order.State(state)
	if o.ItemsTotal, err = numericToMoney(itemsTotal, o.Currency); err != nil {
		return nil, fmt.Errorf("order items_total: %w", err)
	}
	if o.Total, err = numericToMoney(total, o.Currency); err != nil {
		return nil, fmt.Errorf("order total: %w", err)
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadAdjustments(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadShipments(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadPayments(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	// Child rows are rewritten, so the whole save must be atomic. Reuse
	// an ambient transaction when the caller opened one.
	if _, ok := ctx.Value(txKey).(pgx.Tx); ok {
		return r.save(ctx, o)
	}
	return NewTxManager(r.pool).WithTransaction(ctx, func(ctx context.Context) error {
		return r.save(ctx, o)
	})
}

func (r *OrderRepository) save(ctx context.Context, o *order.Order) error {
	db := r.db(ctx)

	tag, err := db.Exec(ctx,
		`UPDATE orders SET state=$1, items_total=$2, total=$3, updated_at=$4 WHERE id=$5`,
		string(o.State), centsToNumeric(o.ItemsTotal.Amount), centsToNumeric(o.Total.Amount),
		o.UpdatedAt, o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOrderNotFound
	}

	if _, err := db.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}
	for _, item := range o.Items {
		if _, err := db.Exec(ctx,
			`INSERT INTO order_items (order_id, sku, description, unit_price, quantity, total)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, item.SKU, item.Description,
			centsToNumeric(item.UnitPrice.Amount), item.Quantity, centsToNumeric(item.Total.Amount),
		); err != nil {
			return fmt.Errorf("insert order item %s: %w", item.SKU, err)
		}
	}

	if _, err := db.Exec(ctx, `DELETE FROM order_adjustments WHERE order_id=$1`, o.ID); err != nil {
		return fmt.Errorf("clear adjustments: %w", err)
	}
	for _, adj := range o.Adjustments {
		if _, err := db.Exec(ctx,
			`INSERT INTO order_adjustments (order_id, label, amount)
			 VALUES ($1,$2,$3)`,
			o.ID, adj.Label, centsToNumeric(adj.Amount.Amount),
		); err != nil {
			return fmt.Errorf("insert adjustment %s: %w", adj.Label, err)
		}
	}

	if _, err := db.Exec(ctx, `DELETE FROM shipment_items WHERE shipment_id IN (SELECT id FROM shipments WHERE order_id=$1)`, o.ID); err != nil {
		return fmt.Errorf("clear shipment items: %w", err)
	}
	if _, err := db.Exec(ctx, `DELETE FROM shipments WHERE order_id=$1`, o.ID); err != nil {
		return fmt.Errorf("clear shipments: %w", err)
	}
	for _, s := range o.Shipments {
		if _, err := db.Exec(ctx,
			`INSERT INTO shipments (id, order_id, method_code, method_name, cost)
			 VALUES ($1,$2,$3,$4,$5)`,
			s.Identifier, o.ID, s.Method.Code, s.Method.Name, centsToNumeric(s.Method.Cost.Amount),
		); err != nil {
			return fmt.Errorf("insert shipment %s: %w", s.Identifier, err)
		}
		for _, item := range s.Items {
			if _, err := db.Exec(ctx,
				`INSERT INTO shipment_items (shipment_id, sku) VALUES ($1,$2)`,
				s.Identifier, item.SKU,
			); err != nil {
				return fmt.Errorf("insert shipment item %s: %w", item.SKU, err)
			}
		}
	}

	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, o *order.Order) error {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT sku, description, unit_price, quantity, total
		 FROM order_items WHERE order_id=$1 ORDER BY sku`, o.ID)
	if err != nil {
		return fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &order.Item{}
		var unitPrice, total string
		if err := rows.Scan(&item.SKU, &item.Description, &unitPrice, &item.Quantity, &total); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if item.UnitPrice, err = numericToMoney(unitPrice, o.Currency); err != nil {
			return err
		}
		if item.Total, err = numericToMoney(total, o.Currency); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (r *OrderRepository) loadAdjustments(ctx context.Context, o *order.Order) error {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT label, amount FROM order_adjustments WHERE order_id=$1 ORDER BY label`, o.ID)
	if err != nil {
		return fmt.Errorf("select adjustments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label, amount string
		if err := rows.Scan(&label, &amount); err != nil {
			return fmt.Errorf("scan adjustment: %w", err)
		}
		m, err := numericToMoney(amount, o.Currency)
		if err != nil {
			return err
		}
		o.Adjustments = append(o.Adjustments, order.Adjustment{Label: label, Amount: m})
	}
	return rows.Err()
}

func (r *OrderRepository) loadShipments(ctx context.Context, o *order.Order) error {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, method_code, method_name, cost FROM shipments WHERE order_id=$1`, o.ID)
	if err != nil {
		return fmt.Errorf("select shipments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := &order.Shipment{}
		var cost string
		if err := rows.Scan(&s.Identifier, &s.Method.Code, &s.Method.Name, &cost); err != nil {
			return fmt.Errorf("scan shipment: %w", err)
		}
		if s.Method.Cost, err = numericToMoney(cost, o.Currency); err != nil {
			return err
		}
		o.Shipments = append(o.Shipments, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, s := range o.Shipments {
		itemRows, err := r.db(ctx).Query(ctx,
			`SELECT sku FROM shipment_items WHERE shipment_id=$1`, s.Identifier)
		if err != nil {
			return fmt.Errorf("select shipment items: %w", err)
		}
		for itemRows.Next() {
			var sku string
			if err := itemRows.Scan(&sku); err != nil {
				itemRows.Close()
				return fmt.Errorf("scan shipment item: %w", err)
			}
			if item, ok := o.ContainsItem(sku); ok {
				s.Items = append(s.Items, item)
			}
		}
		itemRows.Close()
		if err := itemRows.Err(); err != nil {
			return err
		}
	}
	return nil
}

// settledPayment is the order-side view of a stored payment, enough for
// balance computation.
type settledPayment struct {
	id     string
	state  payment.State
	amount *money.Money
}

func (p *settledPayment) Identifier() string { return p.id }

func (p *settledPayment) SettledAmount() (money.Money, bool) {
	if p.amount == nil {
		return money.Money{}, false
	}
	if p.state != payment.StateAuthorized && p.state != payment.StatePaid {
		return money.Money{}, false
	}
	return *p.amount, true
}

func (r *OrderRepository) loadPayments(ctx context.Context, o *order.Order) error {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, state, amount FROM payments WHERE order_id=$1 ORDER BY created_at`, o.ID)
	if err != nil {
		return fmt.Errorf("select payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &settledPayment{}
		var state string
		var amount *string
		if err := rows.Scan(&p.id, &state, &amount); err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		p.state = payment.State(state)
		if amount != nil {
			m, err := numericToMoney(*amount, o.Currency)
			if err != nil {
				return err
			}
			p.amount = &m
		}
		o.Payments = append(o.Payments, p)
	}
	return rows.Err()
}
