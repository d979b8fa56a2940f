package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"nixtia-store/internal/domain"
)

// DBPool is the subset of pgxpool.Pool the repository uses.
type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type postgresRepo struct {
	pool   DBPool
	logger *log.Logger
}

func NewPostgres(pool DBPool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// The first order of a year seeds the counter past both the orders already
// stored for that year and the highest number already issued for it, which
// older count-based numbering may have pushed ahead of the row count. The row
// lock serialises concurrent checkouts per year.
const nextSequenceSQL = `
INSERT INTO order_sequences (year, last_value, updated_at)
VALUES ($1::int, GREATEST(
    (SELECT COUNT(*) FROM orders WHERE EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC') = $1::int),
    (SELECT COALESCE(MAX(substring(order_number FROM '-([0-9]+)$')::bigint), 0) FROM orders WHERE order_number ~ ('-' || $1::int::text || '-[0-9]+$'))
) + 1, NOW())
ON CONFLICT (year) DO UPDATE SET last_value = order_sequences.last_value + 1, updated_at = NOW()
RETURNING last_value
`

const insertOrderSQL = `
INSERT INTO orders (id, order_number, customer_phone, payment_method, items_json, total_amount, payment_status, order_status, idempotency_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11)
`

const selectOrderColumns = `
SELECT id::text, order_number, customer_phone, payment_method, items_json, total_amount::text, payment_status, order_status, idempotency_key, created_at, updated_at
FROM orders
`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order, number domain.OrderNumberFunc) (*domain.Order, error) {
	itemsJSON, err := encodeItems(o.Items)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Printf("order repo: begin id=%s error=%v", o.ID, err)
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	year := o.CreatedAt.UTC().Year()
	var seq int64
	if err := tx.QueryRow(ctx, nextSequenceSQL, year).Scan(&seq); err != nil {
		_ = tx.Rollback(ctx)
		r.logger.Printf("order repo: next sequence year=%d error=%v", year, err)
		return nil, fmt.Errorf("next order sequence: %w", err)
	}
	o.OrderNumber = number(year, seq)

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID,
		o.OrderNumber,
		o.CustomerPhone,
		string(o.PaymentMethod),
		itemsJSON,
		o.TotalAmount.StringFixed(2),
		string(o.PaymentStatus),
		string(o.OrderStatus),
		o.IdempotencyKey,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		r.logger.Printf("order repo: insert id=%s number=%s error=%v", o.ID, o.OrderNumber, err)
		return nil, mapWriteError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Printf("order repo: commit id=%s error=%v", o.ID, err)
		return nil, mapWriteError(err)
	}
	r.logger.Printf("order repo: created id=%s number=%s", o.ID, o.OrderNumber)
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, selectOrderColumns+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("order repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, selectOrderColumns+`WHERE idempotency_key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get idempotency_key=%s error=%v", key, err)
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context, params ListParams) ([]domain.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		r.logger.Printf("order repo: count error=%v", err)
		return nil, 0, err
	}

	q := selectOrderColumns + `ORDER BY ` + params.orderClause() + ` LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, params.Limit, params.Offset)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()

	result := make([]domain.Order, 0, params.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("order repo: list rows error=%v", err)
		return nil, 0, err
	}
	r.logger.Printf("order repo: list sort=%s count=%d total=%d", params.orderClause(), len(result), total)
	return result, total, nil
}

func (r *postgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                       domain.Order
		method, payment, status string
		itemsJSON               []byte
		total                   string
		createdAt, updatedAt    time.Time
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerPhone, &method, &itemsJSON, &total, &payment, &status, &o.IdempotencyKey, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	items, err := decodeItems(itemsJSON)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total_amount %q: %w", total, err)
	}
	o.PaymentMethod = domain.PaymentMethod(method)
	o.PaymentStatus = domain.PaymentStatus(payment)
	o.OrderStatus = domain.OrderStatus(status)
	o.Items = items
	o.TotalAmount = amount
	o.CreatedAt = createdAt.UTC()
	o.UpdatedAt = updatedAt.UTC()
	return &o, nil
}
