package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"nixtia-store/internal/domain"
)

type orderRecord struct {
	ID             string          `gorm:"primaryKey;type:uuid"`
	OrderNumber    string          `gorm:"uniqueIndex;not null"`
	CustomerPhone  string          `gorm:"not null"`
	PaymentMethod  string          `gorm:"not null"`
	ItemsJSON      []byte          `gorm:"column:items_json;type:jsonb;not null"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentStatus  string          `gorm:"not null"`
	OrderStatus    string          `gorm:"not null"`
	IdempotencyKey *string         `gorm:"uniqueIndex"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (orderRecord) TableName() string { return "orders" }

type gormRepo struct {
	db     *gorm.DB
	logger *log.Logger
}

// NewGorm returns the ORM-backed adapter. It shares the schema and
// numbering rules of the pgx adapter.
func NewGorm(db *gorm.DB, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &gormRepo{db: db, logger: logger}
}

const gormNextSequenceSQL = `
INSERT INTO order_sequences (year, last_value, updated_at)
VALUES (CAST(@year AS integer), GREATEST(
    (SELECT COUNT(*) FROM orders WHERE EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC') = CAST(@year AS integer)),
    (SELECT COALESCE(MAX(CAST(substring(order_number FROM '-([0-9]+)$') AS bigint)), 0) FROM orders WHERE order_number ~ ('-' || CAST(@year AS text) || '-[0-9]+$'))
) + 1, NOW())
ON CONFLICT (year) DO UPDATE SET last_value = order_sequences.last_value + 1, updated_at = NOW()
RETURNING last_value
`

func (r *gormRepo) Create(ctx context.Context, o domain.Order, number domain.OrderNumberFunc) (*domain.Order, error) {
	itemsJSON, err := encodeItems(o.Items)
	if err != nil {
		return nil, err
	}
	year := o.CreatedAt.UTC().Year()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int64
		if err := tx.Raw(gormNextSequenceSQL, map[string]any{"year": year}).Scan(&seq).Error; err != nil {
			return fmt.Errorf("next order sequence: %w", err)
		}
		o.OrderNumber = number(year, seq)

		rec := orderRecord{
			ID:             o.ID,
			OrderNumber:    o.OrderNumber,
			CustomerPhone:  o.CustomerPhone,
			PaymentMethod:  string(o.PaymentMethod),
			ItemsJSON:      itemsJSON,
			TotalAmount:    o.TotalAmount.Round(2),
			PaymentStatus:  string(o.PaymentStatus),
			OrderStatus:    string(o.OrderStatus),
			IdempotencyKey: o.IdempotencyKey,
			CreatedAt:      o.CreatedAt,
			UpdatedAt:      o.UpdatedAt,
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		r.logger.Printf("order gorm repo: create id=%s error=%v", o.ID, err)
		return nil, mapWriteError(err)
	}
	r.logger.Printf("order gorm repo: created id=%s number=%s", o.ID, o.OrderNumber)
	return &o, nil
}

func (r *gormRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.take(ctx, "id = ?", id)
}

func (r *gormRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.take(ctx, "idempotency_key = ?", key)
}

func (r *gormRepo) take(ctx context.Context, where string, arg any) (*domain.Order, error) {
	var rec orderRecord
	if err := r.db.WithContext(ctx).Where(where, arg).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order gorm repo: take %s arg=%v error=%v", where, arg, err)
		return nil, err
	}
	return rec.toDomain()
}

func (r *gormRepo) List(ctx context.Context, params ListParams) ([]domain.Order, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Count(&total).Error; err != nil {
		r.logger.Printf("order gorm repo: count error=%v", err)
		return nil, 0, err
	}

	var recs []orderRecord
	err := r.db.WithContext(ctx).
		Order(params.orderClause()).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&recs).Error
	if err != nil {
		r.logger.Printf("order gorm repo: list error=%v", err)
		return nil, 0, err
	}

	result := make([]domain.Order, 0, len(recs))
	for _, rec := range recs {
		o, err := rec.toDomain()
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *o)
	}
	return result, int(total), nil
}

func (r *gormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (rec orderRecord) toDomain() (*domain.Order, error) {
	items, err := decodeItems(rec.ItemsJSON)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:             rec.ID,
		OrderNumber:    rec.OrderNumber,
		CustomerPhone:  rec.CustomerPhone,
		PaymentMethod:  domain.PaymentMethod(rec.PaymentMethod),
		Items:          items,
		TotalAmount:    rec.TotalAmount,
		PaymentStatus:  domain.PaymentStatus(rec.PaymentStatus),
		OrderStatus:    domain.OrderStatus(rec.OrderStatus),
		IdempotencyKey: rec.IdempotencyKey,
		CreatedAt:      rec.CreatedAt.UTC(),
		UpdatedAt:      rec.UpdatedAt.UTC(),
	}, nil
}
