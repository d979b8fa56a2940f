package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nixtia-store/internal/domain"
)

var orderColumns = []string{
	"id", "order_number", "customer_phone", "payment_method", "items_json", "total_amount",
	"payment_status", "order_status", "idempotency_key", "created_at", "updated_at",
}

func testNumber(year int, seq int64) string {
	return fmt.Sprintf("NX-%d-%06d", year, seq)
}

func sampleOrder() domain.Order {
	created := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	return domain.Order{
		ID:            "3f2c8a0e-4b7d-4e21-9a55-0d6f1b2c3d4e",
		CustomerPhone: "+5215512345678",
		PaymentMethod: domain.PaymentCashOnDelivery,
		Items: []domain.CartItem{
			{ProductID: "a", Name: "Masa", Price: decimal.RequireFromString("45.00"), Quantity: 2},
		},
		TotalAmount:   decimal.RequireFromString("90"),
		PaymentStatus: domain.PaymentStatusPending,
		OrderStatus:   domain.OrderStatusConfirmed,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestPostgresCreate_AssignsNumberInsideTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := sampleOrder()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO order_sequences`)).
		WithArgs(2025).
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(42)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(o.ID, "NX-2025-000042", o.CustomerPhone, "CASH_ON_DELIVERY", pgxmock.AnyArg(), "90.00", "PENDING", "CONFIRMED", pgxmock.AnyArg(), o.CreatedAt, o.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPostgres(mock, nil)
	got, err := repo.Create(context.Background(), o, testNumber)
	require.NoError(t, err)
	assert.Equal(t, "NX-2025-000042", got.OrderNumber)
	assert.Equal(t, o.ID, got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_SeedsFromHighestIssuedNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := sampleOrder()
	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)INSERT INTO order_sequences .*GREATEST\(.*COUNT\(\*\).*MAX\(substring\(order_number`).
		WithArgs(2025).
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(102)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(o.ID, "NX-2025-000102", o.CustomerPhone, "CASH_ON_DELIVERY", pgxmock.AnyArg(), "90.00", "PENDING", "CONFIRMED", pgxmock.AnyArg(), o.CreatedAt, o.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPostgres(mock, nil)
	got, err := repo.Create(context.Background(), o, testNumber)
	require.NoError(t, err)
	assert.Equal(t, "NX-2025-000102", got.OrderNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_SequenceFailureRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO order_sequences`)).
		WithArgs(2025).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	repo := NewPostgres(mock, nil)
	_, err = repo.Create(context.Background(), sampleOrder(), testNumber)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "next order sequence")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_DuplicateIdempotencyKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := sampleOrder()
	key := "checkout-1"
	o.IdempotencyKey = &key

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO order_sequences`)).
		WithArgs(2025).
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: idempotencyConstraint})
	mock.ExpectRollback()

	repo := NewPostgres(mock, nil)
	_, err = repo.Create(context.Background(), o, testNumber)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_DuplicateNumberIsConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO order_sequences`)).
		WithArgs(2025).
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"})
	mock.ExpectRollback()

	repo := NewPostgres(mock, nil)
	_, err = repo.Create(context.Background(), sampleOrder(), testNumber)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := sampleOrder()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs(o.ID).
		WillReturnRows(pgxmock.NewRows(orderColumns).AddRow(
			o.ID, "NX-2025-000001", o.CustomerPhone, "CASH_ON_DELIVERY",
			[]byte(`[{"product_id":"a","name":"Masa","price":45.00,"quantity":2,"image_url":null}]`),
			"90.00", "PENDING", "CONFIRMED", (*string)(nil), o.CreatedAt, o.UpdatedAt,
		))

	repo := NewPostgres(mock, nil)
	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "NX-2025-000001", got.OrderNumber)
	assert.Equal(t, domain.PaymentCashOnDelivery, got.PaymentMethod)
	assert.Equal(t, "90.00", got.TotalAmount.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Masa", got.Items[0].Name)
	assert.Nil(t, got.Items[0].ImageURL)
	assert.Nil(t, got.IdempotencyKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs("3f2c8a0e-4b7d-4e21-9a55-0d6f1b2c3d4e").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgres(mock, nil)
	_, err = repo.GetByID(context.Background(), "3f2c8a0e-4b7d-4e21-9a55-0d6f1b2c3d4e")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := sampleOrder()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM orders`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY total_amount ASC, id ASC LIMIT $1 OFFSET $2`)).
		WithArgs(2, 1).
		WillReturnRows(pgxmock.NewRows(orderColumns).
			AddRow(o.ID, "NX-2025-000002", o.CustomerPhone, "BANK_TRANSFER", []byte(`[]`), "10.00", "PENDING", "CONFIRMED", (*string)(nil), o.CreatedAt, o.UpdatedAt).
			AddRow("9b1f1f7e-5a1a-4c3e-8f0e-2b7d9c6a5e41", "NX-2025-000003", o.CustomerPhone, "CARD_ON_DELIVERY", []byte(`[]`), "20.50", "PENDING", "CONFIRMED", (*string)(nil), o.CreatedAt, o.UpdatedAt))

	repo := NewPostgres(mock, nil)
	orders, total, err := repo.List(context.Background(), ListParams{SortBy: SortByTotalAmount, Ascending: true, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, orders, 2)
	assert.Equal(t, "NX-2025-000002", orders[0].OrderNumber)
	assert.Equal(t, "20.50", orders[1].TotalAmount.StringFixed(2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListParamsOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC, id DESC", ListParams{}.orderClause())
	assert.Equal(t, "created_at DESC, id DESC", ListParams{SortBy: "name; DROP TABLE orders"}.orderClause())
	assert.Equal(t, "total_amount ASC, id ASC", ListParams{SortBy: SortByTotalAmount, Ascending: true}.orderClause())
}

func TestEncodeItemsKeepsNumericPrices(t *testing.T) {
	img := "https://cdn.example.com/a.jpg"
	raw, err := encodeItems([]domain.CartItem{
		{ProductID: "a", Name: "Masa", Price: decimal.RequireFromString("45.5"), Quantity: 2, ImageURL: &img},
		{ProductID: "b", Name: "Tostadas", Price: decimal.RequireFromString("28"), Quantity: 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"product_id":"a","name":"Masa","price":45.5,"quantity":2,"image_url":"https://cdn.example.com/a.jpg"},
		{"product_id":"b","name":"Tostadas","price":28,"quantity":1,"image_url":null}
	]`, string(raw))

	items, err := decodeItems(raw)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("45.5")))
	assert.Equal(t, "b", items[1].ProductID)
}
