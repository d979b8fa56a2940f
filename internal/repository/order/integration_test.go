package order

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nixtia-store/internal/domain"
	"nixtia-store/internal/migrate"
)

func TestPostgres_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE order_sequences, orders RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	repo := NewPostgres(pool, nil)
	created := time.Now().UTC().Truncate(time.Microsecond)

	const n = 20
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := domain.Order{
				ID:            uuid.NewString(),
				CustomerPhone: "+525512345678",
				PaymentMethod: domain.PaymentBankTransfer,
				Items:         []domain.CartItem{{ProductID: "a", Name: "Masa", Price: decimal.NewFromInt(45), Quantity: 1}},
				TotalAmount:   decimal.NewFromInt(45),
				PaymentStatus: domain.PaymentStatusPending,
				OrderStatus:   domain.OrderStatusConfirmed,
				CreatedAt:     created,
				UpdatedAt:     created,
			}
			got, err := repo.Create(ctx, o, testNumber)
			if err != nil {
				errs <- err
				return
			}
			numbers <- got.OrderNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("create: %v", err)
	}
	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)

	orders, total, err := repo.List(ctx, ListParams{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, n, total)
	assert.Len(t, orders, n)
}

func TestPostgres_CounterContinuesPastLegacyNumbers(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE order_sequences, orders RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err = pool.Exec(ctx, `
INSERT INTO orders (id, order_number, customer_phone, payment_method, items_json, total_amount, payment_status, order_status, created_at, updated_at)
VALUES ($1, 'NX-2026-000101', '+525512345678', 'BANK_TRANSFER', '[]', 45, 'PENDING', 'CONFIRMED', $2, $2)`,
		uuid.NewString(), created)
	require.NoError(t, err)

	repo := NewPostgres(pool, nil)
	o := domain.Order{
		ID:            uuid.NewString(),
		CustomerPhone: "+525512345678",
		PaymentMethod: domain.PaymentBankTransfer,
		Items:         []domain.CartItem{{ProductID: "a", Name: "Masa", Price: decimal.NewFromInt(45), Quantity: 1}},
		TotalAmount:   decimal.NewFromInt(45),
		PaymentStatus: domain.PaymentStatusPending,
		OrderStatus:   domain.OrderStatusConfirmed,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	got, err := repo.Create(ctx, o, testNumber)
	require.NoError(t, err)
	assert.Equal(t, "NX-2026-000102", got.OrderNumber)
}
