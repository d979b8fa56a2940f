package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nixtia-store/internal/domain"
	productrepo "nixtia-store/internal/repository/product"
)

func TestListAndGet(t *testing.T) {
	ctx := context.Background()
	repo := productrepo.NewMemory()
	masa, err := repo.Upsert(ctx, domain.Product{Name: "Masa", Price: decimal.RequireFromString("45"), IsActive: true})
	require.NoError(t, err)
	retired, err := repo.Upsert(ctx, domain.Product{Name: "Elote viejo", Price: decimal.RequireFromString("10"), IsActive: false})
	require.NoError(t, err)

	svc := New(repo, nil)

	products, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Masa", products[0].Name)

	got, err := svc.Get(ctx, masa.ID)
	require.NoError(t, err)
	assert.Equal(t, "45.00", got.Price.StringFixed(2))

	_, err = svc.Get(ctx, retired.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertKeepsIDByName(t *testing.T) {
	ctx := context.Background()
	repo := productrepo.NewMemory()

	first, err := repo.Upsert(ctx, domain.Product{Name: "Pinole", Price: decimal.RequireFromString("38"), IsActive: true})
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, domain.Product{Name: "Pinole", Price: decimal.RequireFromString("40"), IsActive: true})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	products, err := New(repo, nil).List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "40.00", products[0].Price.StringFixed(2))
}
