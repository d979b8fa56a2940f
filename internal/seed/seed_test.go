package seed

import (
	"context"
	"testing"

	productrepo "nixtia-store/internal/repository/product"
)

func TestCatalog(t *testing.T) {
	products := Catalog()
	if len(products) != 10 {
		t.Fatalf("expected 10 products, got %d", len(products))
	}
	names := map[string]bool{}
	for _, p := range products {
		if names[p.Name] {
			t.Fatalf("duplicate product %q", p.Name)
		}
		names[p.Name] = true
		if !p.IsActive || p.Price.IsNegative() {
			t.Fatalf("bad seed product %+v", p)
		}
	}
	if got := products[2].Price.StringFixed(2); got != "120.50" {
		t.Fatalf("expected harina at 120.50, got %s", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	repo := productrepo.NewMemory()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := Apply(ctx, repo, nil); err != nil {
			t.Fatalf("apply #%d: %v", i+1, err)
		}
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 10 {
		t.Fatalf("expected 10 products after two runs, got %d", len(active))
	}
	if active[0].Name != "Atole de Maíz Morado Premium" {
		t.Fatalf("expected name ordering, first was %q", active[0].Name)
	}
}
