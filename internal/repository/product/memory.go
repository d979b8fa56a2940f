package product

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"nixtia-store/internal/domain"
)

type memoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]domain.Product
	byName map[string]string
}

// NewMemory returns a catalog kept in process memory.
func NewMemory() Repository {
	return &memoryRepo{
		byID:   make(map[string]domain.Product),
		byName: make(map[string]string),
	}
}

func (r *memoryRepo) ListActive(context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Product{}
	for _, p := range r.byID {
		if p.IsActive {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) Upsert(_ context.Context, product domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[product.Name]; ok {
		existing := r.byID[id]
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
	} else {
		if product.ID == "" {
			product.ID = uuid.NewString()
		}
		product.CreatedAt = time.Now().UTC()
	}
	r.byID[product.ID] = product
	r.byName[product.Name] = product.ID
	return &product, nil
}
