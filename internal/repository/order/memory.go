package order

import (
	"context"
	"sort"
	"sync"

	"nixtia-store/internal/domain"
)

type memoryRepo struct {
	mu    sync.Mutex
	byID  map[string]domain.Order
	byKey map[string]string
	seq   map[int]int64
	ids   []string
}

// NewMemory returns an in-process adapter for local runs and tests. Numbers
// follow the same per-year counter as the SQL adapters.
func NewMemory() Repository {
	return &memoryRepo{
		byID:  make(map[string]domain.Order),
		byKey: make(map[string]string),
		seq:   make(map[int]int64),
	}
}

func (r *memoryRepo) Create(_ context.Context, o domain.Order, number domain.OrderNumberFunc) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; exists {
		return nil, domain.ErrConflict
	}
	if o.IdempotencyKey != nil {
		if _, exists := r.byKey[*o.IdempotencyKey]; exists {
			return nil, domain.ErrAlreadyExists
		}
	}

	year := o.CreatedAt.UTC().Year()
	if _, ok := r.seq[year]; !ok {
		var count, highest int64
		for _, existing := range r.byID {
			if existing.CreatedAt.UTC().Year() == year {
				count++
			}
			if n, ok := sequenceOf(existing.OrderNumber, year); ok && n > highest {
				highest = n
			}
		}
		r.seq[year] = max(count, highest)
	}
	r.seq[year]++
	o.OrderNumber = number(year, r.seq[year])
	o.Items = append([]domain.CartItem(nil), o.Items...)

	r.byID[o.ID] = o
	r.ids = append(r.ids, o.ID)
	if o.IdempotencyKey != nil {
		r.byKey[*o.IdempotencyKey] = o.ID
	}
	clone := o
	return &clone, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *memoryRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byKey[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o := r.byID[id]
	return &o, nil
}

func (r *memoryRepo) List(_ context.Context, params ListParams) ([]domain.Order, int, error) {
	r.mu.Lock()
	all := make([]domain.Order, 0, len(r.ids))
	for _, id := range r.ids {
		all = append(all, r.byID[id])
	}
	r.mu.Unlock()

	compare := func(a, b domain.Order) int {
		var c int
		if params.SortBy == SortByTotalAmount {
			c = a.TotalAmount.Cmp(b.TotalAmount)
		} else {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			switch {
			case a.ID < b.ID:
				c = -1
			case a.ID > b.ID:
				c = 1
			}
		}
		if !params.Ascending {
			c = -c
		}
		return c
	}
	sort.SliceStable(all, func(i, j int) bool { return compare(all[i], all[j]) < 0 })

	total := len(all)
	start := min(max(params.Offset, 0), total)
	end := total
	if params.Limit > 0 {
		end = min(start+params.Limit, total)
	}
	return all[start:end], total, nil
}

func (r *memoryRepo) Ping(context.Context) error {
	return nil
}
