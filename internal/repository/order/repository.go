package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"nixtia-store/internal/domain"
)

// Repository stores orders. Create assigns the order number from a per-year
// counter advanced in the same transaction as the insert.
type Repository interface {
	Create(ctx context.Context, o domain.Order, number domain.OrderNumberFunc) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	List(ctx context.Context, params ListParams) ([]domain.Order, int, error)
	Ping(ctx context.Context) error
}

type SortField string

const (
	SortByCreatedAt   SortField = "created_at"
	SortByTotalAmount SortField = "total_amount"
)

func (f SortField) Valid() bool {
	return f == SortByCreatedAt || f == SortByTotalAmount
}

type ListParams struct {
	SortBy    SortField
	Ascending bool
	Limit     int
	Offset    int
}

func (p ListParams) orderClause() string {
	col := SortByCreatedAt
	if p.SortBy.Valid() {
		col = p.SortBy
	}
	dir := "DESC"
	if p.Ascending {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s, id %s", col, dir, dir)
}

// sequenceOf extracts the counter from an order number issued for year, in
// the "<prefix>-<year>-<seq>" layout.
func sequenceOf(number string, year int) (int64, bool) {
	rest, digits, ok := strings.Cut(number, "-"+strconv.Itoa(year)+"-")
	if !ok || rest == "" || digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

const idempotencyConstraint = "orders_idempotency_key_key"

// mapWriteError turns unique violations into domain errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == idempotencyConstraint {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

type storedItem struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	ImageURL  *string     `json:"image_url"`
}

// encodeItems renders the cart snapshot with prices as JSON numbers.
func encodeItems(items []domain.CartItem) ([]byte, error) {
	out := make([]storedItem, 0, len(items))
	for _, it := range items {
		out = append(out, storedItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     json.Number(it.Price.String()),
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}
	return json.Marshal(out)
}

func decodeItems(raw []byte) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode items_json: %w", err)
	}
	return items, nil
}
