package domain

import "github.com/shopspring/decimal"

const (
	MinItemQuantity = 1
	MaxItemQuantity = 99
)

// CartItem is one product line as the shopper saw it when adding to the cart.
// Orders keep these as an immutable snapshot.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  *string         `json:"image_url"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ClampQuantity keeps q within [MinItemQuantity, MaxItemQuantity].
func ClampQuantity(q int) int {
	if q < MinItemQuantity {
		return MinItemQuantity
	}
	if q > MaxItemQuantity {
		return MaxItemQuantity
	}
	return q
}

// ItemsTotal sums price*quantity over items, rounded to currency precision.
func ItemsTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total.Round(2)
}
