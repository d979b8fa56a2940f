package cart

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/shopspring/decimal"
	"nixtia-store/internal/domain"
)

// StorageKey is where the cart lives in client storage.
const StorageKey = "nixtia-cart"

// Cart is the shopper's pending selection. It is not safe for concurrent use.
type Cart struct {
	items  []domain.CartItem
	store  Store
	logger *log.Logger
}

// Load restores the cart persisted in store. Unreadable data is removed and
// an empty cart is returned instead of an error.
func Load(store Store, logger *log.Logger) (*Cart, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Cart{store: store, logger: logger}

	raw, err := store.Load(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(raw) == 0 {
		return c, nil
	}

	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		logger.Printf("cart: discarding stored cart key=%s error=%v", StorageKey, err)
		if err := store.Remove(StorageKey); err != nil {
			return nil, fmt.Errorf("clear invalid cart: %w", err)
		}
		return c, nil
	}
	c.items = Merge(items)
	return c, nil
}

// Save writes the current items back to the store.
func (c *Cart) Save() error {
	items := c.items
	if items == nil {
		items = []domain.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.store.Save(StorageKey, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Add puts item in the cart. A quantity below one means one unit. Adding a
// product that is already present increases its quantity up to the maximum.
func (c *Cart) Add(item domain.CartItem) {
	qty := item.Quantity
	if qty < domain.MinItemQuantity {
		qty = domain.MinItemQuantity
	}
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity = domain.ClampQuantity(c.items[i].Quantity + qty)
			return
		}
	}
	item.Quantity = domain.ClampQuantity(qty)
	c.items = append(c.items, item)
}

func (c *Cart) Remove(productID string) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// UpdateQuantity sets the clamped quantity of an existing line. Unknown
// products are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = domain.ClampQuantity(quantity)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) TotalAmount() decimal.Decimal {
	return domain.ItemsTotal(c.items)
}

// Merge folds duplicate product lines into the first occurrence, summing
// quantities and clamping each line into the allowed range.
func Merge(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if pos, ok := index[it.ProductID]; ok {
			out[pos].Quantity = domain.ClampQuantity(out[pos].Quantity + it.Quantity)
			continue
		}
		it.Quantity = domain.ClampQuantity(it.Quantity)
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
