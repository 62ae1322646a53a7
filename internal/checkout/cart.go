package checkout

import (
	"sync"
)

// CartItem is one product line in a cart. Price is the per-unit price in
// rubles at the time the item was added.
type CartItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Cart is an ordered list of items. Safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	items []CartItem
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Set adds the item or updates the quantity of an existing line.
// A quantity of zero or less removes the line.
func (c *Cart) Set(item CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.items {
		if existing.ProductID == item.ProductID {
			if item.Quantity <= 0 {
				c.items = append(c.items[:i], c.items[i+1:]...)
				return
			}
			c.items[i] = item
			return
		}
	}
	if item.Quantity > 0 {
		c.items = append(c.items, item)
	}
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Subtotal returns the sum over lines of price × quantity.
func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, item := range c.items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// Clear removes all lines.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
