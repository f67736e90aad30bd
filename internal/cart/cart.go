// Package cart holds the in-memory shopping cart. Contents live for the
// duration of the process and are never persisted; the backend is the
// authority on stock, so no stock limits are enforced here.
package cart

import "math"

// Product mirrors the catalog record returned by the backend. Prices are
// minor currency units (cents) to avoid floating point.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	Currency    string  `json:"currency"`
	Stock       int64   `json:"stock"`
	Slug        string  `json:"slug"`
}

// Item is one cart line: a product with a quantity of at least 1.
type Item struct {
	Product  Product
	Quantity int
}

// Cart is an ordered collection of items, at most one per product id.
type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

// Add puts a product in the cart. If a line for the same product id
// already exists its quantity is incremented; otherwise a new line with
// quantity 1 is appended. Existing line order is preserved.
func (c *Cart) Add(p Product) {
	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, Item{Product: p, Quantity: 1})
}

// Remove deletes the line for productID. Removing an absent id is a
// no-op.
func (c *Cart) Remove(productID int64) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the quantity for productID, clamped to a minimum of 1
// after flooring. Fractional input comes straight from user-entered
// values, so 3.7 means 3 and anything below 1 (or unparseable as a
// number) means 1. Absent ids are ignored.
func (c *Cart) SetQuantity(productID int64, quantity float64) {
	q := 1
	if !math.IsNaN(quantity) && quantity != 0 {
		q = int(math.Floor(quantity))
	}
	if q < 1 {
		q = 1
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = q
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// TotalCents returns the cart total in minor currency units.
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Product.PriceCents * int64(it.Quantity)
	}
	return total
}
