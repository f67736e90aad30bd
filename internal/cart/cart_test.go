package cart

import (
	"math"
	"testing"
)

func product(id int64, title string, cents int64) Product {
	return Product{ID: id, Title: title, PriceCents: cents, Currency: "EUR", Stock: 10, Slug: title}
}

func TestAdd_NewItem(t *testing.T) {
	c := New()
	c.Add(product(1, "mug", 900))

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", items[0].Quantity)
	}
}

func TestAdd_SameProductIncrements(t *testing.T) {
	c := New()
	c.Add(product(1, "mug", 900))
	c.Add(product(1, "mug", 900))

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected a single line after duplicate add, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", items[0].Quantity)
	}
}

func TestAdd_PreservesOrder(t *testing.T) {
	c := New()
	c.Add(product(1, "mug", 900))
	c.Add(product(2, "shirt", 1500))
	c.Add(product(1, "mug", 900))
	c.Add(product(3, "cap", 1200))

	items := c.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(items))
	}
	want := []int64{1, 2, 3}
	for i, id := range want {
		if items[i].Product.ID != id {
			t.Errorf("position %d: expected product %d, got %d", i, id, items[i].Product.ID)
		}
	}
}

func TestRemove(t *testing.T) {
	c := New()
	c.Add(product(1, "mug", 900))
	c.Add(product(2, "shirt", 1500))

	c.Remove(1)

	items := c.Items()
	if len(items) != 1 || items[0].Product.ID != 2 {
		t.Errorf("expected only product 2 to remain, got %+v", items)
	}
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	c := New()
	c.Remove(999) // empty cart: must not panic

	c.Add(product(1, "mug", 900))
	c.Remove(999)
	if c.Len() != 1 {
		t.Errorf("expected cart unchanged, got %d lines", c.Len())
	}
}

func TestSetQuantity_Clamps(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{3.7, 3},
		{2, 2},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		c := New()
		c.Add(product(1, "mug", 900))
		c.SetQuantity(1, tt.in)
		if got := c.Items()[0].Quantity; got != tt.want {
			t.Errorf("SetQuantity(%v): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestSetQuantity_AbsentIsNoop(t *testing.T) {
	c := New()
	c.Add(product(1, "mug", 900))
	c.SetQuantity(42, 5)
	if got := c.Items()[0].Quantity; got != 1 {
		t.Errorf("expected existing line untouched, got quantity %d", got)
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(product(1, "mug", 900))
	c.Add(product(2, "shirt", 1500))
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cart, got %d lines", c.Len())
	}
}

func TestTotalCents(t *testing.T) {
	c := New()
	c.Add(product(1, "mug", 900))
	c.Add(product(2, "shirt", 1500))
	c.SetQuantity(2, 3)

	if got := c.TotalCents(); got != 900+3*1500 {
		t.Errorf("expected total %d, got %d", 900+3*1500, got)
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	c := New()
	c.Add(product(1, "mug", 900))

	items := c.Items()
	items[0].Quantity = 99

	if got := c.Items()[0].Quantity; got != 1 {
		t.Errorf("mutating the returned slice must not affect the cart, got %d", got)
	}
}
