package entity

import (
	"fmt"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// CartItem is one product line in the till's cart.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"product_name"`
	Category  string          `json:"category,omitempty"`
	Weight    string          `json:"weight,omitempty"`
	Unit      string          `json:"unit,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

func (i *CartItem) recalc() {
	i.Total = i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds at most one line per product. It is not safe for concurrent
// use; the terminal that owns it serialises access.
type Cart struct {
	items []CartItem
}

// Add puts one unit of p in the cart, or bumps its existing line.
// Stock caps the line quantity.
func (c *Cart) Add(p Product) (*CartItem, error) {
	if p.Quantity <= 0 {
		return nil, apperror.NewConflictError(apperror.KindOutOfStock, fmt.Sprintf("%s is out of stock", p.Name))
	}

	for i := range c.items {
		if c.items[i].ProductID != p.ID {
			continue
		}
		if c.items[i].Quantity >= p.Quantity {
			return nil, apperror.NewConflictError(apperror.KindStockLimit, fmt.Sprintf("Only %d items available", p.Quantity))
		}
		c.items[i].Quantity++
		c.items[i].recalc()
		item := c.items[i]
		return &item, nil
	}

	item := CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Weight:    p.Weight,
		Unit:      p.Unit,
		Price:     p.SalePrice,
		Quantity:  1,
	}
	item.recalc()
	c.items = append(c.items, item)
	return &item, nil
}

// UpdateQuantity changes line index by delta. A result below 1 removes the
// line; a result above available is rejected and nothing changes.
func (c *Cart) UpdateQuantity(index, delta, available int) (removed bool, err error) {
	if index < 0 || index >= len(c.items) {
		return false, apperror.NewBadRequestError("Cart item not found")
	}
	next := c.items[index].Quantity + delta
	if next < 1 {
		c.items = append(c.items[:index], c.items[index+1:]...)
		return true, nil
	}
	if next > available {
		return false, apperror.NewConflictError(apperror.KindStockLimit, fmt.Sprintf("Only %d items available", available))
	}
	c.items[index].Quantity = next
	c.items[index].recalc()
	return false, nil
}

// Remove drops line index.
func (c *Cart) Remove(index int) (CartItem, error) {
	if index < 0 || index >= len(c.items) {
		return CartItem{}, apperror.NewBadRequestError("Cart item not found")
	}
	item := c.items[index]
	c.items = append(c.items[:index], c.items[index+1:]...)
	return item, nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns line index.
func (c *Cart) Item(index int) (CartItem, bool) {
	if index < 0 || index >= len(c.items) {
		return CartItem{}, false
	}
	return c.items[index], true
}

// Len is the number of lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// TotalQuantity is the number of units across all lines.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Subtotal is the sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Total)
	}
	return sum
}

// Totals is the money summary shown beside the cart.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Change     decimal.Decimal `json:"change"`
}

// ComputeTotals derives total and change. Change never goes negative.
func ComputeTotals(subtotal, tax, paid decimal.Decimal) Totals {
	total := subtotal.Add(tax)
	change := paid.Sub(total)
	if change.IsNegative() {
		change = decimal.Zero
	}
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		AmountPaid: paid,
		Change:     change,
	}
}
