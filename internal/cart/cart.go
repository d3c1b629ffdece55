// Package cart keeps each user's pending shopping cart.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/m3rciful/grocerybot/internal/catalog"
)

// Line is one catalog item and its accumulated quantity.
type Line struct {
	Category  string
	Name      string
	UnitPrice decimal.Decimal
	Unit      string
	Quantity  int
}

// Key identifies the line inside a cart.
func (l Line) Key() string {
	return l.Category + "/" + l.Name
}

// Total returns unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a snapshot of a user's lines in insertion order.
type Cart struct {
	Lines []Line
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Subtotal sums all line totals.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Count returns the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Store is the per-user cart storage used by the conversation engine.
type Store interface {
	// Add appends one unit of item to the user's cart and returns the updated line.
	Add(userID int64, item catalog.Item) Line
	// Get returns a copy of the user's cart; unknown users get an empty cart.
	Get(userID int64) Cart
	// Clear empties the user's cart.
	Clear(userID int64)
}
