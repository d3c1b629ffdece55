// Package orders owns the order ledger and the order lifecycle.
package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/grocerybot/internal/cart"
)

// Item is an immutable snapshot of a cart line at checkout time.
type Item struct {
	Category  string          `json:"category"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
}

// Total returns unit price times quantity.
func (i Item) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SnapshotItems copies cart lines into order items.
func SnapshotItems(c cart.Cart) []Item {
	items := make([]Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, Item{
			Category:  l.Category,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Unit:      l.Unit,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// Order is a persisted purchase with its current status.
type Order struct {
	ID            string
	UserID        int64
	CustomerName  string
	Phone         string
	Address       string
	Instructions  string
	PaymentMethod string
	Items         []Item
	Subtotal      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
	Status        Status
	// Note holds the reason attached to the last status change.
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o Order) clone() Order {
	o.Items = append([]Item(nil), o.Items...)
	return o
}

// StatusChange is one row of the status history.
type StatusChange struct {
	OrderID string
	From    Status
	To      Status
	Note    string
	At      time.Time
}

// Draft is the checkout data collected by the conversation.
type Draft struct {
	UserID        int64
	CustomerName  string
	Phone         string
	Address       string
	Instructions  string
	PaymentMethod string
	Cart          cart.Cart
}
