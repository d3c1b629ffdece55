package httpapi

import (
	"time"

	"github.com/m3rciful/grocerybot/internal/orders"
)

// OrderView is the JSON representation of an order.
type OrderView struct {
	ID            string        `json:"id"`
	UserID        int64         `json:"user_id"`
	CustomerName  string        `json:"customer_name"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	Instructions  string        `json:"instructions,omitempty"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	Items         []orders.Item `json:"items"`
	Subtotal      string        `json:"subtotal"`
	DeliveryFee   string        `json:"delivery_fee"`
	Total         string        `json:"total"`
	Status        string        `json:"status"`
	Note          string        `json:"note,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewOrderView renders money with two decimals.
func NewOrderView(o orders.Order) OrderView {
	return OrderView{
		ID:            o.ID,
		UserID:        o.UserID,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		Instructions:  o.Instructions,
		PaymentMethod: o.PaymentMethod,
		Items:         o.Items,
		Subtotal:      o.Subtotal.StringFixed(2),
		DeliveryFee:   o.DeliveryFee.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Status:        string(o.Status),
		Note:          o.Note,
		CreatedAt:     o.CreatedAt.UTC(),
		UpdatedAt:     o.UpdatedAt.UTC(),
	}
}

// StatusChangeView is one history entry.
type StatusChangeView struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	Note string    `json:"note,omitempty"`
	At   time.Time `json:"at"`
}

// NewStatusChangeView converts a history row.
func NewStatusChangeView(ch orders.StatusChange) StatusChangeView {
	return StatusChangeView{From: string(ch.From), To: string(ch.To), Note: ch.Note, At: ch.At.UTC()}
}
