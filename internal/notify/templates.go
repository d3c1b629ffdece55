package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/grocerybot/core/telegram/format"
	"github.com/m3rciful/grocerybot/internal/actions"
	"github.com/m3rciful/grocerybot/internal/chat"
	"github.com/m3rciful/grocerybot/internal/orders"
)

// ItemLines renders one bullet per item.
func ItemLines(items []orders.Item) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "• %s x%d (%s): %s\n",
			format.Escape(it.Name), it.Quantity, format.Escape(it.Unit), format.Money(it.Total()))
	}
	return b.String()
}

// Totals renders subtotal, delivery fee and total.
func Totals(o orders.Order) string {
	delivery := format.Money(o.DeliveryFee)
	if o.DeliveryFee.IsZero() {
		delivery = "FREE"
	}
	return fmt.Sprintf("Subtotal: %s\nDelivery: %s\n*Total: %s*\n",
		format.Money(o.Subtotal), delivery, format.Money(o.Total))
}

func contactLines(o orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n📞 %s\n📍 %s\n", format.Escape(o.CustomerName), format.Escape(o.Phone), format.Escape(o.Address))
	if o.Instructions != "" {
		fmt.Fprintf(&b, "📝 %s\n", format.Escape(o.Instructions))
	}
	if o.PaymentMethod != "" {
		fmt.Fprintf(&b, "💳 %s\n", format.Escape(o.PaymentMethod))
	}
	return b.String()
}

// Confirmation is sent to the customer after the order is stored.
func Confirmation(o orders.Order) chat.Message {
	var b strings.Builder
	b.WriteString("✅ *Order placed!*\n\n")
	fmt.Fprintf(&b, "🧾 Order `%s`\n\n", o.ID)
	b.WriteString(ItemLines(o.Items))
	b.WriteString("\n")
	b.WriteString(Totals(o))
	b.WriteString("\n")
	b.WriteString(contactLines(o))
	b.WriteString("\nWe will message you when your order ships. Thank you for shopping at FreshMart!")
	return chat.Message{Text: b.String(), Markdown: true}
}

// OperatorControls are the inline actions attached to an order for the operator.
func OperatorControls(id string) [][]chat.Button {
	return [][]chat.Button{
		{
			{Text: "🚚 Ship", Payload: actions.ShipOrder(id)},
			{Text: "✅ Delivered", Payload: actions.DeliverOrder(id)},
		},
		{
			{Text: "❌ Cancel", Payload: actions.CancelOrder(id)},
		},
	}
}

// NewOrder is sent to the operator with the lifecycle controls.
func NewOrder(o orders.Order) chat.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 *New order* `%s`\n\n", o.ID)
	b.WriteString(contactLines(o))
	fmt.Fprintf(&b, "🆔 user %d\n\n", o.UserID)
	b.WriteString(ItemLines(o.Items))
	b.WriteString("\n")
	b.WriteString(Totals(o))
	return chat.Message{Text: b.String(), Markdown: true, Inline: OperatorControls(o.ID)}
}

// StatusUpdate is sent to the customer after a status change.
func StatusUpdate(o orders.Order) chat.Message {
	var text string
	switch o.Status {
	case orders.Shipped:
		text = fmt.Sprintf("🚚 Your order `%s` is on its way!", o.ID)
	case orders.Delivered:
		text = fmt.Sprintf("✅ Your order `%s` has been delivered. Enjoy your groceries!", o.ID)
	case orders.Cancelled:
		reason := o.Note
		if reason == "" {
			reason = "no reason given"
		}
		text = fmt.Sprintf("❌ Your order `%s` was cancelled.\nReason: %s", o.ID, format.Escape(reason))
	default:
		text = fmt.Sprintf("%s Your order `%s` is now %s.", o.Status.Emoji(), o.ID, o.Status)
	}
	return chat.Message{Text: text, Markdown: true}
}

// OrderSummary is a one-line description used in lists.
func OrderSummary(o orders.Order) string {
	return fmt.Sprintf("%s `%s` %s, %s (%s)",
		o.Status.Emoji(), o.ID, o.Status, format.Money(o.Total), o.CreatedAt.UTC().Format("2006-01-02 15:04"))
}

// PendingDigest lists orders still waiting for the operator.
func PendingDigest(pending []orders.Order, now time.Time) chat.Message {
	if len(pending) == 0 {
		return chat.Message{Text: "✨ No pending orders."}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "⏳ *Pending orders: %d*\n\n", len(pending))
	for _, o := range pending {
		age := now.Sub(o.CreatedAt).Truncate(time.Minute)
		fmt.Fprintf(&b, "• `%s` %s, %s, waiting %s\n", o.ID, format.Escape(o.CustomerName), format.Money(o.Total), age)
	}
	return chat.Message{Text: b.String(), Markdown: true}
}
