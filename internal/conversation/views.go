package conversation

import (
	"fmt"
	"strings"

	"github.com/m3rciful/grocerybot/core/telegram/format"
	"github.com/m3rciful/grocerybot/internal/actions"
	"github.com/m3rciful/grocerybot/internal/cart"
	"github.com/m3rciful/grocerybot/internal/catalog"
	"github.com/m3rciful/grocerybot/internal/chat"
	"github.com/m3rciful/grocerybot/internal/notify"
	"github.com/m3rciful/grocerybot/internal/orders"
	"github.com/m3rciful/grocerybot/internal/session"
)

var mainMenuKeyboard = [][]string{
	{LabelShop, LabelCart},
	{LabelOrders, LabelHelp},
}

const helpText = `ℹ️ *How to order*

1. Tap 🛒 Shop and pick a category.
2. Tap an item to add it to your cart. Tap again to add more.
3. Open 🧺 View Cart and press ✅ Checkout.
4. Tell us your name, phone, address and any delivery instructions.

Orders of $50.00 or more ship free. Send /cancel during checkout to stop; your cart is kept.`

func mainMenu(text string) chat.Message {
	return chat.Message{Text: text, Reply: mainMenuKeyboard}
}

func welcome(name string) chat.Message {
	if name == "" {
		name = "there"
	}
	return mainMenu(fmt.Sprintf("👋 Welcome to FreshMart, %s!\nFresh groceries delivered to your door.\n\nChoose an option below:", name))
}

func categoriesView(cat *catalog.Catalog) chat.Message {
	names := cat.Categories()
	rows := make([][]string, 0, len(names)/2+2)
	for i := 0; i < len(names); i += 2 {
		end := i + 2
		if end > len(names) {
			end = len(names)
		}
		rows = append(rows, append([]string(nil), names[i:end]...))
	}
	rows = append(rows, []string{LabelCart, LabelMainMenu})
	return chat.Message{Text: "🛒 Choose a category:", Reply: rows}
}

func categoryView(c catalog.Category) chat.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\nTap an item to add it to your cart:\n", format.Escape(c.Name))
	rows := make([][]chat.Button, 0, len(c.Items)+1)
	for _, it := range c.Items {
		label := fmt.Sprintf("%s %s/%s", it.Name, format.Money(it.Price), it.Unit)
		rows = append(rows, []chat.Button{{Text: label, Payload: actions.Add(c.Name, it.Name)}})
	}
	rows = append(rows, cartControls()...)
	return chat.Message{Text: b.String(), Markdown: true, Inline: rows}
}

func cartControls() [][]chat.Button {
	return [][]chat.Button{{
		{Text: LabelCart, Payload: actions.Cart()},
		{Text: LabelCheckout, Payload: actions.CheckoutPayload()},
	}}
}

func addedView(line cart.Line, c cart.Cart) chat.Message {
	return chat.Message{
		Text:   fmt.Sprintf("✅ Added %s (%d in cart). Cart total: %s", line.Name, line.Quantity, format.Money(c.Subtotal())),
		Inline: cartControls(),
	}
}

func cartView(c cart.Cart, pricing orders.Pricing) chat.Message {
	if c.IsEmpty() {
		return chat.Message{Text: "🧺 Your cart is empty. Tap 🛒 Shop to browse our groceries.", Reply: mainMenuKeyboard}
	}
	items := orders.SnapshotItems(c)
	subtotal, fee, total := pricing.Quote(items)

	var b strings.Builder
	b.WriteString("🧺 *Your cart*\n\n")
	b.WriteString(notify.ItemLines(items))
	b.WriteString("\n")
	b.WriteString(notify.Totals(orders.Order{Subtotal: subtotal, DeliveryFee: fee, Total: total}))
	if !fee.IsZero() {
		missing := pricing.FreeDeliveryThreshold.Sub(subtotal)
		fmt.Fprintf(&b, "\nAdd %s more for free delivery!", format.Money(missing))
	}
	return chat.Message{
		Text:     b.String(),
		Markdown: true,
		Inline: [][]chat.Button{
			{{Text: LabelCheckout, Payload: actions.CheckoutPayload()}},
			{{Text: LabelClearCart, Payload: actions.Clear()}, {Text: LabelMainMenu, Payload: actions.Menu()}},
		},
	}
}

func emptyCartView() chat.Message {
	return chat.Message{Text: "🧺 Your cart is empty. Add some items before checking out.", Reply: mainMenuKeyboard}
}

var cancelKeyboard = [][]string{{LabelCancel}}

// prompt returns the question asked at a checkout step.
func prompt(step session.Step) chat.Message {
	switch step {
	case session.AwaitingName:
		return chat.Message{Text: "📝 Let's get your order ready.\n\nWhat is your full name?", Reply: cancelKeyboard}
	case session.AwaitingPhone:
		return chat.Message{Text: "📞 What phone number can the courier reach you on?", Reply: cancelKeyboard}
	case session.AwaitingAddress:
		return chat.Message{Text: "📍 What is the delivery address?", Reply: cancelKeyboard}
	case session.AwaitingInstructions:
		return chat.Message{Text: "📝 Any delivery instructions? Send \"none\" if not.", Reply: [][]string{{LabelNone}, {LabelCancel}}}
	case session.AwaitingPaymentMethod:
		return chat.Message{Text: "💳 How would you like to pay?", Reply: [][]string{{LabelCash, LabelCard}, {LabelCancel}}}
	case session.AwaitingCancelReason:
		return chat.Message{Text: "✍️ Send the cancellation reason.", Reply: cancelKeyboard}
	}
	return mainMenu("Choose an option below:")
}

func ordersView(list []orders.Order) chat.Message {
	if len(list) == 0 {
		return mainMenu("📦 You have no orders yet.")
	}
	var b strings.Builder
	b.WriteString("📦 *Your recent orders*\n\n")
	for _, o := range list {
		b.WriteString(notify.OrderSummary(o))
		b.WriteString("\n")
	}
	return chat.Message{Text: b.String(), Markdown: true, Reply: mainMenuKeyboard}
}
