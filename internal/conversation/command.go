package conversation

import (
	"strings"

	"github.com/m3rciful/grocerybot/internal/actions"
	"github.com/m3rciful/grocerybot/internal/catalog"
)

// Kind tags a parsed inbound command.
type Kind int

const (
	// FreeText is any text that is not a known command; checkout steps consume it as data.
	FreeText Kind = iota
	Start
	Shop
	ShowCategory
	AddItem
	ViewCart
	ClearCart
	Checkout
	MyOrders
	Help
	MainMenu
	Abort
	Pending
	ShipOrder
	DeliverOrder
	CancelOrder
	// Invalid is an action payload that could not be decoded.
	Invalid
)

// Reply keyboard labels.
const (
	LabelShop      = "🛒 Shop"
	LabelCart      = "🧺 View Cart"
	LabelOrders    = "📦 My Orders"
	LabelHelp      = "ℹ️ Help"
	LabelCheckout  = "✅ Checkout"
	LabelClearCart = "🗑 Clear Cart"
	LabelMainMenu  = "⬅️ Main Menu"
	LabelCancel    = "❌ Cancel"
	LabelNone      = "none"
	LabelCash      = "💵 Cash on Delivery"
	LabelCard      = "💳 Card on Delivery"
)

// Command is an inbound text or action decoded at the transport boundary.
type Command struct {
	Kind Kind
	// Text is the trimmed original text for FreeText and text commands.
	Text     string
	Category string
	Item     string
	OrderID  string
}

// Operator reports whether the command is restricted to the operator.
func (c Command) Operator() bool {
	switch c.Kind {
	case ShipOrder, DeliverOrder, CancelOrder, Pending:
		return true
	}
	return false
}

// Aborts reports whether the command leaves an in-progress dialogue.
func (c Command) Aborts() bool {
	return c.Kind == Start || c.Kind == MainMenu || c.Kind == Abort
}

var textCommands = map[string]Kind{
	"/start":    Start,
	"/shop":     Shop,
	"/cart":     ViewCart,
	"/checkout": Checkout,
	"/orders":   MyOrders,
	"/help":     Help,
	"/menu":     MainMenu,
	"/cancel":   Abort,
	"/pending":  Pending,
	"main menu": MainMenu,
	"menu":      MainMenu,
	"cancel":    Abort,
	"shop":      Shop,
	"cart":      ViewCart,
	"help":      Help,

	strings.ToLower(LabelShop):      Shop,
	strings.ToLower(LabelCart):      ViewCart,
	strings.ToLower(LabelOrders):    MyOrders,
	strings.ToLower(LabelHelp):      Help,
	strings.ToLower(LabelCheckout):  Checkout,
	strings.ToLower(LabelClearCart): ClearCart,
	strings.ToLower(LabelMainMenu):  MainMenu,
	strings.ToLower(LabelCancel):    Abort,
}

// ParseText classifies a text message. Category names resolve against cat.
func ParseText(text string, cat *catalog.Catalog) Command {
	trimmed := strings.TrimSpace(text)
	key := strings.ToLower(trimmed)
	// "/start@FreshMartBot payload" style commands.
	if strings.HasPrefix(key, "/") {
		head, _, _ := strings.Cut(key, " ")
		head, _, _ = strings.Cut(head, "@")
		key = head
	}
	if kind, ok := textCommands[key]; ok {
		return Command{Kind: kind, Text: trimmed}
	}
	if cat != nil {
		if c, ok := cat.Category(trimmed); ok {
			return Command{Kind: ShowCategory, Text: trimmed, Category: c.Name}
		}
	}
	return Command{Kind: FreeText, Text: trimmed}
}

// ParseAction decodes an inline button payload.
func ParseAction(payload string) Command {
	a := actions.Parse(payload)
	switch a.Kind {
	case actions.AddItem:
		return Command{Kind: AddItem, Category: a.Category, Item: a.Item}
	case actions.ShowCategory:
		return Command{Kind: ShowCategory, Category: a.Category}
	case actions.ViewCart:
		return Command{Kind: ViewCart}
	case actions.Checkout:
		return Command{Kind: Checkout}
	case actions.ClearCart:
		return Command{Kind: ClearCart}
	case actions.MainMenu:
		return Command{Kind: MainMenu}
	case actions.Ship:
		return Command{Kind: ShipOrder, OrderID: a.OrderID}
	case actions.Deliver:
		return Command{Kind: DeliverOrder, OrderID: a.OrderID}
	case actions.Cancel:
		return Command{Kind: CancelOrder, OrderID: a.OrderID}
	}
	return Command{Kind: Invalid}
}
