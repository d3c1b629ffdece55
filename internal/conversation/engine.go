// Package conversation drives the per-user ordering dialogue.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/internal/cart"
	"github.com/m3rciful/grocerybot/internal/catalog"
	"github.com/m3rciful/grocerybot/internal/chat"
	"github.com/m3rciful/grocerybot/internal/orders"
	"github.com/m3rciful/grocerybot/internal/session"
)

const component = "conversation"

// recentOrders is how many orders "My Orders" lists.
const recentOrders = 5

// Options configure an Engine.
type Options struct {
	Catalog  *catalog.Catalog
	Carts    cart.Store
	Sessions session.Store
	Orders   *orders.Service
	Out      chat.Messenger
	// AskPaymentMethod adds the payment step after delivery instructions.
	AskPaymentMethod bool
	Now              func() time.Time
}

// Engine is the session state machine. It is driven by a single dispatcher
// goroutine; the stores it uses are safe for concurrent readers.
type Engine struct {
	catalog    *catalog.Catalog
	carts      cart.Store
	sessions   session.Store
	orders     *orders.Service
	out        chat.Messenger
	askPayment bool
	now        func() time.Time
}

// NewEngine validates the options.
func NewEngine(opts Options) (*Engine, error) {
	switch {
	case opts.Catalog == nil:
		return nil, errors.New("conversation: catalog is required")
	case opts.Carts == nil:
		return nil, errors.New("conversation: cart store is required")
	case opts.Sessions == nil:
		return nil, errors.New("conversation: session store is required")
	case opts.Orders == nil:
		return nil, errors.New("conversation: order service is required")
	case opts.Out == nil:
		return nil, errors.New("conversation: messenger is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		now:        opts.Now,
		catalog:    opts.Catalog,
		carts:      opts.Carts,
		sessions:   opts.Sessions,
		orders:     opts.Orders,
		out:        opts.Out,
		askPayment: opts.AskPaymentMethod,
	}, nil
}

// IsOperator reports whether userID may use operator controls.
func (e *Engine) IsOperator(userID int64) bool {
	return e.orders.IsOperator(userID)
}

// HandleText processes a text message from userID.
func (e *Engine) HandleText(ctx context.Context, userID int64, name, text string) error {
	return e.Handle(ctx, userID, name, ParseText(text, e.catalog))
}

// HandleAction processes an inline button payload from userID.
func (e *Engine) HandleAction(ctx context.Context, userID int64, payload string) error {
	return e.Handle(ctx, userID, "", ParseAction(payload))
}

// Handle applies one command to the user's session.
func (e *Engine) Handle(ctx context.Context, userID int64, name string, cmd Command) error {
	s := e.sessions.Get(userID)
	logger.Debug(ctx, component, "command",
		slog.Int64("user_id", userID),
		slog.String("step", string(s.Step)),
		slog.Int("kind", int(cmd.Kind)),
	)

	if cmd.Operator() {
		if !e.IsOperator(userID) {
			if cmd.Kind == Pending {
				return e.send(ctx, userID, mainMenu("Please choose an option from the menu below:"))
			}
			return e.send(ctx, userID, deniedView())
		}
		return e.handleOperator(ctx, userID, s, cmd)
	}

	// Item adds are accepted in any state and never change the step.
	if cmd.Kind == AddItem {
		return e.addItem(ctx, userID, cmd)
	}

	switch {
	case s.Step.InCheckout():
		return e.handleCheckout(ctx, userID, s, cmd)
	case s.Step == session.AwaitingCancelReason:
		return e.handleCancelReason(ctx, userID, s, cmd)
	}
	return e.handleMenu(ctx, userID, name, s, cmd)
}

func (e *Engine) handleMenu(ctx context.Context, userID int64, name string, s session.Session, cmd Command) error {
	switch cmd.Kind {
	case Start:
		e.sessions.Reset(userID)
		return e.send(ctx, userID, welcome(name))
	case MainMenu, Abort:
		e.sessions.Reset(userID)
		return e.send(ctx, userID, mainMenu("🏠 Main menu"))
	case Shop:
		e.sessions.Put(userID, session.Session{Step: session.BrowsingCategory})
		return e.send(ctx, userID, categoriesView(e.catalog))
	case ShowCategory:
		c, ok := e.catalog.Category(cmd.Category)
		if !ok {
			return e.send(ctx, userID, categoriesView(e.catalog))
		}
		s.Category = c.Name
		e.sessions.Put(userID, s)
		return e.send(ctx, userID, categoryView(c))
	case ViewCart:
		return e.send(ctx, userID, cartView(e.carts.Get(userID), e.orders.Pricing()))
	case ClearCart:
		e.carts.Clear(userID)
		return e.send(ctx, userID, mainMenu("🗑 Your cart has been cleared."))
	case Checkout:
		return e.startCheckout(ctx, userID)
	case MyOrders:
		list, err := e.orders.ListByUser(ctx, userID, recentOrders)
		if err != nil {
			logger.Error(ctx, component, "orders.list",
				slog.String("status", "error"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
			return e.send(ctx, userID, mainMenu("⚠️ Could not load your orders. Please try again later."))
		}
		return e.send(ctx, userID, ordersView(list))
	case Help:
		return e.send(ctx, userID, chat.Message{Text: helpText, Markdown: true, Reply: mainMenuKeyboard})
	}
	return e.send(ctx, userID, mainMenu("Please choose an option from the menu below:"))
}

func (e *Engine) addItem(ctx context.Context, userID int64, cmd Command) error {
	item, ok := e.catalog.Lookup(cmd.Category, cmd.Item)
	if !ok {
		logger.Warn(ctx, component, "cart.add",
			slog.String("status", "not_found"),
			slog.Int64("user_id", userID),
			slog.String("category", cmd.Category),
			slog.String("item", cmd.Item),
		)
		return e.send(ctx, userID, chat.Text("⚠️ That item is no longer available."))
	}
	line := e.carts.Add(userID, item)
	logger.Info(ctx, component, "cart.add",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("item", line.Key()),
		slog.Int("quantity", line.Quantity),
	)
	return e.send(ctx, userID, addedView(line, e.carts.Get(userID)))
}

func (e *Engine) startCheckout(ctx context.Context, userID int64) error {
	if e.carts.Get(userID).IsEmpty() {
		return e.send(ctx, userID, emptyCartView())
	}
	e.sessions.Put(userID, session.Session{Step: session.AwaitingName})
	return e.send(ctx, userID, prompt(session.AwaitingName))
}

func (e *Engine) handleCheckout(ctx context.Context, userID int64, s session.Session, cmd Command) error {
	if cmd.Aborts() {
		e.sessions.Reset(userID)
		return e.send(ctx, userID, mainMenu("Checkout cancelled. Your cart is still saved."))
	}
	if cmd.Kind != FreeText && cmd.Text == "" {
		// Button actions other than adds do not answer a question.
		switch cmd.Kind {
		case ViewCart:
			return e.send(ctx, userID, cartView(e.carts.Get(userID), e.orders.Pricing()))
		case ClearCart:
			e.carts.Clear(userID)
			e.sessions.Reset(userID)
			return e.send(ctx, userID, mainMenu("🗑 Your cart has been cleared."))
		}
		return e.send(ctx, userID, prompt(s.Step))
	}

	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return e.send(ctx, userID, prompt(s.Step))
	}

	switch s.Step {
	case session.AwaitingName:
		s.CustomerName = text
		s.Step = session.AwaitingPhone
	case session.AwaitingPhone:
		s.Phone = text
		s.Step = session.AwaitingAddress
	case session.AwaitingAddress:
		s.Address = text
		s.Step = session.AwaitingInstructions
	case session.AwaitingInstructions:
		if strings.EqualFold(text, LabelNone) {
			text = ""
		}
		s.Instructions = text
		if e.askPayment {
			s.Step = session.AwaitingPaymentMethod
			break
		}
		return e.complete(ctx, userID, s)
	case session.AwaitingPaymentMethod:
		method, ok := parsePaymentMethod(text)
		if !ok {
			return e.send(ctx, userID, prompt(session.AwaitingPaymentMethod))
		}
		s.PaymentMethod = method
		return e.complete(ctx, userID, s)
	}

	e.sessions.Put(userID, s)
	return e.send(ctx, userID, prompt(s.Step))
}

func parsePaymentMethod(text string) (string, bool) {
	t := strings.ToLower(text)
	switch {
	case t == strings.ToLower(LabelCash) || strings.Contains(t, "cash"):
		return "Cash on Delivery", true
	case t == strings.ToLower(LabelCard) || strings.Contains(t, "card"):
		return "Card on Delivery", true
	}
	return "", false
}

// complete turns the collected session into an order. On failure the stored
// session keeps its step so the user can resend the last answer.
func (e *Engine) complete(ctx context.Context, userID int64, s session.Session) error {
	c := e.carts.Get(userID)
	if c.IsEmpty() {
		e.sessions.Reset(userID)
		return e.send(ctx, userID, emptyCartView())
	}

	o, err := e.orders.Create(ctx, orders.Draft{
		UserID:        userID,
		CustomerName:  s.CustomerName,
		Phone:         s.Phone,
		Address:       s.Address,
		Instructions:  s.Instructions,
		PaymentMethod: s.PaymentMethod,
		Cart:          c,
	})
	if err != nil {
		logger.Error(ctx, component, "checkout.complete",
			slog.String("status", "error"),
			slog.Int64("user_id", userID),
			slog.String("step", string(s.Step)),
			slog.String("err", err.Error()),
		)
		return e.send(ctx, userID, chat.Text("⚠️ We could not place your order right now. Please send your last answer again to retry."))
	}

	e.carts.Clear(userID)
	e.sessions.Reset(userID)
	logger.Info(ctx, component, "checkout.complete",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("order_id", o.ID),
	)
	return e.send(ctx, userID, mainMenu("🏠 What would you like to do next?"))
}

func deniedView() chat.Message {
	return chat.Text("⛔ This action is only available to the store operator.")
}

func (e *Engine) send(ctx context.Context, to int64, msg chat.Message) error {
	if err := e.out.Send(ctx, to, msg); err != nil {
		logger.Warn(ctx, component, "reply",
			slog.String("status", "error"),
			slog.Int64("to", to),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("conversation: reply to %d: %w", to, err)
	}
	return nil
}
