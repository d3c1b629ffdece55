package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/internal/chat"
	"github.com/m3rciful/grocerybot/internal/notify"
	"github.com/m3rciful/grocerybot/internal/orders"
	"github.com/m3rciful/grocerybot/internal/session"
)

func (e *Engine) handleOperator(ctx context.Context, operatorID int64, s session.Session, cmd Command) error {
	switch cmd.Kind {
	case Pending:
		return e.sendPending(ctx, operatorID)
	case ShipOrder:
		return e.transition(ctx, operatorID, cmd.OrderID, orders.Shipped, "")
	case DeliverOrder:
		return e.transition(ctx, operatorID, cmd.OrderID, orders.Delivered, "")
	case CancelOrder:
		o, err := e.orders.Get(ctx, cmd.OrderID)
		if err != nil {
			return e.send(ctx, operatorID, operatorError(cmd.OrderID, err))
		}
		if o.Status.Terminal() {
			return e.send(ctx, operatorID, chat.Text(fmt.Sprintf("ℹ️ Order %s is already %s.", o.ID, o.Status)))
		}
		// The reason prompt would replace the operator's own checkout fields.
		if s.Step.InCheckout() {
			p := prompt(s.Step)
			return e.send(ctx, operatorID, chat.Message{
				Text:  fmt.Sprintf("⚠️ Finish or cancel your checkout before cancelling order %s.\n\n%s", o.ID, p.Text),
				Reply: p.Reply,
			})
		}
		e.sessions.Put(operatorID, session.Session{Step: session.AwaitingCancelReason, PendingOrderID: o.ID})
		return e.send(ctx, operatorID, chat.Message{
			Text:  fmt.Sprintf("✍️ Send the cancellation reason for order %s.", o.ID),
			Reply: cancelKeyboard,
		})
	}
	return e.send(ctx, operatorID, prompt(s.Step))
}

// handleCancelReason consumes the operator's next text as the cancellation note.
func (e *Engine) handleCancelReason(ctx context.Context, operatorID int64, s session.Session, cmd Command) error {
	if cmd.Aborts() {
		e.sessions.Reset(operatorID)
		return e.send(ctx, operatorID, mainMenu(fmt.Sprintf("Order %s was not cancelled.", s.PendingOrderID)))
	}
	if cmd.Text == "" {
		return e.send(ctx, operatorID, prompt(session.AwaitingCancelReason))
	}
	e.sessions.Reset(operatorID)
	return e.transition(ctx, operatorID, s.PendingOrderID, orders.Cancelled, cmd.Text)
}

func (e *Engine) transition(ctx context.Context, operatorID int64, id string, to orders.Status, note string) error {
	o, err := e.orders.Transition(ctx, operatorID, id, to, note)
	if err != nil {
		logger.Warn(ctx, component, "operator.transition",
			slog.String("status", "error"),
			slog.String("order_id", id),
			slog.String("to", string(to)),
			slog.String("err", err.Error()),
		)
		return e.send(ctx, operatorID, operatorError(id, err))
	}
	return e.send(ctx, operatorID, mainMenu(fmt.Sprintf("%s Order %s marked as %s.", o.Status.Emoji(), o.ID, o.Status)))
}

func (e *Engine) sendPending(ctx context.Context, operatorID int64) error {
	pending, err := e.orders.Pending(ctx)
	if err != nil {
		logger.Error(ctx, component, "operator.pending",
			slog.String("status", "error"),
			slog.String("err", err.Error()),
		)
		return e.send(ctx, operatorID, chat.Text("⚠️ Could not load pending orders."))
	}
	if err := e.send(ctx, operatorID, notify.PendingDigest(pending, e.now())); err != nil {
		return err
	}
	for _, o := range pending {
		if err := e.send(ctx, operatorID, notify.NewOrder(o)); err != nil {
			return err
		}
	}
	return nil
}

func operatorError(id string, err error) chat.Message {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		return chat.Text(fmt.Sprintf("⚠️ Order %s was not found.", id))
	case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, orders.ErrConflict):
		return chat.Text(fmt.Sprintf("⚠️ Order %s cannot be changed: it is no longer in a state that allows this.", id))
	case errors.Is(err, orders.ErrUnauthorized):
		return deniedView()
	}
	return chat.Text(fmt.Sprintf("⚠️ Could not update order %s. Please try again.", id))
}
