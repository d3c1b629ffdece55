// Package notify renders lifecycle messages and sends them through a chat.Messenger.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/internal/chat"
	"github.com/m3rciful/grocerybot/internal/orders"
)

const component = "notify"

// Notifier implements orders.Notifier. One event produces exactly one message.
type Notifier struct {
	out        chat.Messenger
	operatorID int64
	now        func() time.Time
}

var _ orders.Notifier = (*Notifier)(nil)

// New returns a Notifier that addresses operator messages to operatorID.
func New(out chat.Messenger, operatorID int64) *Notifier {
	return &Notifier{out: out, operatorID: operatorID, now: time.Now}
}

// OrderConfirmed implements orders.Notifier.
func (n *Notifier) OrderConfirmed(ctx context.Context, o orders.Order) error {
	return n.send(ctx, "order.confirmed", o.UserID, o.ID, Confirmation(o))
}

// OrderReceived implements orders.Notifier.
func (n *Notifier) OrderReceived(ctx context.Context, o orders.Order) error {
	if n.operatorID == 0 {
		return nil
	}
	return n.send(ctx, "order.received", n.operatorID, o.ID, NewOrder(o))
}

// StatusChanged implements orders.Notifier.
func (n *Notifier) StatusChanged(ctx context.Context, o orders.Order) error {
	return n.send(ctx, "order.status", o.UserID, o.ID, StatusUpdate(o))
}

// PendingDigest sends the list of pending orders to the operator.
func (n *Notifier) PendingDigest(ctx context.Context, pending []orders.Order) error {
	if n.operatorID == 0 {
		return nil
	}
	return n.send(ctx, "orders.digest", n.operatorID, "", PendingDigest(pending, n.now()))
}

func (n *Notifier) send(ctx context.Context, event string, to int64, orderID string, msg chat.Message) error {
	err := n.out.Send(ctx, to, msg)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.Int64("to", to),
	}
	if orderID != "" {
		attrs = append(attrs, slog.String("order_id", orderID))
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.Warn(ctx, component, event, attrs...)
		return fmt.Errorf("notify: %s: %w", event, err)
	}
	logger.Debug(ctx, component, event, attrs...)
	return nil
}
