package orders

import (
	"context"
	"time"
)

// Sink mirrors a created order to external storage such as a spreadsheet.
type Sink interface {
	Persist(ctx context.Context, o Order) error
}

// Notifier sends the lifecycle messages to the customer and the operator.
type Notifier interface {
	// OrderConfirmed tells the customer the order was placed.
	OrderConfirmed(ctx context.Context, o Order) error
	// OrderReceived tells the operator about a new order.
	OrderReceived(ctx context.Context, o Order) error
	// StatusChanged tells the customer about a new status; o.Note carries the reason.
	StatusChanged(ctx context.Context, o Order) error
}

// EventKind names a lifecycle event.
type EventKind string

const (
	EventCreated       EventKind = "created"
	EventStatusChanged EventKind = "status_changed"
)

// Event is published after a lifecycle change is stored.
type Event struct {
	Kind  EventKind
	Order Order
	// From is empty for EventCreated.
	From Status
	At   time.Time
}

// Publisher fans lifecycle events out to other systems.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type nopSink struct{}

func (nopSink) Persist(context.Context, Order) error { return nil }

type nopNotifier struct{}

func (nopNotifier) OrderConfirmed(context.Context, Order) error { return nil }
func (nopNotifier) OrderReceived(context.Context, Order) error  { return nil }
func (nopNotifier) StatusChanged(context.Context, Order) error  { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
