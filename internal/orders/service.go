package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/grocerybot/core/logger"
)

const component = "service.orders"

// Options configure a Service. Only Ledger is required.
type Options struct {
	Ledger     Ledger
	OperatorID int64
	Pricing    Pricing
	IDs        *IDGenerator
	Sink       Sink
	Notifier   Notifier
	Publisher  Publisher
	Now        func() time.Time
}

// Service creates orders and drives their status lifecycle.
type Service struct {
	ledger     Ledger
	operatorID int64
	pricing    Pricing
	ids        *IDGenerator
	sink       Sink
	notifier   Notifier
	publisher  Publisher
	now        func() time.Time
}

// NewService fills unset options with defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Ledger == nil {
		return nil, errors.New("orders: ledger is required")
	}
	s := &Service{
		ledger:     opts.Ledger,
		operatorID: opts.OperatorID,
		pricing:    opts.Pricing,
		ids:        opts.IDs,
		sink:       opts.Sink,
		notifier:   opts.Notifier,
		publisher:  opts.Publisher,
		now:        opts.Now,
	}
	if s.pricing == (Pricing{}) {
		s.pricing = DefaultPricing()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ids == nil {
		s.ids = NewIDGenerator(s.now)
	}
	if s.sink == nil {
		s.sink = nopSink{}
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	return s, nil
}

// OperatorID returns the identity allowed to change statuses.
func (s *Service) OperatorID() int64 { return s.operatorID }

// IsOperator reports whether userID is the operator.
func (s *Service) IsOperator(userID int64) bool {
	return s.operatorID != 0 && userID == s.operatorID
}

// Pricing returns the fee rules used for new orders.
func (s *Service) Pricing() Pricing { return s.pricing }

// Create prices the draft, stores it as Pending and runs the side effects.
// Side-effect failures are logged and never undo the stored order.
func (s *Service) Create(ctx context.Context, d Draft) (Order, error) {
	if d.Cart.IsEmpty() {
		return Order{}, ErrEmptyCart
	}

	items := SnapshotItems(d.Cart)
	subtotal, fee, total := s.pricing.Quote(items)
	now := s.now().UTC()
	o := Order{
		ID:            s.ids.Next(),
		UserID:        d.UserID,
		CustomerName:  strings.TrimSpace(d.CustomerName),
		Phone:         strings.TrimSpace(d.Phone),
		Address:       strings.TrimSpace(d.Address),
		Instructions:  strings.TrimSpace(d.Instructions),
		PaymentMethod: d.PaymentMethod,
		Items:         items,
		Subtotal:      subtotal,
		DeliveryFee:   fee,
		Total:         total,
		Status:        Pending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ctx = logger.WithOrderID(ctx, o.ID)

	if err := s.ledger.Insert(ctx, o); err != nil {
		logger.Error(ctx, component, "order.create",
			slog.String("status", "error"),
			slog.Int64("user_id", d.UserID),
			slog.String("err", err.Error()),
		)
		return Order{}, fmt.Errorf("orders: create: %w", err)
	}
	logger.Info(ctx, component, "order.create",
		slog.String("status", "ok"),
		slog.Int64("user_id", o.UserID),
		slog.Int("items", len(o.Items)),
		slog.String("total", o.Total.StringFixed(2)),
	)

	if err := s.sink.Persist(ctx, o); err != nil {
		s.sideEffectFailed(ctx, "order.persist", err)
	}
	if err := s.notifier.OrderConfirmed(ctx, o); err != nil {
		if err = s.notifier.OrderConfirmed(ctx, o); err != nil {
			s.sideEffectFailed(ctx, "order.confirm", err)
		}
	}
	if err := s.notifier.OrderReceived(ctx, o); err != nil {
		s.sideEffectFailed(ctx, "order.notify_operator", err)
	}
	s.publish(ctx, Event{Kind: EventCreated, Order: o, At: now})
	return o, nil
}

// Transition moves an order to a new status on behalf of actor.
// Exactly one customer notification follows a stored change.
func (s *Service) Transition(ctx context.Context, actor int64, id string, to Status, note string) (Order, error) {
	if !s.IsOperator(actor) {
		logger.Warn(ctx, component, "order.transition",
			slog.String("status", "denied"),
			slog.Int64("user_id", actor),
			slog.String("order_id", id),
		)
		return Order{}, ErrUnauthorized
	}
	if !to.IsTarget() {
		return Order{}, fmt.Errorf("%w: %q is not a valid target", ErrInvalidTransition, to)
	}
	ctx = logger.WithOrderID(ctx, id)

	current, err := s.ledger.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := current.Status.CanTransition(to); err != nil {
		return Order{}, err
	}

	at := s.now().UTC()
	updated, err := s.ledger.UpdateStatus(ctx, id, current.Status, to, strings.TrimSpace(note), at)
	if err != nil {
		logger.Error(ctx, component, "order.transition",
			slog.String("status", "error"),
			slog.String("err", err.Error()),
		)
		return Order{}, err
	}
	logger.Info(ctx, component, "order.transition",
		slog.String("status", "ok"),
		slog.String("from", string(current.Status)),
		slog.String("to", string(to)),
	)

	if err := s.notifier.StatusChanged(ctx, updated); err != nil {
		s.sideEffectFailed(ctx, "order.notify_status", err)
	}
	s.publish(ctx, Event{Kind: EventStatusChanged, Order: updated, From: current.Status, At: at})
	return updated, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.ledger.Get(ctx, id)
}

// ListByUser returns the user's latest orders.
func (s *Service) ListByUser(ctx context.Context, userID int64, limit int) ([]Order, error) {
	return s.ledger.ListByUser(ctx, userID, limit)
}

// ListByStatus returns all orders in status, oldest first.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return s.ledger.ListByStatus(ctx, status)
}

// Pending returns all orders awaiting shipment, oldest first.
func (s *Service) Pending(ctx context.Context) ([]Order, error) {
	return s.ListByStatus(ctx, Pending)
}

// History returns the status changes of an order.
func (s *Service) History(ctx context.Context, id string) ([]StatusChange, error) {
	return s.ledger.History(ctx, id)
}

func (s *Service) publish(ctx context.Context, e Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.sideEffectFailed(ctx, "order.publish", err)
	}
}

// sideEffectFailed logs a failed best-effort step. ctx carries the order id.
func (s *Service) sideEffectFailed(ctx context.Context, event string, err error) {
	logger.Warn(ctx, component, event,
		slog.String("status", "error"),
		slog.String("err", err.Error()),
	)
}
