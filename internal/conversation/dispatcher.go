package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/internal/actions"
)

// EventKind distinguishes text messages from inline button presses.
type EventKind int

const (
	TextEvent EventKind = iota
	ActionEvent
)

// Event is one inbound update.
type Event struct {
	// ID is the transport's monotonically increasing update id.
	ID     int
	UserID int64
	Kind   EventKind
	Text   string
	// Payload is the inline button data for ActionEvent.
	Payload string
	Name    string
}

// Dispatcher routes events to the Engine in arrival order. Events whose id is
// not greater than the last processed id are dropped.
type Dispatcher struct {
	engine *Engine

	mu      sync.Mutex
	last    int
	started bool
}

// NewDispatcher wraps an engine.
func NewDispatcher(engine *Engine) *Dispatcher {
	return &Dispatcher{engine: engine}
}

// LastProcessed returns the cursor and whether any event was seen.
func (d *Dispatcher) LastProcessed() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.started
}

// Dispatch handles one event. It reports false when the event was a redelivery.
// Handler errors and panics are logged and never escape.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started && ev.ID <= d.last {
		logger.Debug(ctx, component, "dispatch.skip",
			slog.Int("update_id", ev.ID),
			slog.Int("last_update_id", d.last),
		)
		return false
	}
	d.started = true
	d.last = ev.ID

	start := time.Now()
	err := d.safeHandle(ctx, ev)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.Int("update_id", ev.ID),
		slog.Int64("user_id", ev.UserID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.Error(ctx, component, "dispatch", attrs...)
		return true
	}
	logger.Debug(ctx, component, "dispatch", attrs...)
	return true
}

func (d *Dispatcher) safeHandle(ctx context.Context, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, component, "dispatch.panic",
				slog.Int("update_id", ev.ID),
				slog.Int64("user_id", ev.UserID),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("conversation: panic handling update %d: %v", ev.ID, r)
		}
	}()

	switch ev.Kind {
	case ActionEvent:
		if actions.IsOperatorPayload(ev.Payload) && !d.engine.IsOperator(ev.UserID) {
			logger.Warn(ctx, component, "operator.denied",
				slog.Int64("user_id", ev.UserID),
				slog.String("payload", logger.SanitizeLimit(ev.Payload, 64)),
			)
			return d.engine.send(ctx, ev.UserID, deniedView())
		}
		return d.engine.HandleAction(ctx, ev.UserID, ev.Payload)
	default:
		return d.engine.HandleText(ctx, ev.UserID, ev.Name, ev.Text)
	}
}
