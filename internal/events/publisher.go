// Package events publishes order lifecycle events to NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/internal/orders"
)

const component = "events"

// DefaultPrefix is the subject prefix used when none is configured.
const DefaultPrefix = "orders"

const publishAttempts = 3

var (
	_ Conn             = (*nats.Conn)(nil)
	_ orders.Publisher = (*Publisher)(nil)
)

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// Envelope is the JSON body of every event.
type Envelope struct {
	Kind           string `json:"kind"`
	OrderID        string `json:"order_id"`
	UserID         int64  `json:"user_id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Note           string `json:"note,omitempty"`
	Total          string `json:"total"`
	At             string `json:"at"`
}

// NewEnvelope encodes a lifecycle event.
func NewEnvelope(e orders.Event) Envelope {
	return Envelope{
		Kind:           string(e.Kind),
		OrderID:        e.Order.ID,
		UserID:         e.Order.UserID,
		Status:         string(e.Order.Status),
		PreviousStatus: string(e.From),
		Note:           e.Order.Note,
		Total:          e.Order.Total.StringFixed(2),
		At:             e.At.UTC().Format(time.RFC3339),
	}
}

// Publisher implements orders.Publisher on top of a NATS connection.
type Publisher struct {
	conn    Conn
	prefix  string
	flush   time.Duration
	backoff time.Duration
}

// NewPublisher wraps conn. Subjects are <prefix>.created and
// <prefix>.status_changed.
func NewPublisher(conn Conn, prefix string) *Publisher {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{conn: conn, prefix: prefix, flush: 2 * time.Second, backoff: 500 * time.Millisecond}
}

// Subject returns the subject an event kind is published on.
func (p *Publisher) Subject(kind orders.EventKind) string {
	return p.prefix + "." + string(kind)
}

// Publish implements orders.Publisher. It retries a few times and gives up
// when ctx is done.
func (p *Publisher) Publish(ctx context.Context, e orders.Event) error {
	data, err := json.Marshal(NewEnvelope(e))
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", e.Kind, err)
	}
	subject := p.Subject(e.Kind)

	var lastErr error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = p.conn.Publish(subject, data)
		if lastErr == nil {
			lastErr = p.conn.FlushTimeout(p.flush)
		}
		if lastErr == nil {
			logger.Debug(ctx, component, "publish",
				slog.String("status", "ok"),
				slog.String("subject", subject),
				slog.String("order_id", e.Order.ID),
				slog.Int("attempt", attempt),
			)
			return nil
		}
		logger.Warn(ctx, component, "publish",
			slog.String("status", "retry"),
			slog.String("subject", subject),
			slog.String("order_id", e.Order.ID),
			slog.Int("attempt", attempt),
			slog.String("err", lastErr.Error()),
		)
		if attempt == publishAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("events: publish %s after %d attempts: %w", subject, publishAttempts, lastErr)
}

// Close closes the underlying connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// Connect dials NATS, retrying until ctx is done or three attempts failed.
func Connect(ctx context.Context, url, name string) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("events: empty nats url")
	}
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		nc, err := nats.Connect(url,
			nats.Name(name),
			nats.MaxReconnects(5),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				attrs := []slog.Attr{slog.String("status", "fail")}
				if err != nil {
					attrs = append(attrs, slog.String("err", err.Error()))
				}
				logger.Warn(context.Background(), component, "nats.disconnected", attrs...)
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info(context.Background(), component, "nats.reconnected",
					slog.String("status", "ok"),
					slog.String("url", nc.ConnectedUrl()),
				)
			}),
		)
		if err == nil {
			logger.Info(ctx, component, "nats.connect",
				slog.String("status", "ok"),
				slog.String("url", nc.ConnectedUrl()),
			)
			return nc, nil
		}
		lastErr = err
		logger.Warn(ctx, component, "nats.connect",
			slog.String("status", "retry"),
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("events: connect to nats: %w", lastErr)
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("events: connect to nats after retries: %w", lastErr)
}
