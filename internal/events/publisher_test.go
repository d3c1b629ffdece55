package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/grocerybot/internal/orders"
)

type fakeConn struct {
	failures int
	subjects []string
	payloads [][]byte
	closed   bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.failures > 0 {
		c.failures--
		return errors.New("nats: connection closed")
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func (c *fakeConn) FlushTimeout(time.Duration) error { return nil }
func (c *fakeConn) Close()                           { c.closed = true }

func statusEvent() orders.Event {
	at := time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)
	return orders.Event{
		Kind: orders.EventStatusChanged,
		From: orders.Pending,
		At:   at,
		Order: orders.Order{
			ID:     "ORD-1",
			UserID: 1001,
			Status: orders.Cancelled,
			Note:   "out of stock",
			Total:  decimal.RequireFromString("15.97"),
		},
	}
}

func TestPublishEncodesEnvelope(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "")

	require.NoError(t, p.Publish(context.Background(), statusEvent()))

	require.Equal(t, []string{"orders.status_changed"}, conn.subjects)
	var env Envelope
	require.NoError(t, json.Unmarshal(conn.payloads[0], &env))
	assert.Equal(t, Envelope{
		Kind:           "status_changed",
		OrderID:        "ORD-1",
		UserID:         1001,
		Status:         "Cancelled",
		PreviousStatus: "Pending",
		Note:           "out of stock",
		Total:          "15.97",
		At:             "2026-03-01T15:04:05Z",
	}, env)
}

func TestPublishRetries(t *testing.T) {
	conn := &fakeConn{failures: 2}
	p := NewPublisher(conn, "freshmart.orders.")
	p.backoff = time.Millisecond

	require.NoError(t, p.Publish(context.Background(), orders.Event{Kind: orders.EventCreated, Order: orders.Order{ID: "ORD-2"}}))
	assert.Equal(t, []string{"freshmart.orders.created"}, conn.subjects)
}

func TestPublishGivesUp(t *testing.T) {
	conn := &fakeConn{failures: 10}
	p := NewPublisher(conn, "orders")
	p.backoff = time.Millisecond

	err := p.Publish(context.Background(), statusEvent())
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Empty(t, conn.subjects)
}

func TestPublishStopsOnCancelledContext(t *testing.T) {
	conn := &fakeConn{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPublisher(conn, "orders").Publish(ctx, statusEvent())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.subjects)
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), "", "grocerybot")
	assert.Error(t, err)
}
