package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/grocerybot/internal/actions"
	"github.com/m3rciful/grocerybot/internal/chat"
	"github.com/m3rciful/grocerybot/internal/notify"
	"github.com/m3rciful/grocerybot/internal/orders"
)

const (
	customerID int64 = 1
	operatorID int64 = 999
)

func order(status orders.Status) orders.Order {
	d := decimal.RequireFromString
	return orders.Order{
		ID:           "ORD-20261018120000-0001-abcdef12",
		UserID:       customerID,
		CustomerName: "Ann_Lee",
		Phone:        "555-0100",
		Address:      "1 Main St",
		Items: []orders.Item{
			{Name: "Apples", UnitPrice: d("3.99"), Unit: "kg", Quantity: 2},
			{Name: "Milk", UnitPrice: d("2.99"), Unit: "liter", Quantity: 1},
		},
		Subtotal:    d("10.97"),
		DeliveryFee: d("5.00"),
		Total:       d("15.97"),
		Status:      status,
		CreatedAt:   time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
}

func TestOrderConfirmed(t *testing.T) {
	rec := &chat.Recorder{}
	n := notify.New(rec, operatorID)

	require.NoError(t, n.OrderConfirmed(context.Background(), order(orders.Pending)))

	msgs := rec.To(customerID)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Markdown)
	assert.Contains(t, msgs[0].Text, "ORD-20261018120000-0001-abcdef12")
	assert.Contains(t, msgs[0].Text, "Apples x2 (kg): $7.98")
	assert.Contains(t, msgs[0].Text, "Delivery: $5.00")
	assert.Contains(t, msgs[0].Text, "$15.97")
	assert.Contains(t, msgs[0].Text, `Ann\_Lee`)
	assert.Empty(t, msgs[0].Inline)
}

func TestOrderReceivedCarriesOperatorControls(t *testing.T) {
	rec := &chat.Recorder{}
	n := notify.New(rec, operatorID)
	o := order(orders.Pending)

	require.NoError(t, n.OrderReceived(context.Background(), o))

	require.Len(t, rec.Sent(), 1)
	msg, ok := rec.Last(operatorID)
	require.True(t, ok)

	var payloads []string
	for _, row := range msg.Inline {
		for _, b := range row {
			payloads = append(payloads, b.Payload)
		}
	}
	assert.ElementsMatch(t, []string{
		actions.ShipOrder(o.ID), actions.DeliverOrder(o.ID), actions.CancelOrder(o.ID),
	}, payloads)
}

func TestOrderReceivedWithoutOperatorIsNoop(t *testing.T) {
	rec := &chat.Recorder{}
	require.NoError(t, notify.New(rec, 0).OrderReceived(context.Background(), order(orders.Pending)))
	assert.Empty(t, rec.Sent())
}

func TestStatusChangedTemplates(t *testing.T) {
	testCases := []struct {
		status orders.Status
		note   string
		want   string
	}{
		{orders.Shipped, "", "on its way"},
		{orders.Delivered, "", "has been delivered"},
		{orders.Cancelled, "out of stock", "Reason: out of stock"},
		{orders.Cancelled, "", "Reason: no reason given"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status)+tc.note, func(t *testing.T) {
			rec := &chat.Recorder{}
			o := order(tc.status)
			o.Note = tc.note

			require.NoError(t, notify.New(rec, operatorID).StatusChanged(context.Background(), o))

			sent := rec.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, customerID, sent[0].To)
			assert.Contains(t, sent[0].Msg.Text, tc.want)
		})
	}
}

func TestSendFailureIsReturned(t *testing.T) {
	rec := &chat.Recorder{Err: errors.New("forbidden")}
	err := notify.New(rec, operatorID).StatusChanged(context.Background(), order(orders.Shipped))
	assert.ErrorContains(t, err, "forbidden")
}

func TestPendingDigest(t *testing.T) {
	now := time.Date(2026, 10, 18, 13, 30, 0, 0, time.UTC)
	msg := notify.PendingDigest([]orders.Order{order(orders.Pending)}, now)
	assert.Contains(t, msg.Text, "Pending orders: 1")
	assert.Contains(t, msg.Text, "waiting 1h30m0s")

	empty := notify.PendingDigest(nil, now)
	assert.Contains(t, empty.Text, "No pending orders")

	rec := &chat.Recorder{}
	require.NoError(t, notify.New(rec, operatorID).PendingDigest(context.Background(), nil))
	assert.Len(t, rec.To(operatorID), 1)
}

func TestFreeDeliveryRendering(t *testing.T) {
	o := order(orders.Pending)
	o.DeliveryFee = decimal.Zero
	assert.Contains(t, notify.Totals(o), "Delivery: FREE")
}
