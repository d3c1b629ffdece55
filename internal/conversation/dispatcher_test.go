package conversation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/grocerybot/internal/actions"
	"github.com/m3rciful/grocerybot/internal/cart"
	"github.com/m3rciful/grocerybot/internal/catalog"
	"github.com/m3rciful/grocerybot/internal/chat"
	"github.com/m3rciful/grocerybot/internal/conversation"
	"github.com/m3rciful/grocerybot/internal/orders"
	"github.com/m3rciful/grocerybot/internal/session"
)

func TestDispatcherDropsRedeliveredEvents(t *testing.T) {
	h := newHarness(t, false)
	add := conversation.Event{ID: 10, UserID: customerID, Kind: conversation.ActionEvent, Payload: actions.Add("🍎 Fruits", "Apples")}

	assert.True(t, h.dispatcher.Dispatch(h.ctx, add))
	assert.False(t, h.dispatcher.Dispatch(h.ctx, add))

	older := add
	older.ID = 9
	assert.False(t, h.dispatcher.Dispatch(h.ctx, older))

	assert.Equal(t, 1, h.carts.Get(customerID).Count())

	last, started := h.dispatcher.LastProcessed()
	assert.True(t, started)
	assert.Equal(t, 10, last)
}

func TestDispatcherAcceptsZeroAsFirstID(t *testing.T) {
	h := newHarness(t, false)
	assert.True(t, h.dispatcher.Dispatch(h.ctx, conversation.Event{ID: 0, UserID: customerID, Text: "/start"}))
	assert.False(t, h.dispatcher.Dispatch(h.ctx, conversation.Event{ID: 0, UserID: customerID, Text: "/start"}))
}

func TestDispatcherRecoversFromPanics(t *testing.T) {
	calls := 0
	out := chat.MessengerFunc(func(_ context.Context, _ int64, _ chat.Message) error {
		calls++
		if calls == 1 {
			panic("transport exploded")
		}
		return nil
	})
	svc, err := orders.NewService(orders.Options{Ledger: orders.NewMemoryLedger(), OperatorID: operatorID})
	require.NoError(t, err)
	engine, err := conversation.NewEngine(conversation.Options{
		Catalog:  catalog.Default(),
		Carts:    cart.NewMemoryStore(),
		Sessions: session.NewMemoryStore(),
		Orders:   svc,
		Out:      out,
	})
	require.NoError(t, err)
	d := conversation.NewDispatcher(engine)

	assert.NotPanics(t, func() {
		assert.True(t, d.Dispatch(context.Background(), conversation.Event{ID: 1, UserID: customerID, Text: "/start"}))
	})
	assert.True(t, d.Dispatch(context.Background(), conversation.Event{ID: 2, UserID: customerID, Text: "/start"}))
	assert.Equal(t, 2, calls)
}

func TestDispatcherContinuesAfterSendErrors(t *testing.T) {
	h := newHarness(t, false)
	h.rec.Err = assert.AnError

	h.action(customerID, actions.Add("🍎 Fruits", "Apples"))
	h.action(customerID, actions.Add("🍎 Fruits", "Apples"))

	assert.Equal(t, 2, h.carts.Get(customerID).Count())
}
