package actions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/grocerybot/internal/actions"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		payload string
		want    actions.Action
	}{
		{actions.Add("🍎 Fruits", "Apples"), actions.Action{Kind: actions.AddItem, Category: "🍎 Fruits", Item: "Apples"}},
		{actions.Category("🥛 Dairy"), actions.Action{Kind: actions.ShowCategory, Category: "🥛 Dairy"}},
		{actions.Cart(), actions.Action{Kind: actions.ViewCart}},
		{actions.CheckoutPayload(), actions.Action{Kind: actions.Checkout}},
		{actions.Clear(), actions.Action{Kind: actions.ClearCart}},
		{actions.Menu(), actions.Action{Kind: actions.MainMenu}},
		{actions.ShipOrder("ORD-1"), actions.Action{Kind: actions.Ship, OrderID: "ORD-1"}},
		{actions.DeliverOrder("ORD-1"), actions.Action{Kind: actions.Deliver, OrderID: "ORD-1"}},
		{actions.CancelOrder("ORD-1"), actions.Action{Kind: actions.Cancel, OrderID: "ORD-1"}},
		{"add_Fruits", actions.Action{}},
		{"add_/Apples", actions.Action{}},
		{"ship_", actions.Action{}},
		{"whatever", actions.Action{}},
	}

	for _, tc := range testCases {
		t.Run(tc.payload, func(t *testing.T) {
			assert.Equal(t, tc.want, actions.Parse(tc.payload))
		})
	}
}

func TestOperatorPayloads(t *testing.T) {
	assert.True(t, actions.Parse(actions.ShipOrder("X")).Operator())
	assert.False(t, actions.Parse(actions.Cart()).Operator())

	assert.True(t, actions.IsOperatorPayload("cancel_"))
	assert.True(t, actions.IsOperatorPayload("deliver_ORD-1"))
	assert.False(t, actions.IsOperatorPayload("checkout"))
}

func TestDefaultCatalogPayloadsFitTelegramLimit(t *testing.T) {
	assert.LessOrEqual(t, len(actions.Add("🥦 Vegetables", "Broccoli")), actions.MaxPayloadLen)
	assert.LessOrEqual(t, len(actions.CancelOrder("ORD-20261018153045-0001-abcdef12")), actions.MaxPayloadLen)
}
