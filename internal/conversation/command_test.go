package conversation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/grocerybot/internal/actions"
	"github.com/m3rciful/grocerybot/internal/catalog"
	"github.com/m3rciful/grocerybot/internal/conversation"
)

func TestParseText(t *testing.T) {
	cat := catalog.Default()
	testCases := []struct {
		text     string
		kind     conversation.Kind
		category string
	}{
		{"/start", conversation.Start, ""},
		{"/start@FreshMartBot ref", conversation.Start, ""},
		{conversation.LabelShop, conversation.Shop, ""},
		{conversation.LabelCart, conversation.ViewCart, ""},
		{conversation.LabelOrders, conversation.MyOrders, ""},
		{conversation.LabelHelp, conversation.Help, ""},
		{conversation.LabelCheckout, conversation.Checkout, ""},
		{conversation.LabelClearCart, conversation.ClearCart, ""},
		{"Main Menu", conversation.MainMenu, ""},
		{conversation.LabelMainMenu, conversation.MainMenu, ""},
		{conversation.LabelCancel, conversation.Abort, ""},
		{"/pending", conversation.Pending, ""},
		{"🥛 Dairy", conversation.ShowCategory, "🥛 Dairy"},
		{"vegetables", conversation.ShowCategory, "🥦 Vegetables"},
		{"Ann Lee", conversation.FreeText, ""},
		{"", conversation.FreeText, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			cmd := conversation.ParseText(tc.text, cat)
			assert.Equal(t, tc.kind, cmd.Kind)
			assert.Equal(t, tc.category, cmd.Category)
		})
	}
}

func TestParseTextKeepsOriginalText(t *testing.T) {
	cmd := conversation.ParseText("  12 Baker Street ", nil)
	assert.Equal(t, conversation.FreeText, cmd.Kind)
	assert.Equal(t, "12 Baker Street", cmd.Text)
}

func TestParseAction(t *testing.T) {
	assert.Equal(t,
		conversation.Command{Kind: conversation.AddItem, Category: "🍎 Fruits", Item: "Apples"},
		conversation.ParseAction(actions.Add("🍎 Fruits", "Apples")))
	assert.Equal(t,
		conversation.Command{Kind: conversation.CancelOrder, OrderID: "ORD-1"},
		conversation.ParseAction(actions.CancelOrder("ORD-1")))
	assert.Equal(t, conversation.Invalid, conversation.ParseAction("bogus").Kind)

	assert.True(t, conversation.ParseAction(actions.ShipOrder("X")).Operator())
	assert.False(t, conversation.ParseAction(actions.Cart()).Operator())
}
