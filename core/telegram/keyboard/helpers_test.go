package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyButtons(t *testing.T) {
	m := ReplyButtons([]string{"🛒 Shop", "🧺 View Cart"}, []string{"ℹ️ Help"})
	assert.True(t, m.ResizeKeyboard)
	require.Len(t, m.ReplyKeyboard, 2)
	assert.Len(t, m.ReplyKeyboard[0], 2)
	assert.Equal(t, "ℹ️ Help", m.ReplyKeyboard[1][0].Text)
}

func TestInlineButtonsRowsKeepsRawData(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "🚚 Ship", Data: "ship_ORD-1"}},
		[]InlineBtn{{Text: "❌ Cancel", Data: "cancel_ORD-1"}},
	)
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, "ship_ORD-1", m.InlineKeyboard[0][0].Data)
	assert.Empty(t, m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "❌ Cancel", m.InlineKeyboard[1][0].Text)
}

func TestRemoveKeyboard(t *testing.T) {
	assert.True(t, RemoveKeyboard().RemoveKeyboard)
}
