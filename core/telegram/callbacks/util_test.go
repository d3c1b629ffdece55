package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	testCases := []struct {
		name    string
		cb      *tele.Callback
		unique  string
		payload string
	}{
		{"nil", nil, "", ""},
		{"raw payload", &tele.Callback{Data: "add_🍎 Fruits/Apples"}, "", "add_🍎 Fruits/Apples"},
		{"encoded", &tele.Callback{Data: "\fship|ORD-1"}, "ship", "ORD-1"},
		{"encoded without payload", &tele.Callback{Data: "\fmenu"}, "menu", ""},
		{"already split", &tele.Callback{Unique: "cart", Data: "x"}, "cart", "x"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			unique, payload := ParseCallbackData(tc.cb)
			assert.Equal(t, tc.unique, unique)
			assert.Equal(t, tc.payload, payload)
		})
	}
}
