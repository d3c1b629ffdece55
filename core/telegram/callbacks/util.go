package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits Telebot's \f<unique>|<payload> encoding.
// Buttons created without a unique key carry their payload verbatim, so data
// without the \f marker is returned as payload with an empty unique.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := cb.Data
	if !strings.HasPrefix(raw, "\f") {
		return "", raw
	}
	parts := strings.SplitN(strings.TrimPrefix(raw, "\f"), "|", 2)
	unique := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return unique, payload
}

// CallbackKey returns the unique key of the pressed button, if any.
func CallbackKey(c tele.Context) string {
	k, _ := ParseCallbackData(c.Callback())
	return k
}

// CallbackPayload returns the data part of the pressed button.
func CallbackPayload(c tele.Context) string {
	_, payload := ParseCallbackData(c.Callback())
	return payload
}
