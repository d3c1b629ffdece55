package middleware

import (
	"log/slog"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/grocerybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware stamps the update with a request id, caches its log
// context and writes a sampled debug line on receipt.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		if ch := c.Chat(); ch != nil {
			chatID = ch.ID
		}
		if u := c.Sender(); u != nil {
			userID = u.ID
		}
		c.Set("rid", logger.BuildRID(upd.ID, chatID, userID))
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug(UpdateKind(upd)) {
			logger.Debug(ctx, "tg", "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	upd := c.Update()
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("update_kind", UpdateKind(upd)),
	}
	if ch := c.Chat(); ch != nil {
		attrs = append(attrs, slog.String("chat_type", string(ch.Type)))
	}
	if u := c.Sender(); u != nil && u.LanguageCode != "" {
		attrs = append(attrs, slog.String("lang", u.LanguageCode))
	}
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.Message != nil:
		// Message text may hold checkout details; only its size is logged.
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.Int("text_len", len([]rune(t))))
		}
	}
	return attrs
}
