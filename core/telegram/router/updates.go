package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/grocerybot/core/logger"
	tg "github.com/m3rciful/grocerybot/core/telegram"
	"github.com/m3rciful/grocerybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/grocerybot/core/telegram/helpers"
	"github.com/m3rciful/grocerybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// mediaEndpoints are message kinds the bot cannot interpret as text.
var mediaEndpoints = []string{
	tele.OnPhoto,
	tele.OnDocument,
	tele.OnSticker,
	tele.OnVoice,
	tele.OnVideo,
	tele.OnAudio,
	tele.OnLocation,
	tele.OnContact,
}

// Handlers receive the updates the bot understands.
type Handlers struct {
	Text     tele.HandlerFunc
	Callback tele.HandlerFunc
	// Media handles non-text messages. Nil skips them.
	Media tele.HandlerFunc
	// Answer acknowledges a callback query. Defaults to c.Respond.
	Answer func(c tele.Context) error
}

// UpdateRoutes wraps the handlers with recovery and receipt logging and binds
// them to the text, callback and media endpoints.
func UpdateRoutes(h Handlers) []tg.Route {
	answer := h.Answer
	if answer == nil {
		answer = func(c tele.Context) error { return c.Respond() }
	}

	var routes []tg.Route
	if h.Text != nil {
		text := func(c tele.Context) error {
			return handleWithSummary(c, "text", time.Now(), "", "", func() error {
				return h.Text(c)
			})
		}
		routes = append(routes, tg.Route{Endpoint: tele.OnText, Handler: wrap(text)})
	}

	if h.Callback != nil {
		cb := func(c tele.Context) error {
			start := time.Now()
			if c.Callback() == nil {
				return nil
			}
			if err := answer(c); err != nil {
				logger.Warn(tghelpers.BuildContext(c), "tg", "callback.answer",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
			}
			key, payload := callbacks.ParseCallbackData(c.Callback())
			name := "callback"
			if key != "" {
				name += "." + normalizeHandlerName(key)
			}
			return handleWithSummary(c, name, start, "", "", func() error {
				return h.Callback(c)
			}, slog.String("cb_key", key), slog.String("payload", logger.SanitizeLimit(payload, 64)))
		}
		routes = append(routes, tg.Route{Endpoint: tele.OnCallback, Handler: wrap(cb)})
	}

	if h.Media != nil {
		media := func(c tele.Context) error {
			return handleWithSummary(c, "unsupported_media", time.Now(), "", "", func() error {
				return h.Media(c)
			})
		}
		for _, ep := range mediaEndpoints {
			routes = append(routes, tg.Route{Endpoint: ep, Handler: wrap(media)})
		}
	}
	return routes
}

func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}
