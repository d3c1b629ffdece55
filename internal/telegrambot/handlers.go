package telegrambot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/grocerybot/core/telegram/helpers"
	"github.com/m3rciful/grocerybot/core/telegram/router"
	tgsender "github.com/m3rciful/grocerybot/core/telegram/sender"
	"github.com/m3rciful/grocerybot/internal/actions"
	"github.com/m3rciful/grocerybot/internal/conversation"

	tele "gopkg.in/telebot.v4"
)

// Dispatcher consumes decoded updates.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev conversation.Event) bool
}

// Handlers converts Telebot updates into conversation events.
type Handlers struct {
	dispatcher Dispatcher
	sender     *tgsender.Dispatcher
}

// NewHandlers returns handlers feeding d. Callback answers are queued on
// sender when it is set.
func NewHandlers(d Dispatcher, sender *tgsender.Dispatcher) *Handlers {
	return &Handlers{dispatcher: d, sender: sender}
}

// Routes returns the text, callback and media routes.
func (h *Handlers) Routes() router.Handlers {
	return router.Handlers{
		Text:     h.OnText,
		Callback: h.OnCallback,
		Media:    h.OnMedia,
		Answer:   h.answer,
	}
}

// OnText dispatches a text message.
func (h *Handlers) OnText(c tele.Context) error {
	ev, ok := baseEvent(c)
	if !ok {
		return nil
	}
	ev.Kind = conversation.TextEvent
	ev.Text = c.Text()
	h.dispatcher.Dispatch(tghelpers.BuildContext(c), ev)
	return nil
}

// OnCallback dispatches an inline button press.
func (h *Handlers) OnCallback(c tele.Context) error {
	ev, ok := baseEvent(c)
	if !ok {
		return nil
	}
	ev.Kind = conversation.ActionEvent
	ev.Payload = callbacks.CallbackPayload(c)
	ctx := tghelpers.BuildContext(c)
	if a := actions.Parse(ev.Payload); a.Operator() {
		ctx = tghelpers.WithOrder(c, a.OrderID)
	}
	h.dispatcher.Dispatch(ctx, ev)
	return nil
}

// OnMedia dispatches a non-text message as an empty text so the user is
// re-prompted for whatever the current step expects.
func (h *Handlers) OnMedia(c tele.Context) error {
	ev, ok := baseEvent(c)
	if !ok {
		return nil
	}
	ev.Kind = conversation.TextEvent
	h.dispatcher.Dispatch(tghelpers.BuildContext(c), ev)
	return nil
}

func (h *Handlers) answer(c tele.Context) error {
	respond := func() error { return c.Respond() }
	if h.sender == nil {
		return respond()
	}
	ctx := tghelpers.BuildContext(c)
	err := h.sender.Enqueue(ctx, "callback.answer", "answerCallbackQuery", respond)
	if errors.Is(err, tgsender.ErrQueueFull) || errors.Is(err, tgsender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", "callback.answer"),
			slog.String("err", err.Error()),
		)
		return respond()
	}
	return err
}

// baseEvent fills the sender fields. Updates from groups and channels are
// ignored; the shop talks to customers in private chats only.
func baseEvent(c tele.Context) (conversation.Event, bool) {
	user := c.Sender()
	if user == nil || user.IsBot {
		return conversation.Event{}, false
	}
	if ch := c.Chat(); ch != nil && ch.Type != tele.ChatPrivate {
		return conversation.Event{}, false
	}
	return conversation.Event{
		ID:     c.Update().ID,
		UserID: user.ID,
		Name:   user.FirstName,
	}, true
}
