package telegrambot_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tgsender "github.com/m3rciful/grocerybot/core/telegram/sender"
	"github.com/m3rciful/grocerybot/internal/chat"
	"github.com/m3rciful/grocerybot/internal/telegrambot"

	tele "gopkg.in/telebot.v4"
)

type apiRecorder struct {
	mu    sync.Mutex
	calls []map[string]any
	paths []string
}

func (r *apiRecorder) handler(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	params := map[string]any{}
	_ = json.Unmarshal(body, &params)
	r.mu.Lock()
	r.calls = append(r.calls, params)
	r.paths = append(r.paths, req.URL.Path)
	r.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
}

func newTestBot(t *testing.T) (*tele.Bot, *apiRecorder) {
	t.Helper()
	rec := &apiRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	t.Cleanup(srv.Close)
	bot, err := tele.NewBot(tele.Settings{URL: srv.URL, Token: "123:TEST", Offline: true, Synchronous: true})
	require.NoError(t, err)
	return bot, rec
}

func TestMessengerSendsMarkdownWithInlineActions(t *testing.T) {
	bot, rec := newTestBot(t)
	sender := tgsender.NewDispatcher(tgsender.Options{Workers: 1, RetryBackoff: time.Millisecond})
	t.Cleanup(sender.Close)
	m := telegrambot.NewMessenger(bot, sender)

	err := m.Send(context.Background(), 42, chat.Message{
		Text:     "🆕 *New order*",
		Markdown: true,
		Inline:   [][]chat.Button{{{Text: "🚚 Ship", Payload: "ship_ORD-1"}}},
	})
	require.NoError(t, err)

	require.Len(t, rec.calls, 1)
	assert.True(t, strings.HasSuffix(rec.paths[0], "/sendMessage"))
	call := rec.calls[0]
	assert.Equal(t, "42", call["chat_id"])
	assert.Equal(t, "🆕 *New order*", call["text"])
	assert.Equal(t, "Markdown", call["parse_mode"])
	assert.Contains(t, call["reply_markup"], "ship_ORD-1")
}

func TestMessengerRejectsMixedKeyboards(t *testing.T) {
	bot, rec := newTestBot(t)
	m := telegrambot.NewMessenger(bot, nil)

	err := m.Send(context.Background(), 42, chat.Message{
		Text:   "x",
		Reply:  [][]string{{"a"}},
		Inline: [][]chat.Button{{{Text: "b", Payload: "b"}}},
	})
	assert.ErrorIs(t, err, chat.ErrMixedKeyboards)
	assert.Empty(t, rec.calls)
}

func TestSendOptions(t *testing.T) {
	plain := telegrambot.SendOptions(chat.Text("hello"))
	assert.Empty(t, plain.ParseMode)
	assert.Nil(t, plain.ReplyMarkup)

	reply := telegrambot.SendOptions(chat.Message{Text: "menu", Reply: [][]string{{"🛒 Shop", "🧺 View Cart"}}})
	require.NotNil(t, reply.ReplyMarkup)
	assert.Len(t, reply.ReplyMarkup.ReplyKeyboard[0], 2)

	removed := telegrambot.SendOptions(chat.Message{Text: "bye", RemoveKeyboard: true})
	require.NotNil(t, removed.ReplyMarkup)
	assert.True(t, removed.ReplyMarkup.RemoveKeyboard)
}
