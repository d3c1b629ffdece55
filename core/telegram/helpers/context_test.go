package helpers

import (
	"testing"

	"github.com/m3rciful/grocerybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Token: "123:TEST", Offline: true, Synchronous: true})
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	return bot.NewContext(tele.Update{
		ID: 77,
		Message: &tele.Message{
			Text:   "hi",
			Sender: &tele.User{ID: 1001},
			Chat:   &tele.Chat{ID: 1001, Type: tele.ChatPrivate},
		},
	})
}

func TestBuildContextCachesUpdateMeta(t *testing.T) {
	c := newContext(t)
	ctx := BuildContext(c)

	if got := logger.UpdateIDFrom(ctx); got != 77 {
		t.Fatalf("update id = %d, want 77", got)
	}
	if got := logger.UserIDFrom(ctx); got != 1001 {
		t.Fatalf("user id = %d, want 1001", got)
	}
	if logger.RIDFrom(ctx) == "" {
		t.Fatal("expected rid")
	}
	if again := BuildContext(c); logger.RIDFrom(again) != logger.RIDFrom(ctx) {
		t.Fatal("expected cached context on second call")
	}
}

func TestWithOrderAndHandlerAreStored(t *testing.T) {
	c := newContext(t)
	WithHandler(c, "text")
	WithOrder(c, "ORD-1")

	ctx := BuildContext(c)
	if got := logger.HandlerFrom(ctx); got != "text" {
		t.Fatalf("handler = %q, want text", got)
	}
	if got := logger.OrderIDFrom(ctx); got != "ORD-1" {
		t.Fatalf("order id = %q, want ORD-1", got)
	}

	WithOrder(c, "")
	if got := logger.OrderIDFrom(BuildContext(c)); got != "ORD-1" {
		t.Fatalf("empty order id replaced context: %q", got)
	}
}
