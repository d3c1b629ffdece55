package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)
	return b
}

func textUpdate(id int, userID int64) tele.Update {
	return tele.Update{ID: id, Message: &tele.Message{
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		Text:   "hi",
	}}
}

func TestRateLimitMiddleware(t *testing.T) {
	b := offlineBot(t)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
		Now:       func() time.Time { return clock },
	})
	handled := 0
	h := mw(func(tele.Context) error { handled++; return nil })

	require.NoError(t, h(b.NewContext(textUpdate(1, 7))))
	require.NoError(t, h(b.NewContext(textUpdate(2, 7))))
	require.NoError(t, h(b.NewContext(textUpdate(3, 8))))
	assert.Equal(t, 2, handled)
	assert.Equal(t, 1, limited)

	cb := tele.Update{ID: 4, Callback: &tele.Callback{Sender: &tele.User{ID: 7}, Data: "cart"}}
	require.NoError(t, h(b.NewContext(cb)))
	assert.Equal(t, 3, handled)

	clock = clock.Add(2 * time.Second)
	require.NoError(t, h(b.NewContext(textUpdate(5, 7))))
	assert.Equal(t, 4, handled)
}

func TestRecoverMiddlewareTurnsPanicIntoError(t *testing.T) {
	b := offlineBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })

	var err error
	assert.NotPanics(t, func() { err = h(b.NewContext(textUpdate(1, 7))) })
	assert.ErrorContains(t, err, "boom")
}

func TestLoggerMiddlewareStoresRID(t *testing.T) {
	b := offlineBot(t)
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})
	require.NoError(t, h(b.NewContext(textUpdate(42, 7))))
	assert.NotEmpty(t, rid)
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "message", UpdateKind(textUpdate(1, 1)))
	assert.Equal(t, "callback", UpdateKind(tele.Update{Callback: &tele.Callback{}}))
	assert.Equal(t, "other", UpdateKind(tele.Update{}))
}
