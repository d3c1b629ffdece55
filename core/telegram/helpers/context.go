// Package helpers carries the per-update logging context through Telebot
// handlers.
package helpers

import (
	"context"

	"github.com/m3rciful/grocerybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	ctxKey = "log_ctx"
	ridKey = "rid"
)

// StoreContext caches ctx on c so later middleware and handlers reuse it.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(ctxKey, ctx)
}

// ContextFrom returns the context cached by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the cached update context, creating it on first use
// with the request id plus update, user and chat ids.
func BuildContext(c tele.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}

	updateID := c.Update().ID
	var userID, chatID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}

	rid, _ := c.Get(ridKey).(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}

	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the update context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	return update(c, func(ctx context.Context) context.Context {
		if handler == "" {
			return ctx
		}
		return logger.WithHandler(ctx, handler)
	})
}

// WithOrder tags the update context with the order an operator acts on.
func WithOrder(c tele.Context, orderID string) context.Context {
	return update(c, func(ctx context.Context) context.Context {
		return logger.WithOrderID(ctx, orderID)
	})
}

func update(c tele.Context, fn func(context.Context) context.Context) context.Context {
	base := BuildContext(c)
	ctx := fn(base)
	if ctx != base {
		StoreContext(c, ctx)
	}
	return ctx
}
