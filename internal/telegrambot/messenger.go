// Package telegrambot adapts the conversation engine to the Telegram Bot API.
package telegrambot

import (
	"context"
	"fmt"

	"github.com/m3rciful/grocerybot/core/telegram/keyboard"
	tgsender "github.com/m3rciful/grocerybot/core/telegram/sender"
	"github.com/m3rciful/grocerybot/internal/chat"

	tele "gopkg.in/telebot.v4"
)

// Messenger sends chat messages through a Telebot instance. Calls go through
// the sender dispatcher so transient network failures are retried.
type Messenger struct {
	bot    *tele.Bot
	sender *tgsender.Dispatcher
}

// NewMessenger returns a Messenger. A nil sender sends without retries.
func NewMessenger(bot *tele.Bot, sender *tgsender.Dispatcher) *Messenger {
	return &Messenger{bot: bot, sender: sender}
}

// Send implements chat.Messenger.
func (m *Messenger) Send(ctx context.Context, to int64, msg chat.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	opts := SendOptions(msg)
	run := func() error {
		_, err := m.bot.Send(tele.ChatID(to), msg.Text, opts)
		return err
	}
	var err error
	if m.sender == nil {
		err = run()
	} else {
		err = m.sender.Do(ctx, "send.message", "sendMessage", run)
	}
	if err != nil {
		return fmt.Errorf("telegrambot: send to %d: %w", to, err)
	}
	return nil
}

// SendOptions converts the message's formatting and keyboard to Telebot options.
func SendOptions(msg chat.Message) *tele.SendOptions {
	opts := &tele.SendOptions{}
	if msg.Markdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	switch {
	case len(msg.Inline) > 0:
		rows := make([][]keyboard.InlineBtn, 0, len(msg.Inline))
		for _, row := range msg.Inline {
			r := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				r = append(r, keyboard.InlineBtn{Text: b.Text, Data: b.Payload})
			}
			rows = append(rows, r)
		}
		opts.ReplyMarkup = keyboard.InlineButtonsRows(rows...)
	case len(msg.Reply) > 0:
		opts.ReplyMarkup = keyboard.ReplyButtons(msg.Reply...)
	case msg.RemoveKeyboard:
		opts.ReplyMarkup = keyboard.RemoveKeyboard()
	}
	return opts
}
