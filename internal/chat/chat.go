// Package chat describes outbound messages independently of the transport.
package chat

import (
	"context"
	"errors"
)

// ErrMixedKeyboards is returned when a message carries both keyboard kinds.
var ErrMixedKeyboards = errors.New("chat: reply keyboard and inline actions are mutually exclusive")

// Button is an inline action; Payload is delivered back as a callback.
type Button struct {
	Text    string
	Payload string
}

// Message is a text with an optional reply keyboard or inline actions.
// Markdown marks Text as Telegram markdown (v1); user input inside it must be escaped.
type Message struct {
	Text           string
	Markdown       bool
	Reply          [][]string
	Inline         [][]Button
	RemoveKeyboard bool
}

// Validate rejects messages that cannot be rendered.
func (m Message) Validate() error {
	if len(m.Reply) > 0 && len(m.Inline) > 0 {
		return ErrMixedKeyboards
	}
	if m.RemoveKeyboard && len(m.Reply) > 0 {
		return ErrMixedKeyboards
	}
	return nil
}

// Text builds a plain message.
func Text(text string) Message {
	return Message{Text: text}
}

// Messenger delivers a message to a user or chat.
type Messenger interface {
	Send(ctx context.Context, to int64, msg Message) error
}

// MessengerFunc adapts a function to Messenger.
type MessengerFunc func(ctx context.Context, to int64, msg Message) error

// Send calls f.
func (f MessengerFunc) Send(ctx context.Context, to int64, msg Message) error {
	return f(ctx, to, msg)
}
