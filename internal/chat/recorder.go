package chat

import (
	"context"
	"sync"
)

// Sent is one message captured by Recorder.
type Sent struct {
	To  int64
	Msg Message
}

// Recorder is an in-memory Messenger used by tests and dry runs.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	// Err, when set, is returned by Send after the message is recorded.
	Err error
}

// Send validates and stores the message.
func (r *Recorder) Send(_ context.Context, to int64, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{To: to, Msg: msg})
	return r.Err
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// To returns the messages addressed to one recipient.
func (r *Recorder) To(id int64) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, s := range r.sent {
		if s.To == id {
			out = append(out, s.Msg)
		}
	}
	return out
}

// Last returns the latest message sent to id.
func (r *Recorder) Last(id int64) (Message, bool) {
	msgs := r.To(id)
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Reset forgets recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
