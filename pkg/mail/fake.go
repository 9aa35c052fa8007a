package mail

import (
	"context"
	"sync"
)

// Recorder is an in-memory Transport that keeps every message it is given.
// Err, when set, is returned from Send after the message is recorded.
type Recorder struct {
	mu   sync.Mutex
	sent []*Message
	Err  error
}

func (r *Recorder) Send(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.Err
}

// Sent returns the recorded messages in send order.
func (r *Recorder) Sent() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Message(nil), r.sent...)
}
