package lod

import (
	"sync"
)

// Mailbox is an unbounded multi-producer, single-consumer FIFO of Messages.
// Send never blocks, so it is safe to call from UI callbacks and background
// waiters alike. Only the Loop consumes from it.
type Mailbox struct {
	mu     sync.Mutex
	queue  []Message
	closed bool

	// ready holds at most one pending wakeup; bursts of sends coalesce
	ready chan struct{}
}

// NewMailbox creates an empty Mailbox
func NewMailbox() *Mailbox {
	return &Mailbox{
		ready: make(chan struct{}, 1),
	}
}

// Send enqueues a message. It returns false if the mailbox was closed by a
// consumed Quit, in which case the message is dropped.
func (m *Mailbox) Send(msg Message) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
	return true
}

// Ready returns a channel that receives a value after messages were sent.
// A receive does not guarantee the queue is non-empty; consumers drain and
// then wait again.
func (m *Mailbox) Ready() <-chan struct{} {
	return m.ready
}

// Len returns the number of queued messages
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Closed reports whether a Quit has been consumed
func (m *Mailbox) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// next pops the oldest message
func (m *Mailbox) next() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || len(m.queue) == 0 {
		return Message{}, false
	}

	msg := m.queue[0]
	m.queue[0] = Message{}
	m.queue = m.queue[1:]
	if len(m.queue) == 0 {
		m.queue = nil
	}
	return msg, true
}

// close discards everything still queued and rejects later sends
func (m *Mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.queue = nil
}
