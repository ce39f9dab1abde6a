package session

import "sync"

// mailbox is the unbounded FIFO inbound queue for one session. Senders
// append under the lock; the owning session drains whole batches. Once
// closed, every put is silently dropped, which is the fire-and-forget
// contract for messages addressed to a terminated session.
type mailbox struct {
	mu     sync.Mutex
	items  []any
	closed bool
	wake   chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (m *mailbox) put(msg any) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, msg)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return true
}

func (m *mailbox) drain() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.items = nil
	m.mu.Unlock()
}
