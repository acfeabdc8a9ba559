package notify

import (
	"context"
	"sync"
)

// Hub broadcasts notifications to any number of subscribers, such as SSE
// clients. A slow subscriber loses messages instead of blocking the editor.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan Notification
	next   int
	closed bool
}

// NewHub returns a hub without subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Notification)}
}

// Subscribe registers a subscriber with the given channel buffer and
// returns its channel and a cancel function. Cancel closes the channel; it
// is safe to call more than once.
func (h *Hub) Subscribe(buffer int) (<-chan Notification, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Notification, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

// Notify delivers n to every subscriber with room in its buffer.
func (h *Hub) Notify(_ context.Context, n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
			// Subscriber is slow, skip this message
		}
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later subscriptions receive a
// closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		close(ch)
		delete(h.subs, id)
	}
}

var _ Notifier = (*Hub)(nil)
