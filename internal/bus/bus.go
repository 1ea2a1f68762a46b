package bus

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Bus is an in-process publish/subscribe bus. Subscribers register a
// kind prefix ("conn.", "message.") and receive every event whose kind
// starts with it. Delivery is non-blocking: a subscriber that falls
// behind loses events rather than stalling the publisher, so the
// websocket read loop never blocks on a slow view.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]*subscriber
	next    int
	dropped atomic.Uint64
}

type subscriber struct {
	prefix string
	ch     chan Event
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Publish builds an event for the given kind and fans it out to every
// matching subscriber.
func (b *Bus) Publish(kind Kind, payload any) {
	evt := newEvent(kind, payload)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !strings.HasPrefix(string(kind), sub.prefix) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers for events whose kind starts with prefix. The
// returned cancel func releases the subscription; the channel is never
// closed by the bus.
func (b *Bus) Subscribe(prefix string, buf int) (<-chan Event, func()) {
	ch := make(chan Event, buf)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = &subscriber{prefix: prefix, ch: ch}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Dropped reports how many events were discarded because a subscriber
// buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
