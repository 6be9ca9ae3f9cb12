// Package bus provides a small in-process publish/subscribe channel used to
// propagate auth, session, and data-changed signals between components that
// must not hold references to each other (the session manager, the sync
// poller, and whatever front end drives the client).
package bus

import "sync"

// Topic names published by the core.
const (
	TopicAuthChanged    = "auth.changed"
	TopicSessionExpired = "session.expired"
	TopicDataChanged    = "data.changed"
)

// Event is a published message: a topic plus an optional payload.
type Event struct {
	Topic   string
	Payload any
}

// Bus is a topic-based in-process pub/sub channel. Publish never blocks:
// subscribers with a full buffer miss the event, which is acceptable for
// the coarse "something changed, re-check" signals carried here.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]chan Event)}
}

// Subscribe registers for a topic and returns the receive channel plus an
// unsubscribe function. The channel is buffered; slow consumers drop
// events rather than stalling publishers.
func (b *Bus) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, 8)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subs[topic]
		for i, c := range subs {
			if c == ch {
				b.subs[topic] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}

	return ch, unsubscribe
}

// Publish delivers an event to every subscriber of the topic without
// blocking. Returns the number of subscribers that received it.
//
// The read lock is held across the sends: unsubscribe closes the channel
// under the write lock, so a send can never hit a just-closed channel. The
// sends are non-blocking, so the lock is only held briefly.
func (b *Bus) Publish(topic string, payload any) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subs[topic] {
		select {
		case ch <- Event{Topic: topic, Payload: payload}:
			delivered++
		default:
		}
	}

	return delivered
}
