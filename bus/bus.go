// Package bus is a process-local publish/subscribe broker addressed by
// room name. A room is nothing more than a named multicast group: no
// persistence, no retry, no acknowledgment. A connection that is
// unsubscribed (or too slow) at publish time simply never receives that
// event and must observe the new state on its next explicit fetch.
package bus

import (
	"sync"

	"github.com/namansharma28/CollabBoard-sub000/domain"
)

// Subscriber is one connection's receive side. Events for all rooms it
// has joined arrive on a single channel.
type Subscriber struct {
	ch chan domain.Event
}

// NewSubscriber creates a subscriber whose channel buffers up to buf
// events. When the buffer is full, further events are dropped for this
// subscriber (at-most-once, best effort).
func NewSubscriber(buf int) *Subscriber {
	if buf < 1 {
		buf = 1
	}
	return &Subscriber{ch: make(chan domain.Event, buf)}
}

// Events returns the subscriber's receive channel.
func (s *Subscriber) Events() <-chan domain.Event { return s.ch }

// Broker fans events out to the subscribers of a room, synchronously
// and in subscription order. It is safe for concurrent use.
type Broker struct {
	mu    sync.Mutex
	rooms map[string][]*Subscriber
}

// NewBroker creates an empty broker. Inject one per process (or one per
// test case); the broker is deliberately not a package-level singleton.
func NewBroker() *Broker {
	return &Broker{rooms: make(map[string][]*Subscriber)}
}

// Subscribe joins sub to the room. Idempotent: joining a room already
// joined keeps the original subscription position.
func (b *Broker) Subscribe(sub *Subscriber, room string) {
	if sub == nil || room == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.rooms[room] {
		if s == sub {
			return
		}
	}
	b.rooms[room] = append(b.rooms[room], sub)
}

// Unsubscribe removes sub from the room. Idempotent.
func (b *Broker) Unsubscribe(sub *Subscriber, room string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(sub, room)
}

// UnsubscribeAll removes sub from every room it has joined.
func (b *Broker) UnsubscribeAll(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for room := range b.rooms {
		b.removeLocked(sub, room)
	}
}

func (b *Broker) removeLocked(sub *Subscriber, room string) {
	subs := b.rooms[room]
	for i, s := range subs {
		if s == sub {
			b.rooms[room] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.rooms[room]) == 0 {
		delete(b.rooms, room)
	}
}

// Publish delivers ev to every current subscriber of the room in
// subscription order. Subscribers whose buffer is full are skipped.
func (b *Broker) Publish(room string, ev domain.Event) {
	b.mu.Lock()
	subs := make([]*Subscriber, len(b.rooms[room]))
	copy(subs, b.rooms[room])
	b.mu.Unlock()
	for _, s := range subs {
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// RoomSize reports how many subscribers the room currently has.
func (b *Broker) RoomSize(room string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rooms[room])
}
