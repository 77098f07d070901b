// Package bus implements the state bus: fan-out of controller events from
// device sessions to any number of subscribers.
//
// Publication never blocks. Each subscriber owns a bounded queue; when it
// overflows, the oldest unread event is discarded and a dropped-events marker
// carrying an accurate count is delivered in its place, so consumers can see
// the gap without the bus ever stalling a session.
package bus

import (
	"sync"
	"time"

	"github.com/robertosw/gamepad-bridge/gamepad"
)

// DefaultQueueSize is used when a non-positive queue size is configured.
const DefaultQueueSize = 64

// Bus is the fan-out distribution point. Safe for concurrent use.
type Bus struct {
	queueSize int

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// New creates a Bus whose subscribers buffer up to queueSize events.
func New(queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bus{
		queueSize: queueSize,
		subs:      make(map[*Subscription]struct{}),
	}
}

// Publish delivers ev to every current subscriber. It never blocks on
// subscriber consumption; a full subscriber queue drops its oldest event.
// Publishing on a closed bus is a no-op.
func (b *Bus) Publish(ev gamepad.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		s.push(ev, b.queueSize)
	}
}

// Subscribe registers a new subscriber that sees every event published after
// this call. The returned subscription must be cancelled when done.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{
		bus:    b,
		notify: make(chan struct{}, 1),
		out:    make(chan gamepad.Event),
		done:   make(chan struct{}),
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.Cancel()
		close(s.out) // pump never starts on a closed bus
		return s
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	go s.pump()
	return s
}

// Close cancels all subscriptions and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()
	for _, s := range subs {
		s.Cancel()
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// Subscription is one subscriber's ordered view of the event stream. Events
// for a single device arrive in publish order; overflow gaps are announced
// with EventDropped markers.
type Subscription struct {
	bus *Bus

	mu      sync.Mutex
	queue   []gamepad.Event
	pending uint64 // events dropped since the last delivered marker

	notify chan struct{}
	out    chan gamepad.Event
	done   chan struct{}
	once   sync.Once
}

// Events returns the channel the subscriber reads from. It is closed after
// Cancel (or bus close); reads block only this subscriber's consumer.
func (s *Subscription) Events() <-chan gamepad.Event { return s.out }

// Cancel detaches the subscription and releases its queue. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		if s.bus != nil {
			s.bus.remove(s)
		}
		s.mu.Lock()
		s.queue = nil
		s.mu.Unlock()
	})
}

func (s *Subscription) push(ev gamepad.Event, max int) {
	s.mu.Lock()
	if len(s.queue) >= max {
		// Drop the oldest unread event; the marker is synthesized at
		// delivery time so its count stays accurate under repeated drops.
		dropped := s.queue[0]
		s.queue = s.queue[1:]
		if dropped.Kind == gamepad.EventDropped {
			s.pending += dropped.Dropped
		} else {
			s.pending++
		}
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription) next() (gamepad.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending > 0 {
		n := s.pending
		s.pending = 0
		return gamepad.Event{Kind: gamepad.EventDropped, Dropped: n, Time: time.Now()}, true
	}
	if len(s.queue) == 0 {
		return gamepad.Event{}, false
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		ev, ok := s.next()
		if !ok {
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}
