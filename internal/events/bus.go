// Package events provides an in-process change notification bus.
//
// The storage engine publishes which tables a committed write touched;
// live queries subscribe and re-execute on every signal. Signals carry no
// payload and are coalesced per subscription: only "something changed"
// matters, the subscriber re-reads current state anyway.
package events

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"hikelog/internal/logging"
)

// Table identifies a logical table of the store.
type Table string

const (
	TableHikes        Table = "hikes"
	TableObservations Table = "observations"
)

// Subscription receives coalesced change signals for a set of tables.
type Subscription struct {
	// C delivers at most one pending signal. A signal arriving while one is
	// already pending is coalesced into it.
	C <-chan struct{}

	c      chan struct{}
	done   chan struct{}
	tables map[Table]struct{}
	bus    *Bus
	once   sync.Once
}

// Done is closed when the subscription is cancelled, either by
// Unsubscribe or by the bus shutting down.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe detaches the subscription from the bus. It is prompt,
// idempotent and safe to call concurrently with Publish.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s)
		close(s.done)
	})
}

func (s *Subscription) matches(table Table) bool {
	if len(s.tables) == 0 {
		return true
	}
	_, ok := s.tables[table]
	return ok
}

// BusStats holds counters for bus activity.
type BusStats struct {
	Published uint64 // Publish calls
	Delivered uint64 // signals placed into a subscription channel
	Coalesced uint64 // signals merged into an already pending one
}

// Bus fans table-change signals out to subscribers. Publish never blocks.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool

	published atomic.Uint64
	delivered atomic.Uint64
	coalesced atomic.Uint64

	logger *slog.Logger
}

// NewBus creates a new change notification bus.
func NewBus() *Bus {
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		logger: logging.ForService("events"),
	}
}

// Subscribe registers interest in the given tables. No tables means all
// tables. The caller must Unsubscribe when done so the store is not kept
// re-computing results nobody observes.
func (b *Bus) Subscribe(tables ...Table) *Subscription {
	sub := &Subscription{
		c:    make(chan struct{}, 1),
		done: make(chan struct{}),
		bus:  b,
	}
	sub.C = sub.c
	if len(tables) > 0 {
		sub.tables = make(map[Table]struct{}, len(tables))
		for _, t := range tables {
			sub.tables[t] = struct{}{}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		// Bus already shut down, hand back a cancelled subscription.
		sub.once.Do(func() { close(sub.done) })
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Publish signals that the given tables changed. Non-blocking: a signal for
// a subscription that already has one pending is coalesced.
func (b *Bus) Publish(tables ...Table) {
	b.published.Add(1)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for sub := range b.subs {
		notify := false
		for _, t := range tables {
			if sub.matches(t) {
				notify = true
				break
			}
		}
		if !notify {
			continue
		}
		select {
		case sub.c <- struct{}{}:
			b.delivered.Add(1)
		default:
			b.coalesced.Add(1)
		}
	}
}

// Close cancels every subscription and rejects future ones.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.subs = make(map[*Subscription]struct{})
	b.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.done) })
	}
	b.logger.Debug("change bus closed", "cancelled_subscriptions", len(subs))
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
}

// Stats returns current bus counters.
func (b *Bus) Stats() BusStats {
	return BusStats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Coalesced: b.coalesced.Load(),
	}
}
