// Package live turns point-in-time queries into live result streams.
//
// A Stream runs its query once on start and again after every change signal
// from the store's notification bus, conflating results into a latest-value
// channel. Re-queries run asynchronously relative to the write that caused
// them, but a single goroutine orders all emissions, so a subscriber never
// observes an older snapshot after a newer one.
package live

import (
	"context"
	"sync"

	"hikelog/internal/events"
)

// Query produces the full current result set.
type Query[T any] func() (T, error)

// Stream re-executes a query on every relevant table change.
//
// C delivers full result sets with latest-value semantics: a result that was
// not consumed before the next one arrives is replaced. C is closed when the
// stream ends, either by Stop, by the bus shutting down, or by a terminal
// query error; Err distinguishes the failure case from plain closure.
type Stream[T any] struct {
	C <-chan T

	c      chan T
	query  Query[T]
	sub    *events.Subscription
	cancel context.CancelFunc
	ctx    context.Context
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Observe subscribes to the given tables on bus and starts streaming the
// query's results. The caller must Stop the stream when no longer
// interested so the store is not kept re-computing unobserved results.
func Observe[T any](bus *events.Bus, query Query[T], tables ...events.Table) *Stream[T] {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Stream[T]{
		c:      make(chan T, 1),
		query:  query,
		sub:    bus.Subscribe(tables...),
		cancel: cancel,
		ctx:    ctx,
		done:   make(chan struct{}),
	}
	s.C = s.c
	go s.run()
	return s
}

func (s *Stream[T]) run() {
	defer func() {
		s.sub.Unsubscribe()
		close(s.c)
		close(s.done)
	}()

	if !s.requery() {
		return
	}
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.sub.Done():
			return
		case <-s.sub.C:
			if !s.requery() {
				return
			}
		}
	}
}

// requery runs the query and emits the result. A query error is terminal:
// the stream records it and shuts down rather than emitting an empty result,
// so the subscriber can tell "no data" from "query failed".
func (s *Stream[T]) requery() bool {
	result, err := s.query()
	if err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return false
	}
	s.emit(result)
	return true
}

// emit places result into the latest-value channel, displacing an
// unconsumed older result. Only the stream goroutine sends, so the
// drain-and-retry loop terminates.
func (s *Stream[T]) emit(result T) {
	for {
		select {
		case s.c <- result:
			return
		default:
		}
		select {
		case <-s.c:
		default:
		}
	}
}

// Err returns the terminal error, if any, after C is closed.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop cancels the stream and waits for its goroutine to exit. After Stop
// returns, no further emissions occur. Idempotent.
func (s *Stream[T]) Stop() {
	s.cancel()
	<-s.done
}
