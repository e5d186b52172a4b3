package live

import (
	"sync"
)

// Switcher multiplexes a sequence of streams into one output channel,
// holding at most one underlying subscription at a time. Switching stops
// the previous stream before attaching the new one, and emissions from a
// stream that is no longer current are dropped, so the most recently
// attached stream is the only one whose results reach the subscriber.
type Switcher[T any] struct {
	C <-chan T

	c chan T

	mu      sync.Mutex
	current *Stream[T]
	err     error
	closed  bool
}

// NewSwitcher creates a switcher with no stream attached.
func NewSwitcher[T any]() *Switcher[T] {
	sw := &Switcher[T]{c: make(chan T, 1)}
	sw.C = sw.c
	return sw
}

// Switch stops the currently attached stream, if any, and attaches s.
// The stop is synchronous: once Switch returns, no emission from a
// previously attached stream can reach C.
func (sw *Switcher[T]) Switch(s *Stream[T]) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.closed {
		s.Stop()
		return
	}
	if sw.current != nil {
		sw.current.Stop()
	}
	// Drop a pending emission of the replaced stream; nothing from it may be
	// observed after the switch.
	select {
	case <-sw.c:
	default:
	}
	sw.current = s
	go sw.forward(s)
}

// forward copies emissions of s into the output channel for as long as s is
// the current stream. A terminal error of the current stream terminates the
// switcher's output as well.
func (sw *Switcher[T]) forward(s *Stream[T]) {
	for result := range s.C {
		sw.mu.Lock()
		if sw.current == s && !sw.closed {
			sw.emit(result)
		}
		sw.mu.Unlock()
	}

	if err := s.Err(); err != nil {
		sw.mu.Lock()
		if sw.current == s && !sw.closed {
			sw.err = err
			sw.closed = true
			sw.current = nil
			close(sw.c)
		}
		sw.mu.Unlock()
	}
}

// emit implements latest-value delivery. Called with mu held; every sender
// holds mu, so the drain-and-retry loop terminates.
func (sw *Switcher[T]) emit(result T) {
	for {
		select {
		case sw.c <- result:
			return
		default:
		}
		select {
		case <-sw.c:
		default:
		}
	}
}

// Err returns the terminal error, if any, after C is closed.
func (sw *Switcher[T]) Err() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.err
}

// Close stops the attached stream and closes the output channel. Idempotent.
func (sw *Switcher[T]) Close() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.closed {
		return
	}
	sw.closed = true
	if sw.current != nil {
		sw.current.Stop()
		sw.current = nil
	}
	close(sw.c)
}
