package live

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikelog/internal/errors"
	"hikelog/internal/events"
)

func TestSwitcherForwardsCurrentStream(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	sw := NewSwitcher[string]()
	defer sw.Close()

	sw.Switch(Observe(bus, func() (string, error) { return "first", nil }, events.TableHikes))
	assert.Equal(t, "first", receive(t, sw.C))
}

func TestSwitcherLatestStreamWins(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	sw := NewSwitcher[string]()
	defer sw.Close()

	sw.Switch(Observe(bus, func() (string, error) { return "old", nil }, events.TableHikes))
	assert.Equal(t, "old", receive(t, sw.C))

	sw.Switch(Observe(bus, func() (string, error) { return "new", nil }, events.TableHikes))
	assert.Equal(t, "new", receive(t, sw.C))

	// Changes now re-run only the current query; nothing from the replaced
	// stream can surface again.
	bus.Publish(events.TableHikes)
	assert.Equal(t, "new", receive(t, sw.C))
}

func TestSwitchDropsUnconsumedEmission(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	sw := NewSwitcher[string]()
	defer sw.Close()

	first := Observe(bus, func() (string, error) { return "old", nil }, events.TableHikes)
	sw.Switch(first)
	// Wait until the old stream's result has been forwarded, without
	// consuming it.
	deadline := time.Now().Add(2 * time.Second)
	for len(sw.c) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no pending emission from the first stream")
		}
		time.Sleep(time.Millisecond)
	}

	sw.Switch(Observe(bus, func() (string, error) { return "new", nil }, events.TableHikes))
	assert.Equal(t, "new", receive(t, sw.C),
		"a pending result of the replaced stream must not be observed after the switch")
}

func TestSwitcherDetachesPreviousSubscription(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	var oldCalls atomic.Int64
	sw := NewSwitcher[int64]()
	defer sw.Close()

	sw.Switch(Observe(bus, func() (int64, error) { return oldCalls.Add(1), nil }, events.TableHikes))
	receive(t, sw.C)

	sw.Switch(Observe(bus, func() (int64, error) { return 100, nil }, events.TableHikes))
	receiveUntil(t, sw.C, 100)

	before := oldCalls.Load()
	bus.Publish(events.TableHikes)
	receiveUntil(t, sw.C, 100)
	assert.Equal(t, before, oldCalls.Load(), "a replaced stream must stop re-querying")
}

func TestSwitcherTerminalError(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	boom := errors.NewStd("query failed")
	sw := NewSwitcher[string]()
	defer sw.Close()

	sw.Switch(Observe(bus, func() (string, error) { return "", boom }, events.TableHikes))

	select {
	case _, ok := <-sw.C:
		require.False(t, ok, "a terminal error of the current stream must close the output")
	case <-time.After(2 * time.Second):
		t.Fatal("switcher did not close after the current stream failed")
	}
	assert.ErrorIs(t, sw.Err(), boom)
}

func TestSwitcherErrorOfReplacedStreamIsDropped(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	var calls atomic.Int64
	boom := errors.NewStd("stale failure")
	sw := NewSwitcher[string]()
	defer sw.Close()

	// First stream fails on its re-query, but only after it has been
	// replaced.
	sw.Switch(Observe(bus, func() (string, error) {
		if calls.Add(1) > 1 {
			return "", boom
		}
		return "old", nil
	}, events.TableHikes))
	assert.Equal(t, "old", receive(t, sw.C))

	sw.Switch(Observe(bus, func() (string, error) { return "new", nil }, events.TableHikes))
	assert.Equal(t, "new", receive(t, sw.C))
	assert.NoError(t, sw.Err(), "failures of replaced streams must not surface")
}

func TestSwitcherClose(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	sw := NewSwitcher[string]()
	sw.Switch(Observe(bus, func() (string, error) { return "x", nil }, events.TableHikes))

	sw.Close()
	sw.Close() // idempotent

	for range sw.C {
	}
	assert.NoError(t, sw.Err())
}

func TestSwitchAfterCloseStopsTheStream(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	sw := NewSwitcher[string]()
	sw.Close()

	// Must not leak the goroutine of a stream handed to a closed switcher;
	// TestMain's leak check verifies.
	sw.Switch(Observe(bus, func() (string, error) { return "x", nil }, events.TableHikes))
}
