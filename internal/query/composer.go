// Package query derives the live hike-list stream from the active search
// filter.
//
// The search has two mutually exclusive modes plus a fallback: a
// case-insensitive name-prefix filter, a multi-field advanced filter, and
// the unfiltered list. Whichever mode was set most recently wins; setting
// one clears the other.
package query

import (
	"sync"

	"hikelog/internal/datastore"
	"hikelog/internal/events"
	"hikelog/internal/live"
)

// FilterMode identifies the active search mode.
type FilterMode int

const (
	// ModeUnfiltered lists every hike, date descending.
	ModeUnfiltered FilterMode = iota
	// ModePrefix filters by case-insensitive name prefix, name ascending.
	ModePrefix
	// ModeAdvanced applies the conjunction of the advanced filter's
	// constraints, date descending.
	ModeAdvanced
)

// FilterState is the full description of the active filter. It is a value:
// comparing states decides whether a re-subscription is needed.
type FilterState struct {
	Mode     FilterMode
	Prefix   string
	Advanced datastore.AdvancedFilter
}

// Unfiltered returns the fallback state.
func Unfiltered() FilterState {
	return FilterState{Mode: ModeUnfiltered}
}

// queryFor maps a filter state to the store query producing its result set.
func queryFor(store datastore.Interface, state FilterState) live.Query[[]datastore.HikeWithObsCount] {
	switch state.Mode {
	case ModePrefix:
		prefix := state.Prefix
		return func() ([]datastore.HikeWithObsCount, error) {
			return store.SearchHikesByNamePrefix(prefix)
		}
	case ModeAdvanced:
		filter := state.Advanced
		return func() ([]datastore.HikeWithObsCount, error) {
			return store.AdvancedSearchHikes(filter)
		}
	default:
		return store.AllHikesWithCounts
	}
}

// Composer owns the single live subscription backing the hike list and
// re-derives it whenever the filter state changes. Stream switching is
// latest-wins: the previous subscription is detached before the new one
// attaches, so a late emission from an abandoned filter can never overtake
// a result from the active one.
type Composer struct {
	store    datastore.Interface
	switcher *live.Switcher[[]datastore.HikeWithObsCount]

	mu    sync.Mutex
	state FilterState
}

// NewComposer creates a composer subscribed to the unfiltered list.
func NewComposer(store datastore.Interface) *Composer {
	c := &Composer{
		store:    store,
		switcher: live.NewSwitcher[[]datastore.HikeWithObsCount](),
	}
	c.apply(Unfiltered())
	return c
}

// Results returns the live result channel. Latest-value semantics; closed
// when the composer is closed or a query fails terminally (see Err).
func (c *Composer) Results() <-chan []datastore.HikeWithObsCount {
	return c.switcher.C
}

// Err returns the terminal stream error, if any, after Results is closed.
func (c *Composer) Err() error {
	return c.switcher.Err()
}

// State returns the currently active filter state.
func (c *Composer) State() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetPrefix activates the name-prefix filter, clearing any advanced filter.
// A blank prefix deactivates filtering entirely (fallback to the unfiltered
// list).
func (c *Composer) SetPrefix(prefix string) {
	if prefix == "" {
		c.apply(Unfiltered())
		return
	}
	c.apply(FilterState{Mode: ModePrefix, Prefix: prefix})
}

// SetAdvanced activates the advanced filter, clearing any prefix filter.
func (c *Composer) SetAdvanced(filter datastore.AdvancedFilter) {
	c.apply(FilterState{Mode: ModeAdvanced, Advanced: filter})
}

// ClearFilters returns to the unfiltered list.
func (c *Composer) ClearFilters() {
	c.apply(Unfiltered())
}

func (c *Composer) apply(state FilterState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state

	// The count column depends on observations, so every mode watches both
	// tables.
	stream := live.Observe(c.store.Changes(), queryFor(c.store, state),
		events.TableHikes, events.TableObservations)
	c.switcher.Switch(stream)
}

// Close detaches the subscription and closes the result channel.
func (c *Composer) Close() {
	c.switcher.Close()
}
