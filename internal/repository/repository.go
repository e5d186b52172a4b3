// Package repository is the single boundary between the presentation layer
// and the core. It forwards to the storage engine and the query composer
// with no added logic beyond parameter shaping, and it adds no error kinds
// of its own.
package repository

import (
	"log/slog"
	"strings"

	"hikelog/internal/datastore"
	"hikelog/internal/events"
	"hikelog/internal/live"
	"hikelog/internal/logging"
	"hikelog/internal/query"
)

// Repository wraps an opened store.
type Repository struct {
	store  datastore.Interface
	logger *slog.Logger
}

// New creates a repository over an opened store. The store handle is passed
// explicitly; there is no ambient global instance.
func New(store datastore.Interface) *Repository {
	return &Repository{
		store:  store,
		logger: logging.ForService("repository"),
	}
}

// Hikes derives a new live hike-list subscription. The caller owns the
// returned composer and must Close it.
func (r *Repository) Hikes() *query.Composer {
	return query.NewComposer(r.store)
}

// ObservationsFor derives a live stream of one hike's observations, most
// recent first. The caller must Stop the returned stream.
func (r *Repository) ObservationsFor(hikeID uint) *live.Stream[[]datastore.Observation] {
	return live.Observe(r.store.Changes(), func() ([]datastore.Observation, error) {
		return r.store.ObservationsForHike(hikeID)
	}, events.TableObservations)
}

// GetHike looks up a hike by id; absent is (nil, nil), not an error.
func (r *Repository) GetHike(id uint) (*datastore.Hike, error) {
	return r.store.GetHike(id)
}

// InsertHike stores a new hike and reports the assigned id via hike.ID.
func (r *Repository) InsertHike(hike *datastore.Hike) error {
	return r.store.InsertHike(hike)
}

// UpdateHike replaces the stored record matching hike.ID.
func (r *Repository) UpdateHike(hike *datastore.Hike) error {
	return r.store.UpdateHike(hike)
}

// DeleteHike removes a hike and, by cascade, all its observations.
func (r *Repository) DeleteHike(id uint) error {
	return r.store.DeleteHike(id)
}

// ResetAll destroys all hikes and observations.
func (r *Repository) ResetAll() error {
	r.logger.Warn("resetting database, all hikes and observations removed")
	return r.store.DeleteAllHikes()
}

// InsertObservation stores a new observation for an existing hike.
func (r *Repository) InsertObservation(obs *datastore.Observation) error {
	return r.store.InsertObservation(obs)
}

// UpdateObservation replaces the stored record matching obs.ID.
func (r *Repository) UpdateObservation(obs *datastore.Observation) error {
	return r.store.UpdateObservation(obs)
}

// DeleteObservation removes a single observation.
func (r *Repository) DeleteObservation(id uint) error {
	return r.store.DeleteObservation(id)
}

// ShapeAdvancedFilter converts freeform advanced-search input into a filter:
// blank strings mean "no constraint". Numeric bounds are passed through as
// given (nil means unconstrained).
func ShapeAdvancedFilter(name, location string, minLen, maxLen *float64, startDate, endDate string) datastore.AdvancedFilter {
	return datastore.AdvancedFilter{
		Name:      blankToNil(name),
		Location:  blankToNil(location),
		MinLen:    minLen,
		MaxLen:    maxLen,
		StartDate: blankToNil(startDate),
		EndDate:   blankToNil(endDate),
	}
}

func blankToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
