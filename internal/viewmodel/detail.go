package viewmodel

import (
	"sync"

	"hikelog/internal/datastore"
	"hikelog/internal/form"
	"hikelog/internal/live"
	"hikelog/internal/repository"
)

// DetailViewModel backs the hike detail screen: one hike's live observation
// stream plus observation CRUD. Re-targeting to another hike switches the
// underlying subscription latest-wins, like the list's filter switching.
type DetailViewModel struct {
	repo     *repository.Repository
	switcher *live.Switcher[[]datastore.Observation]

	mu     sync.Mutex
	hikeID uint
}

// NewDetailViewModel creates a detail view model with no hike targeted yet.
func NewDetailViewModel(repo *repository.Repository) *DetailViewModel {
	return &DetailViewModel{
		repo:     repo,
		switcher: live.NewSwitcher[[]datastore.Observation](),
	}
}

// Start targets the view model at a hike. Safe to call repeatedly; only the
// most recently targeted hike's observations reach the channel.
func (vm *DetailViewModel) Start(hikeID uint) {
	vm.mu.Lock()
	vm.hikeID = hikeID
	vm.mu.Unlock()
	vm.switcher.Switch(vm.repo.ObservationsFor(hikeID))
}

// Observations returns the live observation channel, most recent first.
func (vm *DetailViewModel) Observations() <-chan []datastore.Observation {
	return vm.switcher.C
}

// Err reports the terminal stream error, if any, once Observations closes.
func (vm *DetailViewModel) Err() error {
	return vm.switcher.Err()
}

// Hike looks up the targeted hike record.
func (vm *DetailViewModel) Hike() (*datastore.Hike, error) {
	vm.mu.Lock()
	id := vm.hikeID
	vm.mu.Unlock()
	return vm.repo.GetHike(id)
}

// AddObservation stores a new note for the given hike, observed now unless
// observedAt is supplied.
func (vm *DetailViewModel) AddObservation(hikeID uint, text, observedAt, comments string) error {
	draft := form.ObservationForm{
		HikeID:      hikeID,
		Observation: text,
		ObservedAt:  observedAt,
		Comments:    comments,
	}
	obs, err := draft.ToObservation()
	if err != nil {
		return err
	}
	return vm.repo.InsertObservation(obs)
}

// DeleteObservation removes a single note.
func (vm *DetailViewModel) DeleteObservation(id uint) error {
	return vm.repo.DeleteObservation(id)
}

// Close releases the live subscription.
func (vm *DetailViewModel) Close() {
	vm.switcher.Close()
}
