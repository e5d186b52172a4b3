// Package viewmodel holds the transient state behind the list, detail and
// form screens. View models talk only to the repository and expose live
// result channels the presentation shell renders from.
package viewmodel

import (
	"hikelog/internal/datastore"
	"hikelog/internal/query"
	"hikelog/internal/repository"
)

// ListViewModel backs the hike list screen: a live result stream plus the
// mutually exclusive search modes over it.
type ListViewModel struct {
	repo     *repository.Repository
	composer *query.Composer
}

// NewListViewModel creates the view model subscribed to the unfiltered
// list.
func NewListViewModel(repo *repository.Repository) *ListViewModel {
	return &ListViewModel{
		repo:     repo,
		composer: repo.Hikes(),
	}
}

// Hikes returns the live result channel. Latest-value semantics.
func (vm *ListViewModel) Hikes() <-chan []datastore.HikeWithObsCount {
	return vm.composer.Results()
}

// Err reports the terminal stream error, if any, once Hikes is closed.
func (vm *ListViewModel) Err() error {
	return vm.composer.Err()
}

// SetPrefix activates the name-prefix search; blank clears all filtering.
// Any active advanced filter is cleared.
func (vm *ListViewModel) SetPrefix(prefix string) {
	vm.composer.SetPrefix(prefix)
}

// SetAdvanced activates the advanced search, clearing any prefix filter.
// Blank text fields mean "no constraint".
func (vm *ListViewModel) SetAdvanced(name, location string, minLen, maxLen *float64, startDate, endDate string) {
	vm.composer.SetAdvanced(repository.ShapeAdvancedFilter(name, location, minLen, maxLen, startDate, endDate))
}

// ClearFilters returns to the unfiltered list.
func (vm *ListViewModel) ClearFilters() {
	vm.composer.ClearFilters()
}

// ResetAll destroys all stored data.
func (vm *ListViewModel) ResetAll() error {
	return vm.repo.ResetAll()
}

// DeleteHike removes a hike and its observations.
func (vm *ListViewModel) DeleteHike(id uint) error {
	return vm.repo.DeleteHike(id)
}

// Close releases the live subscription.
func (vm *ListViewModel) Close() {
	vm.composer.Close()
}
