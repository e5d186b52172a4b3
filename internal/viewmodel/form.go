package viewmodel

import (
	"strconv"
	"sync"

	"hikelog/internal/errors"
	"hikelog/internal/form"
	"hikelog/internal/repository"
)

// FormViewModel backs the hike add/edit screen. It holds the draft, checks
// it against the validation rules, and commits it: insert when the draft
// has no id yet, update otherwise.
type FormViewModel struct {
	repo *repository.Repository

	mu    sync.Mutex
	draft form.HikeForm
}

// NewFormViewModel creates a form view model with an empty draft.
func NewFormViewModel(repo *repository.Repository) *FormViewModel {
	return &FormViewModel{repo: repo}
}

// LoadForEdit populates the draft from a stored hike.
func (vm *FormViewModel) LoadForEdit(id uint) error {
	hike, err := vm.repo.GetHike(id)
	if err != nil {
		return err
	}
	if hike == nil {
		return errors.Newf("hike with id %d not found", id).
			Component("viewmodel").
			Category(errors.CategoryNotFound).
			Context("id", id).
			Build()
	}

	draft := form.HikeForm{
		ID:         hike.ID,
		Name:       hike.Name,
		Location:   hike.Location,
		Date:       hike.Date,
		Parking:    &hike.ParkingAvailable,
		LengthKm:   strconv.FormatFloat(hike.LengthKm, 'f', -1, 64),
		Difficulty: string(hike.Difficulty),
	}
	if hike.Description != nil {
		draft.Description = *hike.Description
	}
	if hike.ElevationGainM != nil {
		draft.ElevationGainM = strconv.Itoa(*hike.ElevationGainM)
	}
	if hike.GroupSize != nil {
		draft.GroupSize = strconv.Itoa(*hike.GroupSize)
	}

	vm.mu.Lock()
	vm.draft = draft
	vm.mu.Unlock()
	return nil
}

// Form returns the current draft.
func (vm *FormViewModel) Form() form.HikeForm {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.draft
}

// Update applies a transformation to the draft.
func (vm *FormViewModel) Update(transform func(form.HikeForm) form.HikeForm) {
	vm.mu.Lock()
	vm.draft = transform(vm.draft)
	vm.mu.Unlock()
}

// Validate classifies the draft's invalid fields. Empty map means the
// draft may be committed.
func (vm *FormViewModel) Validate() map[string]string {
	return vm.Form().Validate()
}

// Save commits the draft and returns the stored id. Validation runs before
// any write is attempted; an invalid draft fails without touching storage.
func (vm *FormViewModel) Save() (uint, error) {
	hike, err := vm.Form().ToHike()
	if err != nil {
		return 0, err
	}

	if hike.ID == 0 {
		if err := vm.repo.InsertHike(hike); err != nil {
			return 0, err
		}
	} else {
		if err := vm.repo.UpdateHike(hike); err != nil {
			return 0, err
		}
	}

	vm.mu.Lock()
	vm.draft.ID = hike.ID
	vm.mu.Unlock()
	return hike.ID, nil
}
