package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hikelog/internal/conf"
	"hikelog/internal/datastore"
	"hikelog/internal/errors"
	"hikelog/internal/form"
	"hikelog/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRepository(t *testing.T) *repository.Repository {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Path = t.TempDir() + "/test.db"

	store := datastore.New(settings)
	require.NoError(t, store.Open(), "Failed to open database")
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return repository.New(store)
}

func saveHike(t *testing.T, repo *repository.Repository, name string) uint {
	t.Helper()
	hike := &datastore.Hike{
		Name:       name,
		Location:   "somewhere",
		Date:       "2024-06-15",
		LengthKm:   5,
		Difficulty: datastore.DifficultyEasy,
	}
	require.NoError(t, repo.InsertHike(hike))
	return hike.ID
}

// waitFor reads emissions until predicate holds, tolerating conflated
// intermediate snapshots.
func waitFor[T any](t *testing.T, c <-chan T, predicate func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-c:
			require.True(t, ok, "channel closed while waiting")
			if predicate(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for the expected emission")
			panic("unreachable")
		}
	}
}

func TestListViewModelStreamsAndFilters(t *testing.T) {
	repo := newRepository(t)
	saveHike(t, repo, "Mountain Pass")
	saveHike(t, repo, "Seaside Walk")

	vm := NewListViewModel(repo)
	defer vm.Close()

	waitFor(t, vm.Hikes(), func(hikes []datastore.HikeWithObsCount) bool {
		return len(hikes) == 2
	})

	vm.SetPrefix("Sea")
	hikes := waitFor(t, vm.Hikes(), func(hikes []datastore.HikeWithObsCount) bool {
		return len(hikes) == 1
	})
	assert.Equal(t, "Seaside Walk", hikes[0].Name)

	vm.ClearFilters()
	waitFor(t, vm.Hikes(), func(hikes []datastore.HikeWithObsCount) bool {
		return len(hikes) == 2
	})
}

func TestListViewModelAdvancedSearchBlankMeansUnconstrained(t *testing.T) {
	repo := newRepository(t)
	saveHike(t, repo, "Mountain Pass")
	saveHike(t, repo, "Seaside Walk")

	vm := NewListViewModel(repo)
	defer vm.Close()

	vm.SetAdvanced("Mountain", "  ", nil, nil, "", "")
	hikes := waitFor(t, vm.Hikes(), func(hikes []datastore.HikeWithObsCount) bool {
		return len(hikes) == 1
	})
	assert.Equal(t, "Mountain Pass", hikes[0].Name)
}

func TestListViewModelDeleteUpdatesStream(t *testing.T) {
	repo := newRepository(t)
	id := saveHike(t, repo, "Mountain Pass")

	vm := NewListViewModel(repo)
	defer vm.Close()

	waitFor(t, vm.Hikes(), func(hikes []datastore.HikeWithObsCount) bool {
		return len(hikes) == 1
	})

	require.NoError(t, vm.DeleteHike(id))
	waitFor(t, vm.Hikes(), func(hikes []datastore.HikeWithObsCount) bool {
		return len(hikes) == 0
	})
}

func TestListViewModelResetAll(t *testing.T) {
	repo := newRepository(t)
	saveHike(t, repo, "Mountain Pass")
	saveHike(t, repo, "Seaside Walk")

	vm := NewListViewModel(repo)
	defer vm.Close()

	require.NoError(t, vm.ResetAll())
	waitFor(t, vm.Hikes(), func(hikes []datastore.HikeWithObsCount) bool {
		return len(hikes) == 0
	})
}

func TestDetailViewModelStreamsObservations(t *testing.T) {
	repo := newRepository(t)
	id := saveHike(t, repo, "Mountain Pass")

	vm := NewDetailViewModel(repo)
	defer vm.Close()
	vm.Start(id)

	waitFor(t, vm.Observations(), func(obs []datastore.Observation) bool {
		return len(obs) == 0
	})

	require.NoError(t, vm.AddObservation(id, "saw a deer", "", "far away"))
	obs := waitFor(t, vm.Observations(), func(obs []datastore.Observation) bool {
		return len(obs) == 1
	})
	assert.Equal(t, "saw a deer", obs[0].Observation)
	require.NotNil(t, obs[0].Comments)
	assert.Equal(t, "far away", *obs[0].Comments)

	require.NoError(t, vm.DeleteObservation(obs[0].ID))
	waitFor(t, vm.Observations(), func(obs []datastore.Observation) bool {
		return len(obs) == 0
	})
}

func TestDetailViewModelRetargetsLatestWins(t *testing.T) {
	repo := newRepository(t)
	first := saveHike(t, repo, "Mountain Pass")
	second := saveHike(t, repo, "Seaside Walk")
	require.NoError(t, repo.InsertObservation(&datastore.Observation{HikeID: first, Observation: "summit fog"}))
	require.NoError(t, repo.InsertObservation(&datastore.Observation{HikeID: second, Observation: "low tide"}))

	vm := NewDetailViewModel(repo)
	defer vm.Close()

	vm.Start(first)
	waitFor(t, vm.Observations(), func(obs []datastore.Observation) bool {
		return len(obs) == 1 && obs[0].Observation == "summit fog"
	})

	vm.Start(second)
	waitFor(t, vm.Observations(), func(obs []datastore.Observation) bool {
		return len(obs) == 1 && obs[0].Observation == "low tide"
	})

	hike, err := vm.Hike()
	require.NoError(t, err)
	require.NotNil(t, hike)
	assert.Equal(t, "Seaside Walk", hike.Name)
}

func TestDetailViewModelAddObservationValidates(t *testing.T) {
	repo := newRepository(t)
	id := saveHike(t, repo, "Mountain Pass")

	vm := NewDetailViewModel(repo)
	defer vm.Close()

	err := vm.AddObservation(id, "   ", "", "")
	require.Error(t, err)
	assert.Equal(t, "Required", form.FieldErrors(err)["observation"])
}

func TestFormViewModelInsertThenEdit(t *testing.T) {
	repo := newRepository(t)

	vm := NewFormViewModel(repo)
	vm.Update(func(f form.HikeForm) form.HikeForm {
		f.Name = "Mountain Pass"
		f.Location = "Lake District"
		f.Date = "2024-06-15"
		parking := true
		f.Parking = &parking
		f.LengthKm = "12.5"
		f.Difficulty = "MODERATE"
		return f
	})
	require.Empty(t, vm.Validate())

	id, err := vm.Save()
	require.NoError(t, err)
	require.NotZero(t, id)

	// Re-saving the same draft now updates instead of inserting.
	vm.Update(func(f form.HikeForm) form.HikeForm {
		f.Name = "Mountain Pass (revised)"
		return f
	})
	again, err := vm.Save()
	require.NoError(t, err)
	assert.Equal(t, id, again)

	hike, err := repo.GetHike(id)
	require.NoError(t, err)
	require.NotNil(t, hike)
	assert.Equal(t, "Mountain Pass (revised)", hike.Name)
}

func TestFormViewModelLoadForEdit(t *testing.T) {
	repo := newRepository(t)
	elev := 840
	hike := &datastore.Hike{
		Name:           "Mountain Pass",
		Location:       "Lake District",
		Date:           "2024-06-15",
		LengthKm:       12.5,
		Difficulty:     datastore.DifficultyHard,
		ElevationGainM: &elev,
	}
	require.NoError(t, repo.InsertHike(hike))

	vm := NewFormViewModel(repo)
	require.NoError(t, vm.LoadForEdit(hike.ID))

	draft := vm.Form()
	assert.Equal(t, hike.ID, draft.ID)
	assert.Equal(t, "Mountain Pass", draft.Name)
	assert.Equal(t, "12.5", draft.LengthKm)
	assert.Equal(t, "HARD", draft.Difficulty)
	assert.Equal(t, "840", draft.ElevationGainM)
	assert.Equal(t, "", draft.GroupSize)
	require.NotNil(t, draft.Parking)
	assert.False(t, *draft.Parking)
}

func TestFormViewModelLoadForEditMissing(t *testing.T) {
	repo := newRepository(t)

	vm := NewFormViewModel(repo)
	err := vm.LoadForEdit(404)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestFormViewModelSaveInvalidTouchesNothing(t *testing.T) {
	repo := newRepository(t)

	vm := NewFormViewModel(repo)
	vm.Update(func(f form.HikeForm) form.HikeForm {
		f.Name = "Mountain Pass"
		return f
	})

	_, err := vm.Save()
	require.Error(t, err)
	assert.NotEmpty(t, form.FieldErrors(err))

	list := NewListViewModel(repo)
	defer list.Close()
	waitFor(t, list.Hikes(), func(hikes []datastore.HikeWithObsCount) bool {
		return len(hikes) == 0
	})
}
