package form

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikelog/internal/datastore"
)

func yes() *bool { b := true; return &b }

// validHikeForm returns a draft that passes validation; tests mutate single
// fields from here.
func validHikeForm() HikeForm {
	return HikeForm{
		Name:       "Mountain Pass",
		Location:   "Lake District",
		Date:       "2024-06-15",
		Parking:    yes(),
		LengthKm:   "12.5",
		Difficulty: "MODERATE",
	}
}

func TestHikeFormValidateEmptyDraft(t *testing.T) {
	errs := HikeForm{}.Validate()

	assert.Equal(t, map[string]string{
		"name":       msgRequired,
		"location":   msgRequired,
		"date":       msgRequired,
		"parking":    msgRequired,
		"length":     msgPositiveNumber,
		"difficulty": msgRequired,
	}, errs, "optional fields must not be flagged when blank")
}

func TestHikeFormValidateSingleField(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*HikeForm)
		field   string
		message string
	}{
		{"whitespace name", func(f *HikeForm) { f.Name = "   " }, "name", msgRequired},
		{"zero length", func(f *HikeForm) { f.LengthKm = "0" }, "length", msgPositiveNumber},
		{"negative length", func(f *HikeForm) { f.LengthKm = "-1" }, "length", msgPositiveNumber},
		{"non-numeric length", func(f *HikeForm) { f.LengthKm = "far" }, "length", msgPositiveNumber},
		{"unknown difficulty", func(f *HikeForm) { f.Difficulty = "EXTREME" }, "difficulty", msgKnownGrade},
		{"malformed date", func(f *HikeForm) { f.Date = "15/06/2024" }, "date", msgValidDate},
		{"fractional elevation", func(f *HikeForm) { f.ElevationGainM = "1.5" }, "elev", msgInteger},
		{"non-numeric elevation", func(f *HikeForm) { f.ElevationGainM = "abc" }, "elev", msgInteger},
		{"non-numeric group size", func(f *HikeForm) { f.GroupSize = "four" }, "group", msgInteger},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := validHikeForm()
			tc.mutate(&f)
			errs := f.Validate()
			assert.Equal(t, map[string]string{tc.field: tc.message}, errs,
				"exactly one field must be flagged")
		})
	}
}

func TestHikeFormValidatePure(t *testing.T) {
	f := HikeForm{Name: " padded ", LengthKm: "3"}
	f.Validate()
	assert.Equal(t, " padded ", f.Name, "validation must not mutate the draft")
}

func TestHikeFormToHike(t *testing.T) {
	f := validHikeForm()
	f.Name = "  Mountain Pass  "
	f.Description = "  a long day out  "
	f.ElevationGainM = "840"
	f.GroupSize = ""

	hike, err := f.ToHike()
	require.NoError(t, err)
	assert.Equal(t, "Mountain Pass", hike.Name, "text fields are trimmed")
	assert.Equal(t, datastore.DifficultyModerate, hike.Difficulty)
	assert.True(t, hike.ParkingAvailable)
	assert.InDelta(t, 12.5, hike.LengthKm, 1e-9)
	require.NotNil(t, hike.Description)
	assert.Equal(t, "a long day out", *hike.Description)
	require.NotNil(t, hike.ElevationGainM)
	assert.Equal(t, 840, *hike.ElevationGainM)
	assert.Nil(t, hike.GroupSize, "blank optional text becomes absent")
}

func TestHikeFormToHikeInvalid(t *testing.T) {
	f := validHikeForm()
	f.LengthKm = "-1"

	hike, err := f.ToHike()
	require.Error(t, err)
	assert.Nil(t, hike)
	assert.Equal(t, map[string]string{"length": msgPositiveNumber}, FieldErrors(err))
}

func TestObservationFormValidate(t *testing.T) {
	errs := ObservationForm{ObservedAt: "not-a-time"}.Validate()
	assert.Equal(t, msgRequired, errs["observation"])
	assert.Contains(t, errs, "observedAt")

	errs = ObservationForm{Observation: "saw a deer", ObservedAt: "2024-06-15T08:30:00"}.Validate()
	assert.Empty(t, errs)
}

func TestObservationFormToObservationDefaultsObservedAt(t *testing.T) {
	f := ObservationForm{HikeID: 3, Observation: "  fog rolling in  ", Comments: "   "}

	obs, err := f.ToObservation()
	require.NoError(t, err)
	assert.Equal(t, uint(3), obs.HikeID)
	assert.Equal(t, "fog rolling in", obs.Observation)
	assert.Nil(t, obs.Comments)

	observedAt, err := time.ParseInLocation(datastore.DateTimeLayout, obs.ObservedAt, time.Local)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), observedAt, 5*time.Second)
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))
	assert.Nil(t, FieldErrors(errors.New("disk full")))
}
