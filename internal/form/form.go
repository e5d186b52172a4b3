// Package form validates in-progress edits before they may be committed.
//
// A form holds every field as freeform text or an explicit tri-state so it
// can represent any intermediate UI state; Validate classifies exactly
// which fields are invalid without touching storage or any other state.
package form

import (
	"strconv"
	"strings"
	"time"

	"hikelog/internal/datastore"
	"hikelog/internal/errors"
)

// Field error messages. Matched by the inline messages the form screens show.
const (
	msgRequired       = "Required"
	msgPositiveNumber = "Enter a positive number"
	msgInteger        = "Integer"
	msgValidDate      = "Enter a valid date (YYYY-MM-DD)"
	msgKnownGrade     = "Choose EASY, MODERATE or HARD"
)

// HikeForm is a draft hike record.
type HikeForm struct {
	ID             uint   // 0 means a new record
	Name           string
	Location       string
	Date           string // ISO-8601 date text, blank means unset
	Parking        *bool  // nil means unset
	LengthKm       string
	Difficulty     string // blank means unset
	Description    string
	ElevationGainM string
	GroupSize      string
}

// Validate returns a field-name to error-message map. The draft may be
// committed only when the map is empty. Pure: no side effects, storage
// untouched.
func (f HikeForm) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = msgRequired
	}
	if strings.TrimSpace(f.Location) == "" {
		errs["location"] = msgRequired
	}
	switch date := strings.TrimSpace(f.Date); {
	case date == "":
		errs["date"] = msgRequired
	default:
		if _, err := time.Parse(datastore.DateLayout, date); err != nil {
			errs["date"] = msgValidDate
		}
	}
	if f.Parking == nil {
		errs["parking"] = msgRequired
	}
	length, err := strconv.ParseFloat(strings.TrimSpace(f.LengthKm), 64)
	if err != nil || length <= 0 {
		errs["length"] = msgPositiveNumber
	}
	switch difficulty := strings.TrimSpace(f.Difficulty); {
	case difficulty == "":
		errs["difficulty"] = msgRequired
	case !datastore.Difficulty(difficulty).Valid():
		errs["difficulty"] = msgKnownGrade
	}
	if v := strings.TrimSpace(f.ElevationGainM); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			errs["elev"] = msgInteger
		}
	}
	if v := strings.TrimSpace(f.GroupSize); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			errs["group"] = msgInteger
		}
	}

	return errs
}

// ToHike converts a valid draft to a storable record. Text fields are
// trimmed and blank optional text becomes absent, not empty. An invalid
// draft yields a validation error carrying the field map (see FieldErrors).
func (f HikeForm) ToHike() (*datastore.Hike, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return nil, validationError("hike form has invalid fields", errs)
	}

	length, _ := strconv.ParseFloat(strings.TrimSpace(f.LengthKm), 64)
	hike := &datastore.Hike{
		ID:               f.ID,
		Name:             strings.TrimSpace(f.Name),
		Location:         strings.TrimSpace(f.Location),
		Date:             strings.TrimSpace(f.Date),
		ParkingAvailable: *f.Parking,
		LengthKm:         length,
		Difficulty:       datastore.Difficulty(strings.TrimSpace(f.Difficulty)),
		Description:      optionalText(f.Description),
		ElevationGainM:   optionalInt(f.ElevationGainM),
		GroupSize:        optionalInt(f.GroupSize),
	}
	return hike, nil
}

// ObservationForm is a draft field note.
type ObservationForm struct {
	ID          uint // 0 means a new record
	HikeID      uint
	Observation string
	ObservedAt  string // blank defaults to now at conversion time
	Comments    string
}

// Validate returns the field-name to error-message map for the draft.
func (f ObservationForm) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(f.Observation) == "" {
		errs["observation"] = msgRequired
	}
	if v := strings.TrimSpace(f.ObservedAt); v != "" {
		if _, err := time.Parse(datastore.DateTimeLayout, v); err != nil {
			errs["observedAt"] = "Enter a valid date-time"
		}
	}

	return errs
}

// ToObservation converts a valid draft to a storable record, defaulting a
// blank observed-at to now in the local time zone.
func (f ObservationForm) ToObservation() (*datastore.Observation, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return nil, validationError("observation form has invalid fields", errs)
	}

	observedAt := strings.TrimSpace(f.ObservedAt)
	if observedAt == "" {
		observedAt = datastore.Now()
	}
	obs := &datastore.Observation{
		ID:          f.ID,
		HikeID:      f.HikeID,
		Observation: strings.TrimSpace(f.Observation),
		ObservedAt:  observedAt,
		Comments:    optionalText(f.Comments),
	}
	return obs, nil
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, _ := strconv.Atoi(s)
	return &v
}

func validationError(message string, fields map[string]string) error {
	return errors.Newf("%s", message).
		Component("form").
		Category(errors.CategoryValidation).
		Context("fields", fields).
		Build()
}

// FieldErrors extracts the field-name to error-message map from a
// validation error, or nil for any other error.
func FieldErrors(err error) map[string]string {
	var ee *errors.EnhancedError
	if !errors.As(err, &ee) || ee.Category != errors.CategoryValidation {
		return nil
	}
	if fields, ok := ee.Context["fields"].(map[string]string); ok {
		return fields
	}
	return nil
}
