// model.go this code defines the data model for the application
package datastore

import "time"

// Date and time values are persisted as ISO-8601 strings. Lexicographic
// order on these layouts equals chronological order, which the ordered
// queries rely on.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Now returns the current local date-time in the persisted layout.
func Now() string {
	return time.Now().Format(DateTimeLayout)
}

// Today returns the current local date in the persisted layout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// Difficulty grades a hike. Serialized by symbolic name.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "EASY"
	DifficultyModerate Difficulty = "MODERATE"
	DifficultyHard     Difficulty = "HARD"
)

// Valid reports whether d is one of the known grades.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyHard:
		return true
	default:
		return false
	}
}

// Hike represents a single logged trip
type Hike struct {
	ID               uint       `gorm:"primaryKey"`
	Name             string     `gorm:"not null;index:idx_hikes_name"`
	Location         string     `gorm:"not null"`
	Date             string     `gorm:"not null;index:idx_hikes_date"` // ISO-8601 date
	ParkingAvailable bool       `gorm:"not null"`
	LengthKm         float64    `gorm:"not null"`
	Difficulty       Difficulty `gorm:"type:varchar(16);not null"`
	Description      *string
	ElevationGainM   *int
	GroupSize        *int

	Observations []Observation `gorm:"foreignKey:HikeID;constraint:OnDelete:CASCADE"` // One-to-many relationship with cascade delete
}

// Observation represents a timestamped field note attached to one hike
type Observation struct {
	ID          uint   `gorm:"primaryKey"`
	HikeID      uint   `gorm:"index;not null;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;foreignKey:HikeID;references:ID"` // Foreign key to associate with Hike
	Observation string `gorm:"type:text;not null"`
	ObservedAt  string `gorm:"not null;index:idx_observations_observed_at"` // ISO-8601 local date-time
	Comments    *string
}

// HikeWithObsCount pairs a hike with the count of its observations.
// Computed per query, never stored.
type HikeWithObsCount struct {
	Hike     `gorm:"embedded"`
	ObsCount int `gorm:"column:obs_count"`
}

// AdvancedFilter holds the optional constraints of the advanced search.
// A nil field means "no constraint"; the result set is the conjunction of
// the supplied constraints.
type AdvancedFilter struct {
	Name      *string  // name starts-with
	Location  *string  // location starts-with
	MinLen    *float64 // lengthKm >= MinLen
	MaxLen    *float64 // lengthKm <= MaxLen
	StartDate *string  // date >= StartDate, ISO-8601 date
	EndDate   *string  // date <= EndDate, ISO-8601 date
}
