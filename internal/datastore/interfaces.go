// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hikelog/internal/conf"
	"hikelog/internal/errors"
	"hikelog/internal/events"
)

// Interface abstracts the underlying database implementation and defines the
// storage engine operations. It is the only storage access path; every
// mutation is transactional and publishes the changed tables to the change
// bus on commit.
type Interface interface {
	Open() error
	Close() error

	InsertHike(hike *Hike) error
	UpdateHike(hike *Hike) error
	DeleteHike(id uint) error
	GetHike(id uint) (*Hike, error)
	DeleteAllHikes() error

	InsertObservation(obs *Observation) error
	UpdateObservation(obs *Observation) error
	DeleteObservation(id uint) error

	AllHikesWithCounts() ([]HikeWithObsCount, error)
	SearchHikesByNamePrefix(prefix string) ([]HikeWithObsCount, error)
	AdvancedSearchHikes(filter AdvancedFilter) ([]HikeWithObsCount, error)
	ObservationsForHike(hikeID uint) ([]Observation, error)

	Changes() *events.Bus
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance

	// writeMu serializes write transactions: single writer, queued
	// concurrent writers. Readers are not blocked by it.
	writeMu sync.Mutex

	bus     *events.Bus
	metrics *Metrics
}

// New creates a new store instance based on the provided settings.
func New(settings *conf.Settings) Interface {
	return &SQLiteStore{Settings: settings}
}

// Changes returns the change notification bus backing live queries.
func (ds *DataStore) Changes() *events.Bus {
	return ds.bus
}

// checkHikeRequired enforces the not-null invariants of a hike row before the
// write is attempted.
func checkHikeRequired(h *Hike) error {
	switch {
	case strings.TrimSpace(h.Name) == "":
		return constraintError("hike name must not be empty", "name", h.Name)
	case strings.TrimSpace(h.Location) == "":
		return constraintError("hike location must not be empty", "location", h.Location)
	case strings.TrimSpace(h.Date) == "":
		return constraintError("hike date is required", "date", h.Date)
	case h.LengthKm <= 0:
		return constraintError("hike length must be a positive number", "lengthKm", h.LengthKm)
	case !h.Difficulty.Valid():
		return constraintError("hike difficulty must be EASY, MODERATE or HARD", "difficulty", string(h.Difficulty))
	}
	return nil
}

// write runs fn as a serialized transaction and publishes the changed tables
// after a successful commit. Partial writes are never visible to readers.
func (ds *DataStore) write(operation string, fn func(tx *gorm.DB) error, changed ...events.Table) error {
	ds.writeMu.Lock()
	defer ds.writeMu.Unlock()

	timer := ds.metrics.startTimer(operation)
	err := ds.DB.Transaction(fn)
	timer.stop(err)
	if err != nil {
		if isCategorized(err) {
			return err
		}
		return dbError(err, operation)
	}

	ds.bus.Publish(changed...)
	return nil
}

// isCategorized reports whether err already carries a category from a
// pre-write check inside the transaction, so write does not re-wrap it.
func isCategorized(err error) bool {
	var ee *errors.EnhancedError
	return errors.As(err, &ee)
}

// InsertHike assigns a new unique id, ignoring any id supplied, and stores
// the hike. Missing required fields fail with a constraint violation.
func (ds *DataStore) InsertHike(hike *Hike) error {
	if err := checkHikeRequired(hike); err != nil {
		return err
	}

	hike.ID = 0 // id is storage assigned
	return ds.write("insert_hike", func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(hike).Error
	}, events.TableHikes)
}

// UpdateHike replaces the full record matching hike.ID.
// Returns a not-found error if the id does not exist.
func (ds *DataStore) UpdateHike(hike *Hike) error {
	if err := checkHikeRequired(hike); err != nil {
		return err
	}

	return ds.write("update_hike", func(tx *gorm.DB) error {
		var existing Hike
		if err := tx.First(&existing, hike.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("hike", hike.ID)
			}
			return err
		}
		return tx.Omit(clause.Associations).Save(hike).Error
	}, events.TableHikes)
}

// DeleteHike removes the hike and, atomically in the same transaction, all
// observations referencing it.
func (ds *DataStore) DeleteHike(id uint) error {
	return ds.write("delete_hike", func(tx *gorm.DB) error {
		var existing Hike
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("hike", id)
			}
			return err
		}
		// Delete the observations referencing the hike
		if err := tx.Where("hike_id = ?", id).Delete(&Observation{}).Error; err != nil {
			return err
		}
		// Delete the hike itself
		return tx.Delete(&Hike{}, id).Error
	}, events.TableHikes, events.TableObservations)
}

// GetHike retrieves a hike by its id. Absence is not an error: a missing id
// yields (nil, nil).
func (ds *DataStore) GetHike(id uint) (*Hike, error) {
	var hike Hike
	if err := ds.DB.First(&hike, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err, "get_hike", "id", id)
	}
	return &hike, nil
}

// DeleteAllHikes clears both tables in one transaction. Destructive reset.
func (ds *DataStore) DeleteAllHikes() error {
	return ds.write("delete_all_hikes", func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Observation{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&Hike{}).Error
	}, events.TableHikes, events.TableObservations)
}

// InsertObservation stores a new observation. The referenced hike must
// exist; the check runs inside the same transaction as the insert.
// A blank ObservedAt defaults to now in the local time zone.
func (ds *DataStore) InsertObservation(obs *Observation) error {
	if strings.TrimSpace(obs.Observation) == "" {
		return constraintError("observation text must not be empty", "observation", obs.Observation)
	}
	if obs.ObservedAt == "" {
		obs.ObservedAt = Now()
	}

	obs.ID = 0 // id is storage assigned
	return ds.write("insert_observation", func(tx *gorm.DB) error {
		if err := requireHike(tx, obs.HikeID); err != nil {
			return err
		}
		return tx.Create(obs).Error
	}, events.TableObservations)
}

// UpdateObservation replaces the full record matching obs.ID.
func (ds *DataStore) UpdateObservation(obs *Observation) error {
	if strings.TrimSpace(obs.Observation) == "" {
		return constraintError("observation text must not be empty", "observation", obs.Observation)
	}

	return ds.write("update_observation", func(tx *gorm.DB) error {
		var existing Observation
		if err := tx.First(&existing, obs.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("observation", obs.ID)
			}
			return err
		}
		if err := requireHike(tx, obs.HikeID); err != nil {
			return err
		}
		return tx.Save(obs).Error
	}, events.TableObservations)
}

// DeleteObservation removes a single observation by id.
func (ds *DataStore) DeleteObservation(id uint) error {
	return ds.write("delete_observation", func(tx *gorm.DB) error {
		var existing Observation
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("observation", id)
			}
			return err
		}
		return tx.Delete(&Observation{}, id).Error
	}, events.TableObservations)
}

// requireHike enforces the foreign key inside a write transaction.
func requireHike(tx *gorm.DB, hikeID uint) error {
	var hike Hike
	if err := tx.Select("id").First(&hike, hikeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return constraintError("observation references a non-existent hike", "hikeId", hikeID)
		}
		return err
	}
	return nil
}
