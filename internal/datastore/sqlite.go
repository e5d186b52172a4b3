package datastore

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hikelog/internal/conf"
	"hikelog/internal/errors"
	"hikelog/internal/events"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// buildDSN appends the connection parameters the store depends on:
// foreign keys for referential integrity, a busy timeout so queued writers
// wait instead of failing, and WAL so readers are not blocked by the writer.
func buildDSN(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		if path == ":memory:" {
			path = "file::memory:"
		}
		if strings.Contains(path, "?") {
			return path + "&" + params
		}
		return path + "?" + params
	}
	return path + "?" + params
}

// Open sets up the SQLite database connection and migrates the schema.
func (store *SQLiteStore) Open() error {
	path := store.Settings.Output.SQLite.Path
	if path == "" {
		return errors.Newf("sqlite path is not configured").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}

	db, err := gorm.Open(sqlite.Open(buildDSN(path)), &gorm.Config{
		Logger: newGormLogger(store.Settings),
	})
	if err != nil {
		return dbError(err, "open", "path", path)
	}

	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty
		// in-memory database.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := db.AutoMigrate(&Hike{}, &Observation{}); err != nil {
		return dbError(err, "auto_migrate", "path", path)
	}

	store.DB = db
	store.bus = events.NewBus()

	if store.Settings.Debug {
		getLogger().Debug("SQLite database connection initialized", "path", path)
	}
	return nil
}

// Close shuts down the change bus and the underlying connection. Live
// streams observe the bus closing and terminate.
func (store *SQLiteStore) Close() error {
	if store.bus != nil {
		store.bus.Close()
	}
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	return sqlDB.Close()
}
