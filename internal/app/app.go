// Package app wires the application together: settings, logging, the store
// and the repository. Construction is explicit; nothing here is a global.
package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"hikelog/internal/conf"
	"hikelog/internal/datastore"
	"hikelog/internal/logging"
	"hikelog/internal/repository"
)

// Context carries the initialized application dependencies into commands.
type Context struct {
	Settings *conf.Settings
	Store    datastore.Interface
	Repo     *repository.Repository
	Registry *prometheus.Registry

	initialized bool
}

// Initialize sets up logging, opens the store and builds the repository.
// Idempotent so chained command hooks do not double-open the database.
func (c *Context) Initialize() error {
	if c.initialized {
		return nil
	}

	logging.Init(c.Settings.LogLevel())
	if c.Settings.Log.Path != "" {
		if err := datastore.InitializeFileLogger(c.Settings.Log.Path); err != nil {
			return err
		}
	}

	store := datastore.New(c.Settings)
	if err := store.Open(); err != nil {
		return err
	}

	c.Registry = prometheus.NewRegistry()
	if metrics, err := datastore.NewMetrics(c.Registry); err == nil {
		if s, ok := store.(*datastore.SQLiteStore); ok {
			s.ConfigureMetrics(metrics)
		}
	}

	c.Store = store
	c.Repo = repository.New(store)
	c.initialized = true
	return nil
}

// Shutdown closes the store; live streams terminate with it.
func (c *Context) Shutdown() error {
	if !c.initialized {
		return nil
	}
	c.initialized = false
	return c.Store.Close()
}
