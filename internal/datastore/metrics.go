package datastore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds database operation metrics. A nil *Metrics is valid and
// records nothing, so metrics stay optional.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates and registers database operation metrics with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hikelog_db_operations_total",
				Help: "Database write operations by result",
			},
			[]string{"operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hikelog_db_operation_duration_seconds",
				Help:    "Database write operation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	if err := reg.Register(m.operations); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// ConfigureMetrics attaches operation metrics to the store.
func (ds *DataStore) ConfigureMetrics(m *Metrics) {
	ds.metrics = m
}

type opTimer struct {
	metrics   *Metrics
	operation string
	begin     time.Time
}

func (m *Metrics) startTimer(operation string) opTimer {
	return opTimer{metrics: m, operation: operation, begin: time.Now()}
}

func (t opTimer) stop(err error) {
	if t.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	t.metrics.operations.WithLabelValues(t.operation, status).Inc()
	t.metrics.duration.WithLabelValues(t.operation).Observe(time.Since(t.begin).Seconds())
}
