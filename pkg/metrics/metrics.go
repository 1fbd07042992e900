// Package metrics provides Prometheus metrics for gridbase workspaces.
// The engine itself records nothing; the workspace records around its
// mutation and pipeline calls, and a host application may expose the
// default registry however it likes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal counts mutation calls by database, operation and outcome.
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridbase_mutations_total",
			Help: "Total number of database mutations",
		},
		[]string{"database", "operation", "status"},
	)

	// PipelineDuration tracks view pipeline run latency in seconds.
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridbase_pipeline_duration_seconds",
			Help:    "View pipeline recomputation latency in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 8),
		},
		[]string{"database"},
	)

	// RowsTotal tracks the current row count per database.
	RowsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridbase_rows_total",
			Help: "Current number of rows per database",
		},
		[]string{"database"},
	)
)

// Collector records workspace metrics for one database.
type Collector struct {
	database string
}

// NewCollector creates a collector labeled with the database ID.
func NewCollector(databaseID string) *Collector {
	return &Collector{database: databaseID}
}

// RecordMutation counts one mutation call.
func (c *Collector) RecordMutation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	MutationsTotal.WithLabelValues(c.database, operation, status).Inc()
}

// RecordPipeline observes one view pipeline run.
func (c *Collector) RecordPipeline(elapsed time.Duration) {
	PipelineDuration.WithLabelValues(c.database).Observe(elapsed.Seconds())
}

// RecordRowCount publishes the current row count.
func (c *Collector) RecordRowCount(rows int) {
	RowsTotal.WithLabelValues(c.database).Set(float64(rows))
}
