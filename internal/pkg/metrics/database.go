// Package metrics holds the Prometheus collectors shared by the storage,
// service and AI layers. HTTP collectors live with the middleware.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acadvisor_db_operations_total",
			Help: "Operations against Postgres, Redis and MinIO by outcome",
		},
		[]string{"store", "op", "outcome"},
	)

	storeOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acadvisor_db_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"store", "op"},
	)
)

// RecordStoreOp records one storage round trip. Failed operations are
// counted but not timed.
func RecordStoreOp(store, op string, d time.Duration, err error) {
	if err != nil {
		storeOps.WithLabelValues(store, op, "error").Inc()
		return
	}
	storeOps.WithLabelValues(store, op, "ok").Inc()
	storeOpDuration.WithLabelValues(store, op).Observe(d.Seconds())
}
