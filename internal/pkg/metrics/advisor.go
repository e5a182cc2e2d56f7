package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acadvisor_queries_total",
			Help: "Total number of advisory queries by intent and annotation provenance",
		},
		[]string{"intent", "provenance"},
	)

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acadvisor_query_duration_seconds",
			Help:    "End-to-end query handling time in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"intent"},
	)

	intentConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acadvisor_intent_confidence",
			Help:    "Confidence of the winning dispatch rule",
			Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
		[]string{"intent"},
	)

	pipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acadvisor_pipeline_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"intent", "stage"},
	)

	domainErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acadvisor_domain_errors_total",
			Help: "Queries that ended with a domain error",
		},
		[]string{"intent", "code"},
	)

	aiCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acadvisor_ai_calls_total",
			Help: "AI enhancement calls by gateway and outcome",
		},
		[]string{"gateway", "outcome"},
	)

	aiCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acadvisor_ai_call_duration_seconds",
			Help:    "AI enhancement call duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 3, 5, 8},
		},
		[]string{"gateway"},
	)

	catalogCourses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "acadvisor_catalog_courses",
			Help: "Number of courses in the loaded catalog",
		},
	)

	catalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acadvisor_catalog_loads_total",
			Help: "Catalog load attempts by source and status",
		},
		[]string{"source", "status"},
	)
)

// RecordQuery records a completed query
func RecordQuery(intent, provenance string, duration time.Duration) {
	queriesTotal.WithLabelValues(intent, provenance).Inc()
	queryDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

// RecordIntent records the confidence of a dispatch decision
func RecordIntent(intent string, confidence float64) {
	intentConfidence.WithLabelValues(intent).Observe(confidence)
}

// RecordStage records one pipeline stage
func RecordStage(intent, stage string, duration time.Duration) {
	pipelineStageDuration.WithLabelValues(intent, stage).Observe(duration.Seconds())
}

// RecordDomainError records a query that failed with a domain error
func RecordDomainError(intent, code string) {
	domainErrors.WithLabelValues(intent, code).Inc()
}

// RecordAICall records an AI gateway call. outcome is "ok" or a failure kind.
func RecordAICall(gateway, outcome string, duration time.Duration) {
	aiCalls.WithLabelValues(gateway, outcome).Inc()
	aiCallDuration.WithLabelValues(gateway).Observe(duration.Seconds())
}

// RecordCatalogLoad records a catalog load attempt
func RecordCatalogLoad(source string, courses int, err error) {
	if err != nil {
		catalogLoads.WithLabelValues(source, "error").Inc()
		return
	}
	catalogLoads.WithLabelValues(source, "success").Inc()
	catalogCourses.Set(float64(courses))
}
