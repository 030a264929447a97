// Package metrics defines the Prometheus instruments levelup exports.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Cache kinds used as label values.
const (
	KindCatalog  = "catalog"
	KindTemplate = "template"
)

// Metrics holds all instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	MaterializationsTotal   *prometheus.CounterVec
	SlotInsertFailuresTotal prometheus.Counter
	ConfigCacheHitsTotal    *prometheus.CounterVec
	ConfigCacheMissesTotal  *prometheus.CounterVec
	EnrollmentsTotal        *prometheus.CounterVec
	TaskResponsesTotal      prometheus.Counter
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the instruments and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		MaterializationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelup_materializations_total",
			Help: "Journey materializations by outcome (created, existing, failed).",
		}, []string{"outcome"}),
		SlotInsertFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "levelup_slot_insert_failures_total",
			Help: "Story slot inserts that failed during lenient materialization.",
		}),
		ConfigCacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelup_config_cache_hits_total",
			Help: "Config store cache hits.",
		}, []string{"kind"}),
		ConfigCacheMissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelup_config_cache_misses_total",
			Help: "Config store cache misses.",
		}, []string{"kind"}),
		EnrollmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelup_enrollments_total",
			Help: "Journey enrollments by outcome (created, existing).",
		}, []string{"outcome"}),
		TaskResponsesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "levelup_task_responses_total",
			Help: "Answers recorded for question tasks.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelup_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "levelup_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.MaterializationsTotal,
		m.SlotInsertFailuresTotal,
		m.ConfigCacheHitsTotal,
		m.ConfigCacheMissesTotal,
		m.EnrollmentsTotal,
		m.TaskResponsesTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

func (m *Metrics) RecordMaterialization(outcome string) {
	if m == nil {
		return
	}
	m.MaterializationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSlotInsertFailure() {
	if m == nil {
		return
	}
	m.SlotInsertFailuresTotal.Inc()
}

func (m *Metrics) RecordCacheHit(kind string) {
	if m == nil {
		return
	}
	m.ConfigCacheHitsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordCacheMiss(kind string) {
	if m == nil {
		return
	}
	m.ConfigCacheMissesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordEnrollment(outcome string) {
	if m == nil {
		return
	}
	m.EnrollmentsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTaskResponse() {
	if m == nil {
		return
	}
	m.TaskResponsesTotal.Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry this Metrics was created with.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
