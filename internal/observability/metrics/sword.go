package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SwordMetrics contains Prometheus metrics for the SWORD adapter and its backing calls.
// A nil *SwordMetrics is a valid no-op recorder.
type SwordMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	backingTotal      *prometheus.CounterVec
	backingDuration   *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
}

// NewSwordMetrics creates and registers the adapter metrics
func NewSwordMetrics(registry *prometheus.Registry) (*SwordMetrics, error) {
	m := &SwordMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SwordMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swordgate_sword_operations_total",
			Help: "Total number of SWORD operations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success, not_found, unauthorized, bad_request, not_implemented, error
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swordgate_sword_operation_duration_seconds",
			Help:    "Time taken by SWORD operations including backing calls",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15), // 1ms to ~32s
		},
		[]string{"operation"},
	)

	m.backingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swordgate_backing_requests_total",
			Help: "Total number of requests sent to the backing notification service",
		},
		[]string{"operation", "status"}, // status: HTTP status code or "error" for transport failures
	)

	m.backingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swordgate_backing_request_duration_seconds",
			Help:    "Latency of backing notification service requests",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"operation"},
	)

	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swordgate_notification_cache_lookups_total",
			Help: "Per-request notification cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)
}

func (m *SwordMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.operationsTotal,
		m.operationDuration,
		m.backingTotal,
		m.backingDuration,
		m.cacheLookups,
	}
}

// Describe implements the Collector interface
func (m *SwordMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *SwordMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordOperation records one SWORD operation and its duration
func (m *SwordMetrics) RecordOperation(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBackingRequest records one backing service call; status is the HTTP code or "error"
func (m *SwordMetrics) RecordBackingRequest(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.backingTotal.WithLabelValues(operation, status).Inc()
	m.backingDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheLookup records a notification cache hit or miss
func (m *SwordMetrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
