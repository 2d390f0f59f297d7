package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwordMetrics_Record(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewSwordMetrics(registry)
	require.NoError(t, err)

	m.RecordOperation(OpDepositNew, OutcomeSuccess, 20*time.Millisecond)
	m.RecordOperation(OpDepositNew, OutcomeSuccess, 30*time.Millisecond)
	m.RecordOperation(OpGetStatement, OutcomeNotFound, time.Millisecond)
	m.RecordBackingRequest(OpBackingGet, "404", 5*time.Millisecond)
	m.RecordCacheLookup(CacheMiss)
	m.RecordCacheLookup(CacheHit)
	m.RecordCacheLookup(CacheHit)

	assert.InDelta(t, 2, testutil.ToFloat64(m.operationsTotal.WithLabelValues(OpDepositNew, OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.operationsTotal.WithLabelValues(OpGetStatement, OutcomeNotFound)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.backingTotal.WithLabelValues(OpBackingGet, "404")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheHit)), 0)

	families, err := registry.Gather()
	require.NoError(t, err)

	var histogram *dto.Histogram
	for _, mf := range families {
		if mf.GetName() == "swordgate_sword_operation_duration_seconds" {
			for _, metric := range mf.GetMetric() {
				if metric.GetLabel()[0].GetValue() == OpDepositNew {
					histogram = metric.GetHistogram()
				}
			}
		}
	}
	require.NotNil(t, histogram)
	assert.Equal(t, uint64(2), histogram.GetSampleCount())
	assert.InDelta(t, 0.05, histogram.GetSampleSum(), 1e-9)
}

func TestSwordMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *SwordMetrics
	assert.NotPanics(t, func() {
		m.RecordOperation(OpDepositNew, OutcomeError, time.Second)
		m.RecordBackingRequest(OpBackingCreate, "error", time.Second)
		m.RecordCacheLookup(CacheHit)
	})
}

func TestHTTPMetrics_Record(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(registry)
	require.NoError(t, err)

	m.RecordHTTPRequest("POST", "/swordv2/collection/:collection_id", 201, 10*time.Millisecond, 512)
	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/swordv2/collection/:collection_id", "201")), 0)

	_, err = NewHTTPMetrics(registry)
	require.Error(t, err, "registering the same collectors twice must fail")
}
