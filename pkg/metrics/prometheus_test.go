package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_IncrementCounter(t *testing.T) {
	collector := NewPrometheusCollector()
	collector.IncrementCounter(ChunksTotal, "outcome", "success")
	collector.IncrementCounter(ChunksTotal, "outcome", "success")
	collector.IncrementCounter(ChunksTotal, "outcome", "failure")

	counter := collector.counters[ChunksTotal]
	require.NotNil(t, counter)
	assert.Equal(t, float64(2), testutil.ToFloat64(counter.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(counter.WithLabelValues("failure")))
}

func TestPrometheusCollector_RecordHistogram(t *testing.T) {
	collector := NewPrometheusCollector()
	collector.RecordHistogram(InferenceDuration, 0.25, "operation", "generate")

	histogram := collector.histograms[InferenceDuration]
	require.NotNil(t, histogram)
	assert.Equal(t, 1, testutil.CollectAndCount(histogram))
}

func TestPrometheusCollector_RecordGauge(t *testing.T) {
	collector := NewPrometheusCollector()
	collector.RecordGauge(ModelAvailable, 1)
	collector.RecordGauge(ModelAvailable, 0)

	gauge := collector.gauges[ModelAvailable]
	require.NotNil(t, gauge)
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge.WithLabelValues()))
}

func TestPrometheusCollector_SeparateRegistries(t *testing.T) {
	a := NewPrometheusCollector()
	b := NewPrometheusCollector()

	assert.NotPanics(t, func() {
		a.IncrementCounter(ExplanationsTotal, "outcome", "success")
		b.IncrementCounter(ExplanationsTotal, "outcome", "success")
	})
}

func TestPrometheusCollector_Handler(t *testing.T) {
	collector := NewPrometheusCollector()
	collector.IncrementCounter(InferenceRequestsTotal, "operation", "pull", "outcome", "success")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(),
		`sqlexplainer_inference_requests_total{operation="pull",outcome="success"} 1`))
}

func TestTimers(t *testing.T) {
	for _, c := range []Collector{NewPrometheusCollector(), NewNoOpCollector()} {
		timer := c.StartTimer("t")
		time.Sleep(5 * time.Millisecond)
		d := timer.Stop()
		assert.Greater(t, d, 0.0)
		assert.Less(t, d, 5.0)
	}
}

func TestNoOpCollector(t *testing.T) {
	c := NewNoOpCollector()
	assert.NotPanics(t, func() {
		c.IncrementCounter("x", "a", "b")
		c.RecordHistogram("y", 1, "a")
		c.RecordGauge("z", 2)
	})
}

func TestParseLabelPairs(t *testing.T) {
	tests := []struct {
		name       string
		labels     []string
		wantNames  []string
		wantValues []string
	}{
		{
			name:       "empty labels",
			labels:     []string{},
			wantNames:  []string{},
			wantValues: []string{},
		},
		{
			name:       "pairs",
			labels:     []string{"operation", "generate", "outcome", "success"},
			wantNames:  []string{"operation", "outcome"},
			wantValues: []string{"generate", "success"},
		},
		{
			name:       "odd trailing label ignored",
			labels:     []string{"operation", "pull", "dangling"},
			wantNames:  []string{"operation"},
			wantValues: []string{"pull"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, values := parseLabelPairs(tt.labels)
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantValues, values)
		})
	}
}
