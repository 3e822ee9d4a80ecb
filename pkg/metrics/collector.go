// Package metrics provides metrics collection for the explainer.
package metrics

import (
	"time"
)

// Metric names shared by the components that record them.
const (
	InferenceRequestsTotal = "sqlexplainer_inference_requests_total"
	InferenceDuration      = "sqlexplainer_inference_duration_seconds"
	ModelAvailable         = "sqlexplainer_model_available"
	ExplanationsTotal      = "sqlexplainer_explanations_total"
	ChunksTotal            = "sqlexplainer_chunks_total"
	ExplainDuration        = "sqlexplainer_explain_duration_seconds"
	HTTPRequestsTotal      = "sqlexplainer_http_requests_total"
	HTTPRequestDuration    = "sqlexplainer_http_request_duration_seconds"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncrementCounter increments a counter metric.
	IncrementCounter(name string, labels ...string)

	// RecordHistogram records a value in a histogram metric.
	RecordHistogram(name string, value float64, labels ...string)

	// RecordGauge records a gauge metric value.
	RecordGauge(name string, value float64, labels ...string)

	// StartTimer starts a timer for measuring duration.
	StartTimer(name string) Timer
}

// Timer represents a timing measurement.
type Timer interface {
	// Stop stops the timer and returns the duration in seconds.
	Stop() float64
}

// NoOpCollector is a no-op implementation of Collector.
type NoOpCollector struct{}

// NewNoOpCollector creates a new no-op collector.
func NewNoOpCollector() Collector {
	return &NoOpCollector{}
}

// IncrementCounter does nothing.
func (n *NoOpCollector) IncrementCounter(name string, labels ...string) {}

// RecordHistogram does nothing.
func (n *NoOpCollector) RecordHistogram(name string, value float64, labels ...string) {}

// RecordGauge does nothing.
func (n *NoOpCollector) RecordGauge(name string, value float64, labels ...string) {}

// StartTimer returns a timer that only measures.
func (n *NoOpCollector) StartTimer(name string) Timer {
	return &timer{start: time.Now()}
}

type timer struct {
	start time.Time
}

// Stop returns the elapsed time in seconds.
func (t *timer) Stop() float64 {
	return time.Since(t.start).Seconds()
}
