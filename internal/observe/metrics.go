// Package observe provides application-wide observability primitives for
// SpeakBetter: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all SpeakBetter metrics.
const meterName = "github.com/speakbetter/speakbetter"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// EvaluateDuration tracks pronunciation evaluation latency.
	EvaluateDuration metric.Float64Histogram

	// --- Counters ---

	// Evaluations counts completed pronunciation evaluations. Use with attributes:
	//   attribute.String("word", ...), attribute.String("grade", ...)
	Evaluations metric.Int64Counter

	// ReviewEntries counts words entering the review queue. Use with attribute:
	//   attribute.String("word", ...)
	ReviewEntries metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts speech provider errors. Use with attribute:
	//   attribute.String("provider", ...)
	ProviderErrors metric.Int64Counter

	// StoreFailures counts progress store save failures. Use with attribute:
	//   attribute.String("backend", ...)
	StoreFailures metric.Int64Counter

	// --- Gauges ---

	// ReviewQueueSize tracks the number of words currently needing review.
	ReviewQueueSize metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for transcription and evaluation latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("speakbetter.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EvaluateDuration, err = m.Float64Histogram("speakbetter.evaluate.duration",
		metric.WithDescription("Latency of pronunciation evaluation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Evaluations, err = m.Int64Counter("speakbetter.evaluations",
		metric.WithDescription("Total pronunciation evaluations by word and grade."),
	); err != nil {
		return nil, err
	}
	if met.ReviewEntries, err = m.Int64Counter("speakbetter.review.entries",
		metric.WithDescription("Total words entering the review queue."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("speakbetter.provider.errors",
		metric.WithDescription("Total speech provider errors by provider."),
	); err != nil {
		return nil, err
	}
	if met.StoreFailures, err = m.Int64Counter("speakbetter.store.failures",
		metric.WithDescription("Total progress store save failures by backend."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ReviewQueueSize, err = m.Int64UpDownCounter("speakbetter.review.queue_size",
		metric.WithDescription("Number of words currently needing review."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("speakbetter.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordEvaluation is a convenience method that records a completed
// evaluation counter increment with the standard attribute set.
func (m *Metrics) RecordEvaluation(ctx context.Context, word, grade string) {
	m.Evaluations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("word", word),
			attribute.String("grade", grade),
		),
	)
}

// RecordReviewEntry is a convenience method that records a word entering the
// review queue.
func (m *Metrics) RecordReviewEntry(ctx context.Context, word string) {
	m.ReviewEntries.Add(ctx, 1,
		metric.WithAttributes(attribute.String("word", word)),
	)
}

// RecordProviderError is a convenience method that records a speech provider
// error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}

// RecordStoreFailure is a convenience method that records a progress store
// save failure counter increment.
func (m *Metrics) RecordStoreFailure(ctx context.Context, backend string) {
	m.StoreFailures.Add(ctx, 1,
		metric.WithAttributes(attribute.String("backend", backend)),
	)
}
