// SPDX-License-Identifier: EPL-2.0

// Package observe records audgrain metrics through the OpenTelemetry
// Metrics API. InitProvider bridges them to a Prometheus handler so they
// can be scraped from /metrics.
//
// Tests should build Metrics with NewMetrics and a MeterProvider backed by
// a ManualReader instead of relying on the global provider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ik5/audgrain"

// Metrics holds every instrument. All fields are safe for concurrent use.
type Metrics struct {
	GrainsTriggered metric.Int64Counter
	GrainsFailed    metric.Int64Counter
	Evictions       metric.Int64Counter
	Reconfigs       metric.Int64Counter

	// VoicesActive is the scheduler pool size.
	VoicesActive metric.Int64UpDownCounter

	// ExportDuration and DecodeDuration carry a "format" and a "status"
	// attribute.
	ExportDuration metric.Float64Histogram
	DecodeDuration metric.Float64Histogram
}

var durationBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.GrainsTriggered, err = m.Int64Counter("audgrain.grains.triggered",
		metric.WithDescription("Grains handed to the engine."),
	); err != nil {
		return nil, err
	}
	if met.GrainsFailed, err = m.Int64Counter("audgrain.grains.failed",
		metric.WithDescription("Ticks whose grain could not be built or started."),
	); err != nil {
		return nil, err
	}
	if met.Evictions, err = m.Int64Counter("audgrain.voices.evicted",
		metric.WithDescription("Voices evicted because the pool was full."),
	); err != nil {
		return nil, err
	}
	if met.Reconfigs, err = m.Int64Counter("audgrain.scheduler.reconfigured",
		metric.WithDescription("Ticker resets after a density change."),
	); err != nil {
		return nil, err
	}
	if met.VoicesActive, err = m.Int64UpDownCounter("audgrain.voices.active",
		metric.WithDescription("Voices currently in the scheduler pool."),
	); err != nil {
		return nil, err
	}
	if met.ExportDuration, err = m.Float64Histogram("audgrain.export.duration",
		metric.WithDescription("Time to encode and store an export."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DecodeDuration, err = m.Float64Histogram("audgrain.decode.duration",
		metric.WithDescription("Time to decode an uploaded file."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

func (m *Metrics) GrainTriggered() {
	m.GrainsTriggered.Add(context.Background(), 1)
}

func (m *Metrics) GrainFailed() {
	m.GrainsFailed.Add(context.Background(), 1)
}

func (m *Metrics) VoicesChanged(delta int) {
	m.VoicesActive.Add(context.Background(), int64(delta))
}

func (m *Metrics) VoicesEvicted(n int) {
	m.Evictions.Add(context.Background(), int64(n))
}

func (m *Metrics) Reconfigured() {
	m.Reconfigs.Add(context.Background(), 1)
}

// ExportDone records an export.
func (m *Metrics) ExportDone(ctx context.Context, format string, d time.Duration, err error) {
	m.ExportDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status(err)),
	))
}

// DecodeDone records a decode.
func (m *Metrics) DecodeDone(ctx context.Context, format string, d time.Duration, err error) {
	m.DecodeDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status(err)),
	))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
