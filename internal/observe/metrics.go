// SPDX-License-Identifier: EPL-2.0

// Package observe wires structured logging and OpenTelemetry metrics for the
// loader and the search client.
//
// Components take a *Metrics; tests build one with NewMetrics over an SDK
// MeterProvider backed by a ManualReader, everything else can use
// DefaultMetrics, which records through the global provider.
package observe

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ik5/wavetrim"

type Metrics struct {
	// Loads counts finished load items by outcome ("ok", "skipped", "error").
	Loads metric.Int64Counter

	// LoadFailures counts failed items by kind ("transport", "decode", "canceled").
	LoadFailures metric.Int64Counter

	BytesFetched metric.Int64Counter

	// LoadDuration is the fetch+decode time of one item.
	LoadDuration metric.Float64Histogram

	// SearchRequests counts search API calls by endpoint and HTTP status.
	SearchRequests metric.Int64Counter

	ActiveJobs metric.Int64UpDownCounter
}

var loadBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Loads, err = m.Int64Counter("wavetrim.loader.items",
		metric.WithDescription("Load items completed, by outcome."),
	); err != nil {
		return nil, err
	}
	if met.LoadFailures, err = m.Int64Counter("wavetrim.loader.failures",
		metric.WithDescription("Failed load items, by kind."),
	); err != nil {
		return nil, err
	}
	if met.BytesFetched, err = m.Int64Counter("wavetrim.loader.bytes",
		metric.WithDescription("Bytes fetched from audio sources."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.LoadDuration, err = m.Float64Histogram("wavetrim.loader.duration",
		metric.WithDescription("Fetch and decode latency of one source."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(loadBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SearchRequests, err = m.Int64Counter("wavetrim.search.requests",
		metric.WithDescription("Sound search API requests, by endpoint and status."),
	); err != nil {
		return nil, err
	}
	if met.ActiveJobs, err = m.Int64UpDownCounter("wavetrim.loader.active_jobs",
		metric.WithDescription("Load jobs currently running."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a shared instance on the global MeterProvider.
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

func (m *Metrics) RecordLoad(ctx context.Context, outcome string, d time.Duration) {
	m.Loads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if outcome != "skipped" {
		m.LoadDuration.Record(ctx, d.Seconds())
	}
}

func (m *Metrics) RecordLoadFailure(ctx context.Context, kind string) {
	m.LoadFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordSearch counts one search API call; status 0 means the request never
// got a response.
func (m *Metrics) RecordSearch(ctx context.Context, endpoint string, status int) {
	m.SearchRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", strconv.Itoa(status)),
		),
	)
}
