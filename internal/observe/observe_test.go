// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestResolveLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		got, err := ResolveLogLevel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidLogLevel) {
				t.Errorf("ResolveLogLevel(%q) error = %v, want ErrInvalidLogLevel", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ResolveLogLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestNewLogger_FiltersByLevel(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger, err := NewLogger(&out, "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("load failed", "index", 2)

	s := out.String()
	if strings.Contains(s, "hidden") {
		t.Errorf("info record written at warn level: %q", s)
	}
	if !strings.Contains(s, "load failed") || !strings.Contains(s, "index=2") {
		t.Errorf("warn record missing: %q", s)
	}
}

func TestRecordLoad(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordLoad(ctx, "ok", 200*time.Millisecond)
	m.RecordLoad(ctx, "ok", 300*time.Millisecond)
	m.RecordLoad(ctx, "skipped", 0)
	m.RecordLoadFailure(ctx, "decode")

	rm := collect(t, reader)

	loads := findMetric(rm, "wavetrim.loader.items")
	if loads == nil {
		t.Fatal("loader items metric not found")
	}
	sum, ok := loads.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("items data = %T, want Sum[int64]", loads.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("items total = %d, want 3", total)
	}

	dur := findMetric(rm, "wavetrim.loader.duration")
	if dur == nil {
		t.Fatal("duration metric not found")
	}
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration data = %T", dur.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 2 {
		t.Errorf("duration observations = %+v, want 2 in one series", hist.DataPoints)
	}

	if findMetric(rm, "wavetrim.loader.failures") == nil {
		t.Error("failures metric not found")
	}
}

func TestRecordSearch(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	m.RecordSearch(context.Background(), "search", 200)
	m.RecordSearch(context.Background(), "search", 401)

	rm := collect(t, reader)
	got := findMetric(rm, "wavetrim.search.requests")
	if got == nil {
		t.Fatal("search metric not found")
	}
	sum := got.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 2 {
		t.Errorf("search series = %d, want one per status", len(sum.DataPoints))
	}
}

func TestDefaultMetrics(t *testing.T) {
	t.Parallel()

	if DefaultMetrics() != DefaultMetrics() {
		t.Error("DefaultMetrics() should return the same instance")
	}
}
