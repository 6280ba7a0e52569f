package core

import (
	"context"
	"expvar"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"citycore/pkg/domain"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if !strings.HasPrefix(rec.Name(), "citycore_store_metrics_") {
		t.Fatalf("unexpected generated name %s", rec.Name())
	}
	rec.Observe(context.Background(), "add_buildings", true, 2*time.Millisecond)
	rec.Observe(context.Background(), "add_buildings", false, 3*time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Second)

	snap := rec.Snapshot()
	if snap.DurationsMS["add_buildings"] != 5 {
		t.Fatalf("unexpected duration total %v", snap.DurationsMS)
	}
	if snap.Results["add_buildings"]["success"] != 1 || snap.Results["add_buildings"]["error"] != 1 {
		t.Fatalf("unexpected results %v", snap.Results)
	}
	if len(snap.Results) != 1 {
		t.Fatalf("empty operation names must be ignored")
	}
	published := expvar.Get(rec.Name())
	if published == nil || !strings.Contains(published.String(), "add_buildings") {
		t.Fatalf("recorder not published via expvar")
	}
	snap.Results["add_buildings"]["success"] = 99
	if rec.Snapshot().Results["add_buildings"]["success"] != 1 {
		t.Fatalf("snapshot aliases recorder state")
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg, "citycore")
	if err != nil {
		t.Fatalf("NewPrometheusMetricsRecorder: %v", err)
	}
	s := NewStore(context.Background(), WithMetricsRecorder(rec))
	ctx := context.Background()
	_ = s.AddBuildings(ctx, domain.Buildings{"1": {FloorCount: 1}})
	_ = s.AddBuildings(ctx, domain.Buildings{"1": {FloorCount: 1}})
	rec.Observe(ctx, "", true, time.Second)

	if got := promtest.ToFloat64(rec.operations.WithLabelValues("add_buildings", "success")); got != 1 {
		t.Fatalf("success count = %v", got)
	}
	if got := promtest.ToFloat64(rec.operations.WithLabelValues("add_buildings", "error")); got != 1 {
		t.Fatalf("error count = %v", got)
	}
	if n := promtest.CollectAndCount(rec.durations, "citycore_store_operation_duration_seconds"); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}

	if _, err := NewPrometheusMetricsRecorder(reg, "citycore"); err == nil {
		t.Fatalf("duplicate registration should fail")
	}
}

func TestMultiMetricsRecorder(t *testing.T) {
	a, b := &captureMetricsRecorder{}, &captureMetricsRecorder{}
	MultiMetricsRecorder{a, nil, b}.Observe(context.Background(), "op", true, 0)
	if !a.has("op", true) || !b.has("op", true) {
		t.Fatalf("observation not fanned out")
	}
}
