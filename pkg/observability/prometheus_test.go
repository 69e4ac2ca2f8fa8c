package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusReplication(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheus(prometheus.NewRegistry())

	p.OnReplicateStart(ctx, "a", 100, 2)
	p.OnReplicateStart(ctx, "b", 100, 2)
	if got := testutil.ToFloat64(p.activeRuns); got != 2 {
		t.Errorf("active runs = %v, want 2", got)
	}

	p.OnLayerComplete(ctx, "a", 0, 100, time.Millisecond)
	p.OnLayerComplete(ctx, "a", 1, 100, time.Millisecond)
	p.OnReplicateComplete(ctx, "a", time.Second, nil)
	p.OnReplicateComplete(ctx, "b", time.Second, errors.New("canceled"))

	if got := testutil.ToFloat64(p.activeRuns); got != 0 {
		t.Errorf("active runs = %v, want 0", got)
	}
	if got := testutil.ToFloat64(p.encodedNodes); got != 200 {
		t.Errorf("encoded nodes = %v, want 200", got)
	}
	if got := testutil.ToFloat64(p.replications.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.replications.WithLabelValues("error")); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(p.layerDuration); got != 2 {
		t.Errorf("layer duration series = %d, want 2", got)
	}
}

func TestPrometheusGraphAndCache(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheus(prometheus.NewRegistry())

	p.OnGenerateComplete(ctx, 64, time.Millisecond, nil)
	p.OnGenerateComplete(ctx, 64, time.Millisecond, errors.New("canceled"))
	if got := testutil.ToFloat64(p.generatedNodes); got != 64 {
		t.Errorf("generated nodes = %v, want 64", got)
	}

	p.OnCacheHit(ctx, "graph")
	p.OnCacheMiss(ctx, "graph")
	p.OnCacheMiss(ctx, "graph")
	p.OnCacheSet(ctx, "graph", 512)

	if got := testutil.ToFloat64(p.cacheRequests.WithLabelValues("graph", "miss")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.cacheWrittenBytes.WithLabelValues("graph")); got != 512 {
		t.Errorf("written bytes = %v, want 512", got)
	}
}

func TestPrometheusInstall(t *testing.T) {
	defer Reset()
	p := NewPrometheus(prometheus.NewRegistry())
	p.Install()

	if Graph() != GraphHooks(p) || Replication() != ReplicationHooks(p) || Cache() != CacheHooks(p) {
		t.Error("Install should register p for every hook category")
	}
}

func TestPrometheusDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheus(reg)

	defer func() {
		if recover() == nil {
			t.Error("registering twice should panic")
		}
	}()
	NewPrometheus(reg)
}
