// Package observability lets the graph, cache and replication packages emit
// events without depending on a metrics backend.
//
// Each event category has a hook interface with a no-op default. A binary
// installs real hooks once at startup; [Prometheus] implements all three on
// top of github.com/prometheus/client_golang:
//
//	p := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	p.Install()
//	defer observability.Reset()
//
// Library code fetches the current hooks at the call site:
//
//	observability.Graph().OnGenerateStart(ctx, nodes, degree)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// GraphHooks receives events from graph generation.
type GraphHooks interface {
	// OnGenerateStart is called before parents are sampled.
	OnGenerateStart(ctx context.Context, nodes, degree int)

	// OnGenerateComplete is called once generation finished or failed.
	OnGenerateComplete(ctx context.Context, nodes int, duration time.Duration, err error)
}

// ReplicationHooks receives events from replication runs.
// Every event carries the run ID so concurrent runs can be told apart.
type ReplicationHooks interface {
	OnReplicateStart(ctx context.Context, runID string, nodes, layers int)
	OnLayerStart(ctx context.Context, runID string, layer int, direction string)
	OnLayerComplete(ctx context.Context, runID string, layer, nodes int, duration time.Duration)
	OnReplicateComplete(ctx context.Context, runID string, duration time.Duration, err error)
}

// CacheHooks receives graph cache lookups and writes, labeled by key type.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	// OnCacheSet reports a write of size encoded bytes.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

type NoopGraphHooks struct{}

func (NoopGraphHooks) OnGenerateStart(context.Context, int, int)                     {}
func (NoopGraphHooks) OnGenerateComplete(context.Context, int, time.Duration, error) {}

type NoopReplicationHooks struct{}

func (NoopReplicationHooks) OnReplicateStart(context.Context, string, int, int)                {}
func (NoopReplicationHooks) OnLayerStart(context.Context, string, int, string)                 {}
func (NoopReplicationHooks) OnLayerComplete(context.Context, string, int, int, time.Duration)  {}
func (NoopReplicationHooks) OnReplicateComplete(context.Context, string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// hookSlot holds one registered hook set. Reads are lock-free since every
// layer and cache lookup goes through them.
type hookSlot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *hookSlot[T]) load() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.noop
}

func (s *hookSlot[T]) store(h T) {
	if any(h) != nil {
		s.p.Store(&h)
	}
}

var (
	graphHooks       = hookSlot[GraphHooks]{noop: NoopGraphHooks{}}
	replicationHooks = hookSlot[ReplicationHooks]{noop: NoopReplicationHooks{}}
	cacheHooks       = hookSlot[CacheHooks]{noop: NoopCacheHooks{}}
)

// SetGraphHooks installs h for graph generation. A nil h is ignored.
func SetGraphHooks(h GraphHooks) { graphHooks.store(h) }

// SetReplicationHooks installs h for replication runs. A nil h is ignored.
func SetReplicationHooks(h ReplicationHooks) { replicationHooks.store(h) }

// SetCacheHooks installs h for graph cache lookups. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheHooks.store(h) }

func Graph() GraphHooks { return graphHooks.load() }

func Replication() ReplicationHooks { return replicationHooks.load() }

func Cache() CacheHooks { return cacheHooks.load() }

// Reset uninstalls every hook.
func Reset() {
	graphHooks.p.Store(nil)
	replicationHooks.p.Store(nil)
	cacheHooks.p.Store(nil)
}
