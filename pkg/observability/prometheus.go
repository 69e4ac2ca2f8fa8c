package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "zigzag"

// Prometheus records hook events as Prometheus metrics.
// It implements [GraphHooks], [ReplicationHooks] and [CacheHooks].
type Prometheus struct {
	generateDuration  *prometheus.HistogramVec
	generatedNodes    prometheus.Counter
	replications      *prometheus.CounterVec
	replicateDuration prometheus.Histogram
	layerDuration     *prometheus.HistogramVec
	encodedNodes      prometheus.Counter
	activeRuns        prometheus.Gauge
	cacheRequests     *prometheus.CounterVec
	cacheWrittenBytes *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg.
// It panics if a collector is already registered, like [prometheus.MustRegister].
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		generateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "generate_duration_seconds",
			Help:      "Time to sample the parents of a graph",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"status"}),
		generatedNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "generated_nodes_total",
			Help:      "Nodes of successfully generated graphs",
		}),
		replications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replication",
			Name:      "runs_total",
			Help:      "Replication runs by status",
		}, []string{"status"}),
		replicateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "replication",
			Name:      "duration_seconds",
			Help:      "Duration of complete replication runs",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		layerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "replication",
			Name:      "layer_duration_seconds",
			Help:      "Duration of a single encoding layer",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"direction"}),
		encodedNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replication",
			Name:      "encoded_nodes_total",
			Help:      "Nodes encoded across all layers",
		}),
		activeRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "replication",
			Name:      "active_runs",
			Help:      "Replication runs in progress",
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		cacheWrittenBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),
	}
	reg.MustRegister(
		p.generateDuration,
		p.generatedNodes,
		p.replications,
		p.replicateDuration,
		p.layerDuration,
		p.encodedNodes,
		p.activeRuns,
		p.cacheRequests,
		p.cacheWrittenBytes,
	)
	return p
}

// Install registers p for every hook category.
func (p *Prometheus) Install() {
	SetGraphHooks(p)
	SetReplicationHooks(p)
	SetCacheHooks(p)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnGenerateStart(context.Context, int, int) {}

func (p *Prometheus) OnGenerateComplete(_ context.Context, nodes int, d time.Duration, err error) {
	p.generateDuration.WithLabelValues(status(err)).Observe(d.Seconds())
	if err == nil {
		p.generatedNodes.Add(float64(nodes))
	}
}

func (p *Prometheus) OnReplicateStart(context.Context, string, int, int) {
	p.activeRuns.Inc()
}

func (p *Prometheus) OnLayerStart(context.Context, string, int, string) {}

func (p *Prometheus) OnLayerComplete(_ context.Context, _ string, layer, nodes int, d time.Duration) {
	dir := "forward"
	if layer%2 == 1 {
		dir = "reverse"
	}
	p.layerDuration.WithLabelValues(dir).Observe(d.Seconds())
	p.encodedNodes.Add(float64(nodes))
}

func (p *Prometheus) OnReplicateComplete(_ context.Context, _ string, d time.Duration, err error) {
	p.activeRuns.Dec()
	p.replications.WithLabelValues(status(err)).Inc()
	if err == nil {
		p.replicateDuration.Observe(d.Seconds())
	}
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheWrittenBytes.WithLabelValues(keyType).Add(float64(size))
}

var (
	_ GraphHooks       = (*Prometheus)(nil)
	_ ReplicationHooks = (*Prometheus)(nil)
	_ CacheHooks       = (*Prometheus)(nil)
)
