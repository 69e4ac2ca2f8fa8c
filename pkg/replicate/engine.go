package replicate

import (
	"context"
	"hash"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/google/uuid"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/fr32"
	"github.com/matzehuels/zigzag/pkg/graph"
	"github.com/matzehuels/zigzag/pkg/nodestore"
)

// checkInterval is the number of nodes encoded between context checks and
// progress reports.
const checkInterval = 1 << 12

// prefetchWindow returns how many nodes ahead of the cursor are prefetched.
func prefetchWindow(dir graph.Direction) int {
	if dir == graph.Reverse {
		return 2
	}
	return 4
}

// Engine encodes sectors over one graph. It is safe for concurrent use on
// different stores.
type Engine struct {
	g    *graph.Graph
	opts Options
}

// LayerStats records the timings of one layer.
type LayerStats struct {
	Layer     int             `json:"layer"`
	Direction graph.Direction `json:"direction"`
	Duration  time.Duration   `json:"duration"`
	KeyTime   time.Duration   `json:"key_time"`
	WriteTime time.Duration   `json:"write_time"`
}

// Result summarizes a replication run.
type Result struct {
	RunID    string        `json:"run_id"`
	Nodes    int           `json:"nodes"`
	Layers   []LayerStats  `json:"layers"`
	Duration time.Duration `json:"duration"`
}

// New creates an engine for g.
func New(g *graph.Graph, opts Options) (*Engine, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph is required")
	}
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Engine{g: g, opts: opts}, nil
}

// Graph returns the graph the engine encodes over.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Layers returns the number of layers a run encodes.
func (e *Engine) Layers() int { return e.opts.Layers }

// Replicate encodes every layer of s in place.
//
// A failed or canceled run leaves s partially encoded. There is no resume:
// the sector has to be replicated again from its original data.
func (e *Engine) Replicate(ctx context.Context, s nodestore.Store) (res *Result, err error) {
	if s.Len() != e.g.Nodes() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "store holds %d nodes, graph has %d", s.Len(), e.g.Nodes())
	}

	runID := uuid.NewString()
	logger := e.opts.Logger.With("run", runID)
	hooks := e.opts.Hooks

	hooks.OnReplicateStart(ctx, runID, e.g.Nodes(), e.opts.Layers)
	start := time.Now()
	defer func() {
		hooks.OnReplicateComplete(ctx, runID, time.Since(start), err)
	}()

	res = &Result{RunID: runID, Nodes: e.g.Nodes()}
	w := e.newWorker()
	for layer := 0; layer < e.opts.Layers; layer++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := graph.LayerDirection(layer)
		hooks.OnLayerStart(ctx, runID, layer, dir.String())

		stats, err := w.layer(ctx, s, layer)
		if err != nil {
			logger.Error("layer failed", "layer", layer, "err", err)
			return nil, err
		}
		hooks.OnLayerComplete(ctx, runID, layer, e.g.Nodes(), stats.Duration)
		logger.Debug("replicated layer",
			"layer", layer,
			"direction", dir,
			"duration", stats.Duration.Round(time.Microsecond),
			"key", stats.KeyTime.Round(time.Microsecond),
			"write", stats.WriteTime.Round(time.Microsecond))
		res.Layers = append(res.Layers, stats)
	}
	res.Duration = time.Since(start)

	logger.Info("replicated sector",
		"nodes", e.g.Nodes(),
		"layers", e.opts.Layers,
		"duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

// Key returns the key of node on layer, computed from the parent values
// currently held by s.
func (e *Engine) Key(s nodestore.Store, node, layer int) (fr.Element, error) {
	if err := errors.ValidateNode(node, e.g.Nodes()); err != nil {
		return fr.Element{}, err
	}
	return e.newWorker().key(s, node, layer)
}

// EncodeNode performs one encoding step: node's value becomes value + key.
func (e *Engine) EncodeNode(s nodestore.Store, node, layer int) error {
	if err := errors.ValidateNode(node, e.g.Nodes()); err != nil {
		return err
	}
	return e.newWorker().apply(s, node, layer, fr32.Encode)
}

// DecodeNode inverts [Engine.EncodeNode]: node's value becomes value - key.
//
// The result is the original value only if the parents in s still hold the
// values they had when node was encoded. A node that is its own parent
// (node 0 on even layers) cannot be decoded once it has been overwritten.
func (e *Engine) DecodeNode(s nodestore.Store, node, layer int) error {
	if err := errors.ValidateNode(node, e.g.Nodes()); err != nil {
		return err
	}
	return e.newWorker().apply(s, node, layer, fr32.Decode)
}

// worker holds the buffers reused across the nodes of a run.
type worker struct {
	g         *graph.Graph
	replicaID ReplicaID
	hasher    hash.Hash
	parents   []int
	buf       []byte
	digest    []byte
	layers    int
	report    func(Progress)
}

func (e *Engine) newWorker() *worker {
	return &worker{
		g:         e.g,
		replicaID: e.opts.ReplicaID,
		hasher:    e.opts.Hasher(),
		parents:   make([]int, e.g.Degree()),
		buf:       make([]byte, fr32.NodeSize),
		digest:    make([]byte, 0, fr32.NodeSize),
		layers:    e.opts.Layers,
		report:    e.opts.Progress,
	}
}

func (w *worker) progress(layer, node int) {
	if w.report != nil {
		w.report(Progress{Layer: layer, Layers: w.layers, Node: node, Nodes: w.g.Nodes()})
	}
}

// key folds the parents of node in position order: the DRG half first, then
// the expander half, padding included.
func (w *worker) key(s nodestore.Store, node, layer int) (fr.Element, error) {
	w.hasher.Reset()
	w.hasher.Write(w.replicaID[:])

	w.parents = w.g.Parents(node, layer, w.parents)
	for _, p := range w.parents {
		if err := s.ReadNode(p, w.buf); err != nil {
			return fr.Element{}, err
		}
		w.hasher.Write(w.buf)
	}

	w.digest = w.hasher.Sum(w.digest[:0])
	return fr32.SafeElement(w.digest), nil
}

// value reads node and decodes it as a field element.
func (w *worker) value(s nodestore.Store, node int) (fr.Element, error) {
	if err := s.ReadNode(node, w.buf); err != nil {
		return fr.Element{}, err
	}
	v, err := fr32.Element(w.buf)
	if err != nil {
		return fr.Element{}, errors.Wrap(errors.ErrCodeStoreCorrupt, err, "node %d", node)
	}
	return v, nil
}

func (w *worker) apply(s nodestore.Store, node, layer int, op func(v, k fr.Element) fr.Element) error {
	k, err := w.key(s, node, layer)
	if err != nil {
		return err
	}
	v, err := w.value(s, node)
	if err != nil {
		return err
	}
	fr32.PutElement(w.buf, op(v, k))
	return s.WriteNode(node, w.buf)
}

// layer encodes every node of s on layer. The same routine serves both
// directions: only the parent mapping and the prefetch distance differ.
func (w *worker) layer(ctx context.Context, s nodestore.Store, layer int) (LayerStats, error) {
	dir := graph.LayerDirection(layer)
	stats := LayerStats{Layer: layer, Direction: dir}
	start := time.Now()

	n := w.g.Nodes()
	window := prefetchWindow(dir)
	for i := 0; i < window && i < n; i++ {
		s.Prefetch(i, dir)
	}

	for node := 0; node < n; node++ {
		if node%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			w.progress(layer, node)
		}
		if node+window < n {
			s.Prefetch(node+window, dir)
		}

		t := time.Now()
		k, err := w.key(s, node, layer)
		if err != nil {
			return stats, err
		}
		stats.KeyTime += time.Since(t)

		v, err := w.value(s, node)
		if err != nil {
			return stats, err
		}
		fr32.PutElement(w.buf, fr32.Encode(v, k))

		t = time.Now()
		if err := s.WriteNode(node, w.buf); err != nil {
			return stats, err
		}
		stats.WriteTime += time.Since(t)
	}
	w.progress(layer, n)

	stats.Duration = time.Since(start)
	return stats, nil
}
