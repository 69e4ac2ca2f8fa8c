package graph

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/zigzag/pkg/feistel"
	"github.com/matzehuels/zigzag/pkg/observability"
)

// GenerateOptions tune graph generation. The zero value is ready to use.
type GenerateOptions struct {
	// Workers bounds the number of goroutines sampling parents.
	// Defaults to GOMAXPROCS.
	Workers int

	// Logger receives progress messages. Defaults to log.Default().
	Logger *log.Logger
}

// chunkSize is the number of nodes a worker samples between context checks.
const chunkSize = 1 << 12

// Generate builds the graph for p.
//
// DRG and expander parents of each node depend only on the seed, the Feistel
// masks and the node index, so nodes are sampled concurrently. The reversed
// expander adjacency is aggregated in a single pass once every forward edge
// exists.
func Generate(ctx context.Context, p Params, opts GenerateOptions) (*Graph, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	hooks := observability.Graph()
	hooks.OnGenerateStart(ctx, p.Nodes, p.Degree())
	start := time.Now()

	g := &Graph{
		nodes:           p.Nodes,
		baseDegree:      p.BaseDegree,
		expansionDegree: p.ExpansionDegree,
		seed:            p.Seed,
		bas:             make([][]int, p.Nodes),
		exp:             make([][]int, p.Nodes),
		expReversed:     make([][]int, p.Nodes),
	}

	err := g.sampleParents(ctx, workers)
	if err == nil {
		g.reverseExpander()
	}

	elapsed := time.Since(start)
	hooks.OnGenerateComplete(ctx, p.Nodes, elapsed, err)
	if err != nil {
		return nil, err
	}

	logger.Debug("generated graph",
		"nodes", p.Nodes,
		"base_degree", p.BaseDegree,
		"expansion_degree", p.ExpansionDegree,
		"workers", workers,
		"duration", elapsed.Round(time.Millisecond))
	return g, nil
}

// sampleParents fills bas and exp. Workers pull disjoint chunks of nodes, so
// no two goroutines write the same entry.
func (g *Graph) sampleParents(ctx context.Context, workers int) error {
	fp := feistel.Precompute(feistel.Index(g.nodes) * feistel.Index(g.expansionDegree))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for lo := 0; lo < g.nodes; lo += chunkSize {
		hi := min(lo+chunkSize, g.nodes)
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for node := lo; node < hi; node++ {
				g.bas[node] = bucketParents(g.seed, node, g.baseDegree)
				g.exp[node] = expanderParents(g.nodes, g.expansionDegree, node, fp)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// reverseExpander records, for every expander edge i -> j, the reverse edge
// j -> i. Sources are visited in ascending order, so each reversed list is
// sorted.
func (g *Graph) reverseExpander() {
	for i, parents := range g.exp {
		for _, j := range parents {
			g.expReversed[j] = append(g.expReversed[j], i)
		}
	}
}
