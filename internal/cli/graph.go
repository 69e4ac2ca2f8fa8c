package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zigzag/pkg/config"
	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
)

// graphFlags select the graph a command works on. Flags left unset keep the
// values of the config file.
type graphFlags struct {
	input           string // graph.json to load instead of generating
	nodes           int
	baseDegree      int
	expansionDegree int
	seed            string // comma-separated seed words
	workers         int
	noCache         bool
}

func (f *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "graph", "g", "", "load the graph from a file written by 'generate'")
	cmd.Flags().IntVarP(&f.nodes, "nodes", "n", 0, "number of nodes")
	cmd.Flags().IntVar(&f.baseDegree, "base-degree", 0, "DRG parents per node")
	cmd.Flags().IntVar(&f.expansionDegree, "expansion-degree", 0, "expander parents per node")
	cmd.Flags().StringVar(&f.seed, "seed", "", "graph seed as 7 comma-separated words")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "generation workers (0 uses every CPU)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the graph cache")
}

// apply overrides cfg with the flags set on cmd.
func (f *graphFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("nodes") {
		cfg.Graph.Nodes = f.nodes
	}
	if flags.Changed("base-degree") {
		cfg.Graph.BaseDegree = f.baseDegree
	}
	if flags.Changed("expansion-degree") {
		cfg.Graph.ExpansionDegree = f.expansionDegree
	}
	if flags.Changed("workers") {
		cfg.Graph.Workers = f.workers
	}
	if flags.Changed("seed") {
		seed, err := parseSeed(f.seed)
		if err != nil {
			return err
		}
		cfg.Graph.Seed = seed
	}
	return nil
}

// parseSeed parses comma-separated seed words.
func parseSeed(s string) ([]uint32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != graph.SeedWords {
		return nil, errors.New(errors.ErrCodeInvalidParams, "seed must have %d words, got %d", graph.SeedWords, len(parts))
	}
	seed := make([]uint32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 0, 32)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParams, err, "seed word %d", i)
		}
		seed[i] = uint32(v)
	}
	return seed, nil
}

// loadGraph returns the graph selected by f and cfg. The boolean reports
// whether it came from a file or the cache instead of being generated.
func (c *CLI) loadGraph(ctx context.Context, f *graphFlags, cfg config.Config) (*graph.Graph, bool, error) {
	if f.input != "" {
		if err := errors.ValidatePath(f.input); err != nil {
			return nil, false, err
		}
		g, err := graph.ReadGraphFile(f.input)
		if err != nil {
			return nil, false, err
		}
		c.Logger.Debug("Loaded graph", "path", f.input, "params", g.Params())
		return g, true, nil
	}

	p, err := cfg.GraphParams()
	if err != nil {
		return nil, false, err
	}

	ch, err := c.newCache(ctx, cfg.Cache, f.noCache)
	if err != nil {
		return nil, false, err
	}
	defer ch.Close()
	store := graph.NewCacheStore(ch, newKeyer(cfg.Cache))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s...", p))
	spinner.Start()

	prog := newProgress(c.Logger)
	g, hit, err := graph.LoadOrGenerate(ctx, store, p, graph.GenerateOptions{
		Workers: cfg.Graph.Workers,
		Logger:  c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Graph generation failed")
		return nil, false, err
	}
	spinner.Stop()

	if hit {
		c.Logger.Debug("Graph cache hit", "key", store.Key(p))
	} else {
		prog.done("Generated graph", "nodes", g.Nodes())
	}
	return g, hit, nil
}

// resolveGraph loads the config, applies f and returns the selected graph.
func (c *CLI) resolveGraph(cmd *cobra.Command, f *graphFlags) (*graph.Graph, bool, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, false, cfg, err
	}
	if err := f.apply(cmd, &cfg); err != nil {
		return nil, false, cfg, err
	}
	g, hit, err := c.loadGraph(cmd.Context(), f, cfg)
	return g, hit, cfg, err
}
