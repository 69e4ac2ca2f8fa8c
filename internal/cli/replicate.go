package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zigzag/pkg/config"
	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
	"github.com/matzehuels/zigzag/pkg/nodestore"
	"github.com/matzehuels/zigzag/pkg/replicate"
)

// replicateOpts holds the command-line flags for the replicate command.
type replicateOpts struct {
	output    string // encoded sector path, empty encodes in place
	layers    int
	replicaID string
	store     string // file, memory or badger
	badgerDir string
	tui       bool
}

// replicateCommand creates the replicate command.
func (c *CLI) replicateCommand() *cobra.Command {
	var (
		gf   graphFlags
		opts replicateOpts
	)

	cmd := &cobra.Command{
		Use:   "replicate SECTOR",
		Short: "Encode a sector layer by layer",
		Long: `Encode a sector layer by layer.

The sector is a file of 32-byte nodes, each a canonical little-endian element
of the BLS12-381 scalar field. Unless --nodes or --graph is given, the graph
is sized to the sector.

The sector is encoded in place unless --output names a copy to encode. With
--store file a failed or interrupted run leaves the target partially
encoded. The memory and badger stores work on a copy and write it back only
after every layer succeeds, so a failed run leaves the target untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := gf.apply(cmd, &cfg); err != nil {
				return err
			}
			opts.applyConfig(cmd, &cfg)
			return c.runReplicate(cmd.Context(), cmd, args[0], &gf, opts, cfg)
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the encoded sector here instead of in place")
	cmd.Flags().IntVar(&opts.layers, "layers", 0, "number of layers (default from config)")
	cmd.Flags().StringVar(&opts.replicaID, "replica-id", "", "hex replica identifier (32 bytes)")
	cmd.Flags().StringVar(&opts.store, "store", "", "node store: file, memory, badger (default from config)")
	cmd.Flags().StringVar(&opts.badgerDir, "badger-dir", "", "badger database directory (default in-memory)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show an interactive progress view")

	return cmd
}

// applyConfig merges the flags set on cmd into cfg.
func (o *replicateOpts) applyConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("layers") {
		cfg.Replication.Layers = o.layers
	}
	if flags.Changed("replica-id") {
		cfg.Replication.ReplicaID = o.replicaID
	}
	if flags.Changed("store") {
		cfg.Store.Backend = o.store
	}
	if flags.Changed("badger-dir") {
		cfg.Store.BadgerDir = o.badgerDir
	}
}

func (c *CLI) runReplicate(ctx context.Context, cmd *cobra.Command, input string, gf *graphFlags, opts replicateOpts, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	replicaID, err := cfg.ReplicaID()
	if err != nil {
		return err
	}

	target, err := prepareTarget(input, opts.output)
	if err != nil {
		return err
	}
	sector, err := nodestore.OpenFile(target)
	if err != nil {
		return err
	}
	defer sector.Close()

	if gf.input == "" && !cmd.Flags().Changed("nodes") {
		cfg.Graph.Nodes = sector.Len()
	}
	g, _, err := c.loadGraph(ctx, gf, cfg)
	if err != nil {
		return err
	}

	store, finish, err := c.openStore(cfg.Store, sector)
	if err != nil {
		return err
	}

	engOpts := replicate.Options{
		Layers:    cfg.Replication.Layers,
		ReplicaID: replicaID,
		Logger:    c.Logger,
	}

	var res *replicate.Result
	if opts.tui {
		engOpts.Logger = nil
		res, err = runReplicateTUI(ctx, g, store, engOpts)
	} else {
		res, err = c.replicateWithSpinner(ctx, g, store, engOpts)
	}
	if err != nil {
		finish(false)
		return err
	}
	if err := finish(true); err != nil {
		return err
	}
	if err := sector.Sync(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "sync %s", target)
	}

	printSuccess("Replicated %d nodes over %d layers", res.Nodes, len(res.Layers))
	printDetail("run %s · %s", res.RunID, res.Duration)
	fmt.Println(layerTable(res.Layers))
	printFile(target)
	return nil
}

func (c *CLI) replicateWithSpinner(ctx context.Context, g *graph.Graph, store nodestore.Store, opts replicate.Options) (*replicate.Result, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Replicating %d nodes...", g.Nodes()))
	opts.Progress = func(p replicate.Progress) {
		spinner.SetMessage("Replicating layer %d/%d (node %d/%d)...", p.Layer+1, p.Layers, p.Node, p.Nodes)
	}
	engine, err := replicate.New(g, opts)
	if err != nil {
		return nil, err
	}
	spinner.Start()
	res, err := engine.Replicate(ctx, store)
	if err != nil {
		spinner.StopWithError("Replication failed")
		return nil, err
	}
	spinner.Stop()
	return res, nil
}

// prepareTarget returns the file to encode, copying input to output first
// when output is set.
func prepareTarget(input, output string) (string, error) {
	if err := errors.ValidatePath(input); err != nil {
		return "", err
	}
	if output == "" || output == input {
		return input, nil
	}
	if err := errors.ValidatePath(output); err != nil {
		return "", err
	}

	src, err := os.Open(input)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "sector %s", input)
		}
		return "", errors.Wrap(errors.ErrCodeStore, err, "open %s", input)
	}
	defer src.Close()

	dst, err := os.Create(output)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "create %s", output)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", errors.Wrap(errors.ErrCodeStore, err, "copy %s", input)
	}
	if err := dst.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "close %s", output)
	}
	return output, nil
}

// openStore returns the store replication runs against. Stores other than
// the sector file are loaded from it, and finish writes them back when the
// run succeeded.
func (c *CLI) openStore(cfg config.StoreConfig, sector *nodestore.File) (nodestore.Store, func(ok bool) error, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		mem := nodestore.NewMemory(sector.Len())
		if err := nodestore.Copy(mem, sector); err != nil {
			return nil, nil, err
		}
		return mem, func(ok bool) error {
			if !ok {
				return nil
			}
			return nodestore.Copy(sector, mem)
		}, nil

	case config.StoreBadger:
		db, err := nodestore.OpenBadger(nodestore.BadgerConfig{
			Path:       cfg.BadgerDir,
			InMemory:   cfg.BadgerDir == "",
			SyncWrites: cfg.SyncWrites,
			Logger:     c.Logger,
		}, sector.Len())
		if err != nil {
			return nil, nil, err
		}
		if err := nodestore.Copy(db, sector); err != nil {
			db.Close()
			return nil, nil, err
		}
		c.Logger.Debug("Loaded sector into badger", "nodes", sector.Len(), "dir", cfg.BadgerDir)
		return db, func(ok bool) error {
			defer db.Close()
			if !ok {
				return nil
			}
			return nodestore.Copy(sector, db)
		}, nil

	default:
		return sector, func(bool) error { return nil }, nil
	}
}
