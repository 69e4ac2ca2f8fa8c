package cli

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/zigzag/pkg/observability"
	"github.com/matzehuels/zigzag/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		gf      graphFlags
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve parent queries over HTTP",
		Long: `Serve parent queries for one graph over HTTP.

Routes:
  GET /healthz                     liveness
  GET /graph                       parameters and edge counts
  GET /parents/{node}?layer=L      parents of a node on a layer
  GET /dot?layer=L                 node-link diagram of small graphs
  GET /metrics                     Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			observability.NewPrometheus(prometheus.DefaultRegisterer).Install()
			defer observability.Reset()

			g, cached, cfg, err := c.resolveGraph(cmd, &gf)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			printSuccess("Serving %s on %s", g.Params(), addr)
			printStats(g.Stats(), cached)

			srv := server.New(g, server.Options{
				Logger:         c.Logger,
				RequestTimeout: timeout,
			})
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")

	return cmd
}
