package cli

import (
	"github.com/spf13/cobra"
)

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	var gf graphFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a graph against its structural invariants",
		Long: `Check a graph against its structural invariants.

Every edge must point to a lower node and the reversed expander must mirror
the forward one. Use --graph to check a file written by 'generate'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, cached, _, err := c.resolveGraph(cmd, &gf)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Verifying graph...")
			spinner.Start()
			prog := newProgress(c.Logger)
			if err := g.Validate(); err != nil {
				spinner.StopWithError("Graph is invalid")
				return err
			}
			spinner.Stop()
			prog.done("Verified graph", "nodes", g.Nodes())

			printSuccess("Graph is valid")
			printParams(g.Params())
			printStats(g.Stats(), cached)
			return nil
		},
	}

	gf.register(cmd)

	return cmd
}
