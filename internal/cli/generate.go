package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		gf     graphFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the DRG and expander graph",
		Long: `Generate the DRG and expander graph for the configured parameters.

Generated graphs are kept in the graph cache, so later commands with the same
parameters skip generation. Use --output to also write the graph as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, cached, _, err := c.resolveGraph(cmd, &gf)
			if err != nil {
				return err
			}

			printSuccess("Graph ready")
			printStats(g.Stats(), cached)

			if output == "" {
				return nil
			}
			if err := errors.ValidatePath(output); err != nil {
				return err
			}
			if err := graph.WriteGraphFile(g, output); err != nil {
				return fmt.Errorf("write graph: %w", err)
			}
			printFile(output)
			printNextStep("Inspect", fmt.Sprintf("%s parents 42 --graph %s", appName, output))
			return nil
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph to a JSON file")

	return cmd
}
