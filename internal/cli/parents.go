package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
)

// parentsOutput is the --json form of the parents command.
type parentsOutput struct {
	Node      int             `json:"node"`
	Layer     int             `json:"layer"`
	Direction graph.Direction `json:"direction"`
	Parents   []int           `json:"parents"`
	DRG       []int           `json:"drg"`
	Expander  []int           `json:"expander"`
}

// parentsCommand creates the parents command.
func (c *CLI) parentsCommand() *cobra.Command {
	var (
		gf     graphFlags
		layer  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "parents NODE",
		Short: "Print the parents of a node on a layer",
		Long: `Print the parents of a node as the encoder sees them on a layer.

The fixed-width list pads missing DRG parents with node 0 on even layers and
node N-1 on odd layers. The DRG and expander lists are unpadded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidNode, err, "node %q", args[0])
			}
			if layer < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "layer must not be negative, got %d", layer)
			}

			g, _, _, err := c.resolveGraph(cmd, &gf)
			if err != nil {
				return err
			}
			if err := errors.ValidateNode(node, g.Nodes()); err != nil {
				return err
			}

			drg, exp := g.LayerParents(node, layer)
			out := parentsOutput{
				Node:      node,
				Layer:     layer,
				Direction: graph.LayerDirection(layer),
				Parents:   g.Parents(node, layer, nil),
				DRG:       drg,
				Expander:  exp,
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Println(StyleTitle.Render(fmt.Sprintf("Node %d, layer %d (%s)", node, layer, out.Direction)))
			printKeyValue("parents", fmt.Sprint(out.Parents))
			printKeyValue("drg", fmt.Sprint(out.DRG))
			printKeyValue("expander", fmt.Sprint(out.Expander))
			return nil
		},
	}

	gf.register(cmd)
	cmd.Flags().IntVarP(&layer, "layer", "l", 0, "layer index")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}
