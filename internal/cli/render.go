package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
	"github.com/matzehuels/zigzag/pkg/render/nodelink"
)

// Output formats of the render command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// defaultMaxRenderNodes bounds the graphs rendered without --max-nodes.
// Graphviz layouts grow superlinearly with the edge count.
const defaultMaxRenderNodes = 1 << 10

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path
	formats  []string // dot, svg, pdf, png
	layer    int
	detailed bool
	scale    float64 // PNG scale factor
	maxNodes int
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		gf         graphFlags
		formatsStr string
	)
	opts := renderOpts{scale: 2, maxNodes: defaultMaxRenderNodes}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the parents of a layer as a node-link diagram",
		Long: `Render the parents of a layer as a node-link diagram.

DRG edges are drawn solid, expander edges dashed. Edges a node references
more than once are drawn once; --detailed labels them with the count.

PDF and PNG output requires librsvg: brew install librsvg (macOS),
apt install librsvg2-bin (Linux).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			if opts.layer < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "layer must not be negative, got %d", opts.layer)
			}

			g, _, _, err := c.resolveGraph(cmd, &gf)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), g, opts)
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().IntVarP(&opts.layer, "layer", "l", 0, "layer whose parents are drawn")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label edges with their kind and count")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "refuse to render larger graphs")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, g *graph.Graph, opts renderOpts) error {
	if g.Nodes() > opts.maxNodes {
		return errors.New(errors.ErrCodeUnsupported, "graph has %d nodes, render draws at most %d (see --max-nodes)", g.Nodes(), opts.maxNodes)
	}

	dot := nodelink.ToDOT(g, opts.layer, nodelink.Options{Detailed: opts.detailed})
	base := outputBase(opts.output, opts.formats, opts.layer)

	prog := newProgress(c.Logger)
	var paths []string
	for _, format := range opts.formats {
		data, err := renderFormat(ctx, dot, format, opts.scale)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	prog.done("Rendered layer", "layer", opts.layer, "files", len(paths))

	printSuccess("Rendered layer %d (%s)", opts.layer, graph.LayerDirection(opts.layer))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

func renderFormat(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG, formatPDF, formatPNG:
		return nodelink.Render(ctx, dot, format, scale)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown format %q", format)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{formatSVG}, nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case formatDOT, formatSVG, formatPDF, formatPNG:
			formats = append(formats, f)
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot, svg, pdf or png)", f)
		}
	}
	return formats, nil
}

// outputBase returns the path outputs are written to, without extension.
func outputBase(output string, formats []string, layer int) string {
	if output == "" {
		return fmt.Sprintf("layer%d", layer)
	}
	if len(formats) > 1 {
		for _, f := range formats {
			if trimmed, ok := strings.CutSuffix(output, "."+f); ok {
				return trimmed
			}
		}
	}
	return output
}
