package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
	"github.com/matzehuels/zigzag/pkg/render"
)

type Options struct {
	// Detailed labels each arrow with its kind and multiplicity.
	Detailed bool
}

// edge is one distinct parent of a node. count is how many parent slots
// hold it.
type edge struct {
	from, to int
	expander bool
	count    int
}

var graphAttrs = []string{
	`rankdir=LR`,
	`bgcolor="transparent"`,
	`ranksep=0.4`,
	`nodesep=0.2`,
	`node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.1,0.05"]`,
}

// ToDOT writes the parents every node has on layer as Graphviz source.
func ToDOT(g *graph.Graph, layer int, opts Options) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	title := fmt.Sprintf("%s, layer %d (%s)", g.Params(), layer, graph.LayerDirection(layer))
	fmt.Fprintf(&b, "  label=%q;\n", title)
	for _, a := range graphAttrs {
		b.WriteString("  " + a + ";\n")
	}

	b.WriteByte('\n')
	for v := 0; v < g.Nodes(); v++ {
		fmt.Fprintf(&b, "  %q [label=\"%d\"];\n", nodeID(v), v)
	}

	b.WriteByte('\n')
	for v := 0; v < g.Nodes(); v++ {
		for _, e := range layerEdges(g, v, layer) {
			fmt.Fprintf(&b, "  %q -> %q [%s];\n", nodeID(e.from), nodeID(e.to), strings.Join(e.attrs(opts.Detailed), ", "))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func nodeID(v int) string { return "n" + strconv.Itoa(v) }

// layerEdges merges the parent slots of node on layer into distinct edges,
// keeping first-seen order with DRG parents ahead of expander parents.
func layerEdges(g *graph.Graph, node, layer int) []edge {
	drg, exp := g.LayerParents(node, layer)
	out := make([]edge, 0, len(drg)+len(exp))
	index := make(map[edge]int, cap(out))
	add := func(p int, expander bool) {
		key := edge{from: p, expander: expander}
		if j, ok := index[key]; ok {
			out[j].count++
			return
		}
		index[key] = len(out)
		out = append(out, edge{from: p, to: node, expander: expander, count: 1})
	}
	for _, p := range drg {
		add(p, false)
	}
	for _, p := range exp {
		add(p, true)
	}
	return out
}

func (e edge) attrs(detailed bool) []string {
	var attrs []string
	kind := "drg"
	if e.expander {
		kind = "exp"
		attrs = append(attrs, "style=dashed", "color=steelblue")
	}
	if e.count > 1 {
		attrs = append(attrs, "penwidth="+strconv.Itoa(min(e.count, 4)))
	}
	if detailed {
		label := kind
		if e.count > 1 {
			label += " x" + strconv.Itoa(e.count)
		}
		attrs = append(attrs, "label="+strconv.Quote(label), "fontsize=10")
	}
	return attrs
}

// Render lays out dot and returns it as svg, pdf or png. Formats other than
// svg go through [render.Convert].
func Render(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	svg, err := renderSVG(ctx, dot)
	if err != nil || format == "svg" {
		return svg, err
	}
	return render.Convert(ctx, svg, format, scale)
}

func renderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "start graphviz")
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse dot")
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "layout")
	}
	return fitViewBox(buf.Bytes()), nil
}

var (
	svgOpenRe = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="[0-9.]+\s+[0-9.]+\s+([0-9.]+)\s+([0-9.]+)"`)
)

// fitViewBox replaces the point-sized root element Graphviz emits with one
// sized in pixels and anchored at the origin, so browsers scale it cleanly.
func fitViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[1]), 64)
	h, _ := strconv.ParseFloat(string(m[2]), 64)
	if w <= 0 || h <= 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgOpenRe.ReplaceAll(svg, []byte(root))
}
