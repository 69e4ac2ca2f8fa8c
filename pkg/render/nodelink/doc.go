// Package nodelink draws the parents of one layer as a node-link diagram.
//
// Nodes become boxes and parent relations arrows from parent to child. DRG
// edges are solid and expander edges dashed; repeated parents are merged
// into one thicker arrow. Odd layers show the reflected DRG and the reversed
// expander, the parents the replication engine uses on that layer.
//
//	dot := nodelink.ToDOT(g, layer, nodelink.Options{Detailed: true})
//	svg, err := nodelink.Render(ctx, dot, "svg", 1)
//
// SVG output comes from [github.com/goccy/go-graphviz], which embeds
// Graphviz as WebAssembly. Layouts past a few hundred nodes get slow.
package nodelink
