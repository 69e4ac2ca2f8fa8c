// Package render turns ZigZag graphs into pictures.
//
// The [nodelink] subpackage draws the parents of one layer as a Graphviz
// diagram and renders it to SVG in-process. [Convert] produces pdf and png
// from that SVG with the external rsvg-convert tool from librsvg.
//
//	dot := nodelink.ToDOT(g, 1, nodelink.Options{})
//	png, err := nodelink.Render(ctx, dot, "png", 2)
//
// [nodelink]: github.com/matzehuels/zigzag/pkg/render/nodelink
package render
