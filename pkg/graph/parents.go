package graph

// Parents returns the parent vector of node on layer, written into dst when
// it has room for [Graph.Degree] entries.
//
// The vector always holds exactly m+d entries: the DRG half first, then the
// expander half. On even layers the halves are the forward DRG and expander
// parents. On odd layers the DRG half is the reflection of the parents of
// N-1-node (each p mapped to N-1-p) and the expander half is the reversed
// expander adjacency. Unfilled slots of either half hold node 0.
func (g *Graph) Parents(node, layer int, dst []int) []int {
	deg := g.Degree()
	if cap(dst) < deg {
		dst = make([]int, deg)
	}
	dst = dst[:deg]

	base := dst[:g.baseDegree]
	expander := dst[g.baseDegree:]

	var filled int
	if LayerDirection(layer) == Forward {
		filled = copy(base, g.bas[node])
	} else {
		last := g.nodes - 1
		mirrored := g.bas[last-node]
		filled = min(len(mirrored), len(base))
		for i, p := range mirrored[:filled] {
			base[i] = last - p
		}
	}
	clear(base[filled:])

	if LayerDirection(layer) == Forward {
		filled = copy(expander, g.exp[node])
	} else {
		filled = copy(expander, g.expReversed[node])
	}
	clear(expander[filled:])

	return dst
}

// ParentsIter walks the parents of every node of one layer in node order,
// reusing a single buffer.
type ParentsIter struct {
	g     *Graph
	layer int
	node  int
	buf   []int
}

// Iter returns an iterator over the parent vectors of layer.
func (g *Graph) Iter(layer int) *ParentsIter {
	return &ParentsIter{g: g, layer: layer, node: -1, buf: make([]int, g.Degree())}
}

// Next advances to the next node and reports whether one exists.
func (it *ParentsIter) Next() bool {
	if it.node+1 >= it.g.nodes {
		return false
	}
	it.node++
	it.buf = it.g.Parents(it.node, it.layer, it.buf)
	return true
}

// Node returns the current node index.
func (it *ParentsIter) Node() int { return it.node }

// Parents returns the parent vector of the current node. It is overwritten by
// the next call to Next.
func (it *ParentsIter) Parents() []int { return it.buf }

// LayerParents returns the parents of node on layer without padding, split
// into the DRG and the expander half. The slices are freshly allocated.
func (g *Graph) LayerParents(node, layer int) (drg, expander []int) {
	if LayerDirection(layer) == Forward {
		drg = append([]int(nil), g.bas[node]...)
		expander = append([]int(nil), g.exp[node]...)
		return drg, expander
	}

	last := g.nodes - 1
	mirrored := g.bas[last-node]
	drg = make([]int, len(mirrored))
	for i, p := range mirrored {
		drg[i] = last - p
	}
	expander = append([]int(nil), g.expReversed[node]...)
	return drg, expander
}
