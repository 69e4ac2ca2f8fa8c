package graph

// Graph holds the parameters and the cached adjacency of a ZigZag graph.
//
// bas[i] holds the sorted DRG parents of node i, exp[i] its forward expander
// parents and expReversed[i] the nodes that cite i as an expander parent.
//
// The zero value is not usable: use [Generate], [New] or one of the decoding
// functions. A Graph is never mutated after construction and is safe for
// concurrent use.
type Graph struct {
	nodes           int
	baseDegree      int
	expansionDegree int
	seed            Seed

	bas         [][]int
	exp         [][]int
	expReversed [][]int
}

// New assembles a graph from precomputed adjacency. It checks that every
// list has one entry per node but does not check the sampling invariants;
// call [Graph.Validate] for that.
func New(p Params, bas, exp, expReversed [][]int) (*Graph, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g := &Graph{
		nodes:           p.Nodes,
		baseDegree:      p.BaseDegree,
		expansionDegree: p.ExpansionDegree,
		seed:            p.Seed,
		bas:             bas,
		exp:             exp,
		expReversed:     expReversed,
	}
	if err := g.checkShape(); err != nil {
		return nil, err
	}
	return g, nil
}

// Nodes returns the number of nodes N.
func (g *Graph) Nodes() int { return g.nodes }

// BaseDegree returns the number of DRG parents per node (m).
func (g *Graph) BaseDegree() int { return g.baseDegree }

// ExpansionDegree returns the number of expander parent slots per node (d).
func (g *Graph) ExpansionDegree() int { return g.expansionDegree }

// Degree returns m+d, the width of every parent vector.
func (g *Graph) Degree() int { return g.baseDegree + g.expansionDegree }

// Seed returns the DRG sampler seed.
func (g *Graph) Seed() Seed { return g.seed }

// Params returns the parameters the graph was generated from.
func (g *Graph) Params() Params {
	return Params{
		Nodes:           g.nodes,
		BaseDegree:      g.baseDegree,
		ExpansionDegree: g.expansionDegree,
		Seed:            g.seed,
	}
}

// DRGParents returns the generated DRG parents of node. The returned slice
// must not be modified.
func (g *Graph) DRGParents(node int) []int { return g.bas[node] }

// ExpanderParents returns the forward expander parents of node. It may hold
// fewer than [Graph.ExpansionDegree] entries. The returned slice must not be
// modified.
func (g *Graph) ExpanderParents(node int) []int { return g.exp[node] }

// ReversedExpanderParents returns the nodes citing node as an expander
// parent, in ascending order. The returned slice must not be modified.
func (g *Graph) ReversedExpanderParents(node int) []int { return g.expReversed[node] }

// Stats counts the edges of each family.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes:           g.nodes,
		BaseDegree:      g.baseDegree,
		ExpansionDegree: g.expansionDegree,
	}
	for i := 0; i < g.nodes; i++ {
		s.DRGEdges += len(g.bas[i])
		s.ExpanderEdges += len(g.exp[i])
		s.ReversedEdges += len(g.expReversed[i])
	}
	return s
}
