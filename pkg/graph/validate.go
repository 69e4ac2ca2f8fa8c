package graph

import (
	"slices"

	"github.com/matzehuels/zigzag/pkg/errors"
)

// Validate checks the structural invariants of the graph:
//
//   - every node has exactly m DRG parents
//   - nodes 0 and 1 reference only node 0; every other DRG parent is below
//     its node
//   - every node has at most d expander parents, all below the node
//   - expReversed[j] contains i exactly when j is an expander parent of i
//
// Loading a graph never calls Validate; it exists for tests and the
// "verify" command.
func (g *Graph) Validate() error {
	if err := g.checkShape(); err != nil {
		return err
	}

	reversed := 0
	for node := 0; node < g.nodes; node++ {
		if len(g.bas[node]) != g.baseDegree {
			return errors.New(errors.ErrCodeGraphInvalid, "node %d has %d DRG parents, want %d", node, len(g.bas[node]), g.baseDegree)
		}
		for _, p := range g.bas[node] {
			if (node < 2 && p != 0) || (node >= 2 && (p < 0 || p >= node)) {
				return errors.New(errors.ErrCodeGraphInvalid, "node %d has DRG parent %d", node, p)
			}
		}

		if len(g.exp[node]) > g.expansionDegree {
			return errors.New(errors.ErrCodeGraphInvalid, "node %d has %d expander parents, max %d", node, len(g.exp[node]), g.expansionDegree)
		}
		for _, p := range g.exp[node] {
			if p < 0 || p >= node {
				return errors.New(errors.ErrCodeGraphInvalid, "node %d has expander parent %d", node, p)
			}
			if !slices.Contains(g.expReversed[p], node) {
				return errors.New(errors.ErrCodeGraphInvalid, "reverse edge %d -> %d missing", p, node)
			}
		}
		reversed += len(g.expReversed[node])
	}

	if forward := g.Stats().ExpanderEdges; forward != reversed {
		return errors.New(errors.ErrCodeGraphInvalid, "%d reversed expander edges, want %d", reversed, forward)
	}
	return nil
}
