// Package graph builds and serves the ZigZag parent graph used to encode a
// sector.
//
// # Overview
//
// The graph is a fixed, deterministic DAG over node indices 0..N-1. Every
// node has two groups of parents:
//
//   - m DRG parents, produced by bucket sampling from a seeded ChaCha20
//     stream (a Depth-Robust Graph)
//   - up to d expander parents, produced by inverting a Feistel permutation
//     over [0, N*d)
//
// Both groups only point backwards: every parent index of node i is smaller
// than i (nodes 0 and 1 point at node 0). Reverse expander edges are
// precomputed so odd layers can walk the expander in the opposite direction.
//
// # ZigZag Layers
//
// [Graph.Parents] returns a fixed-width vector of m+d indices for a node on a
// layer. Even layers use the forward edges as generated. Odd layers reflect
// the DRG (node n uses the parents of N-1-n, each mapped to N-1-p) and use the
// reversed expander edges. Each half is padded with node 0 up to its width.
//
// # Basic Usage
//
//	p := graph.Params{Nodes: 1 << 20, BaseDegree: 5, ExpansionDegree: 8, Seed: seed}
//	g, err := graph.Generate(ctx, p, graph.GenerateOptions{})
//	if err != nil {
//	    return err
//	}
//	buf := make([]int, g.Degree())
//	parents := g.Parents(node, layer, buf)
//
// # Persistence
//
// Generation is expensive for large N, so graphs are persisted verbatim
// through a [Store]. [CacheStore] keeps the JSON form ([MarshalGraph]) in any
// [cache.Cache] backend. Loading never re-runs or re-checks the samplers;
// use [Graph.Validate] to check invariants explicitly.
//
// # Concurrency
//
// Generation samples nodes in parallel. A generated or loaded [Graph] is
// immutable and safe for concurrent readers without locking.
package graph
