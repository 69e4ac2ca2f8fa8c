// Package pkg provides the core libraries of zigzag, a layered
// proof-of-replication encoder.
//
// # Overview
//
// A sector of 32-byte nodes is encoded over several layers. Each layer
// replaces every node with its value plus a key derived from the node's
// parents in a depth-robust graph (DRG) and an expander graph. Even layers
// use the generated edges, odd layers a reflected DRG and the reversed
// expander, so encoding zigzags across the sector.
//
// # Architecture
//
// The typical data flow:
//
//	Params (nodes, degrees, seed)
//	         ↓
//	    [graph] package (sample DRG + expander, cached via [cache])
//	         ↓
//	    [replicate] package (derive keys, encode layer by layer)
//	         ↓
//	    [nodestore] package (memory, file or BadgerDB sector)
//
// # Quick Start
//
//	p := graph.Params{Nodes: 1 << 16, BaseDegree: 5, ExpansionDegree: 8, Seed: seed}
//	g, _ := graph.Generate(ctx, p, graph.GenerateOptions{})
//
//	sector, _ := nodestore.OpenFile("sector.bin")
//	engine, _ := replicate.New(g, replicate.Options{ReplicaID: id})
//	res, _ := engine.Replicate(ctx, sector)
//
// # Main Packages
//
// ## Core
//
// [graph] - Graph parameters, generation, the per-layer parent view and the
// JSON codec. [feistel] - The keyed permutation behind the expander.
// [fr32] - Mapping between nodes and BLS12-381 scalar field elements.
//
// [replicate] - The encoding engine, including per-node encode and decode.
//
// ## Storage
//
// [nodestore] - Random access sector storage with advisory prefetch.
//
// [cache] - Graph cache backends: file, Redis, MongoDB and a null cache.
//
// ## Surfaces
//
// [config] - TOML configuration. [server] - HTTP parent queries.
// [render] - Graphviz node-link diagrams of a layer.
//
// [observability] - Hooks for generation, replication and cache events, with
// a Prometheus implementation.
//
// [errors] - Structured errors with machine-readable codes.
package pkg
