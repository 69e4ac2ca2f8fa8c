// Package replicate encodes a sector layer by layer over a ZigZag graph.
//
// # Encoding
//
// Each layer visits nodes 0 to N-1 in order. For every node the engine
// derives a key from the current values of the node's parents:
//
//	key = SafeElement(BLAKE2s-256(replicaID || parent_0 || ... || parent_{m+d-1}))
//
// and replaces the node's value v by v + key in the BLS12-381 scalar field.
// Parents are taken from [graph.Graph.Parents], so even layers use the
// forward edges and odd layers the reflected DRG and reversed expander edges.
// Padding slots fold the value of node 0 into the digest.
//
// Writes happen in place: each layer consumes the output of the previous one.
// Layers run strictly one after another and nodes within a layer are never
// processed concurrently. The only concurrency is advisory prefetching done
// by the [nodestore.Store].
//
// # Usage
//
//	e, err := replicate.New(g, replicate.Options{Layers: 10, ReplicaID: id})
//	if err != nil {
//	    return err
//	}
//	res, err := e.Replicate(ctx, store)
package replicate
