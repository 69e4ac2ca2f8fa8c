package graph

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"golang.org/x/crypto/chacha20"

	"github.com/matzehuels/zigzag/pkg/feistel"
)

// expanderKeys are the fixed Feistel round keys of the expander graph.
var expanderKeys = []feistel.Index{1, 2, 3, 4}

// blockSize is the ChaCha20 block size in bytes.
const blockSize = 64

// nodeRNG is a ChaCha20 keystream read as a sequence of 32-bit words.
// The key is the graph seed followed by the node index; nonce and block
// counter start at zero.
type nodeRNG struct {
	cipher *chacha20.Cipher
	buf    [blockSize]byte
	pos    int
}

func newNodeRNG(seed Seed, node int) *nodeRNG {
	var key [chacha20.KeySize]byte
	for i, w := range seed {
		binary.LittleEndian.PutUint32(key[4*i:], w)
	}
	binary.LittleEndian.PutUint32(key[4*SeedWords:], uint32(node))

	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		// Key and nonce sizes are fixed above.
		panic(err)
	}
	return &nodeRNG{cipher: c, pos: blockSize}
}

func (r *nodeRNG) uint32() uint32 {
	if r.pos == blockSize {
		clear(r.buf[:])
		r.cipher.XORKeyStream(r.buf[:], r.buf[:])
		r.pos = 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

// uint64 draws two words, high word first.
func (r *nodeRNG) uint64() uint64 {
	hi := uint64(r.uint32())
	lo := uint64(r.uint32())
	return hi<<32 | lo
}

// between returns a uniform value in [low, high]. Draws from the rejection
// zone at the top of the u64 range are discarded so the result is unbiased.
func (r *nodeRNG) between(low, high uint64) uint64 {
	span := high - low + 1
	zone := math.MaxUint64 - math.MaxUint64%span
	for {
		if v := r.uint64(); v < zone {
			return low + v%span
		}
	}
}

// log2Floor returns floor(log2(x)) evaluated at single precision. The input
// and the logarithm are both rounded to float32, so values just below a power
// of two may round up to it; the sampled graph depends on this rounding.
func log2Floor(x uint64) uint64 {
	l := float32(math.Log2(float64(float32(x))))
	return uint64(math.Floor(float64(l)))
}

// bucketParents samples the m DRG parents of node.
//
// Node 0 references itself and node 1 references node 0. Every other node
// draws m back-distances from geometric buckets and maps them onto earlier
// nodes. The result is sorted ascending. A parent above node means the
// sampler is broken and panics.
func bucketParents(seed Seed, node, m int) []int {
	parents := make([]int, m)
	if node < 2 {
		return parents
	}

	rng := newNodeRNG(seed, node)
	base := uint64(node) * uint64(m)
	logi := log2Floor(base)

	for k := range parents {
		// Simulate the edges of the k-th meta node of this node; an edge
		// from a meta node of node j becomes the edge (j, node).
		j := rng.uint64() % logi
		jj := min(base+uint64(k), uint64(1)<<(j+1))
		backDist := rng.between(max(jj>>1, 2), jj)
		out := int((base + uint64(k) - backDist) / uint64(m))

		switch {
		case out == node:
			parents[k] = node - 1
		case out > node:
			panic(fmt.Sprintf("graph: bucket sample for node %d produced parent %d", node, out))
		default:
			parents[k] = out
		}
	}

	slices.Sort(parents)
	return parents
}

// expanderParents computes the expander parents of node from the Feistel
// permutation over [0, nodes*d). Candidates at or above node are dropped, so
// fewer than d parents may be returned.
func expanderParents(nodes, d, node int, p feistel.Precomputed) []int {
	parents := make([]int, 0, d)
	if d == 0 {
		return parents
	}

	domain := feistel.Index(nodes) * feistel.Index(d)
	for i := 0; i < d; i++ {
		index := feistel.Index(node)*feistel.Index(d) + feistel.Index(i)
		parent := int(feistel.InvertPermute(domain, index, expanderKeys, p) / feistel.Index(d))
		if parent < node {
			parents = append(parents, parent)
		}
	}
	return parents
}
