package errors

import (
	"encoding/hex"
	"strings"
	"unicode"
)

// MaxNodes bounds the node count accepted for a graph. Node indices are fed to
// the bucket sampler as 32-bit words, so larger graphs cannot be sampled.
const MaxNodes = 1 << 32

// MaxDegree bounds both the base and the expansion degree. Every node carries
// that many parent slots, so degrees are small in practice.
const MaxDegree = 1 << 10

// MaxExpanderDomain is the largest nodes*expansionDegree the expander
// permutation can cover: 4^31, the widest power-of-four domain whose masks
// fit in 64 bits.
const MaxExpanderDomain = 1 << 62

// ValidateGraphParams validates the parameters a graph is generated from.
//
// The rules are:
//   - at least two nodes (nodes 0 and 1 are special-cased by the sampler)
//   - at most [MaxNodes] nodes
//   - a base degree in [1, MaxDegree]
//   - an expansion degree in [0, MaxDegree]
//   - nodes*expansionDegree at most [MaxExpanderDomain]
func ValidateGraphParams(nodes, baseDegree, expansionDegree int) error {
	if nodes < 2 {
		return New(ErrCodeInvalidParams, "graph needs at least 2 nodes, got %d", nodes)
	}
	if uint64(nodes) > MaxNodes {
		return New(ErrCodeInvalidParams, "graph too large: %d nodes (max %d)", nodes, uint64(MaxNodes))
	}
	if baseDegree < 1 {
		return New(ErrCodeInvalidParams, "base degree must be positive, got %d", baseDegree)
	}
	if baseDegree > MaxDegree {
		return New(ErrCodeInvalidParams, "base degree %d exceeds %d", baseDegree, MaxDegree)
	}
	if expansionDegree < 0 {
		return New(ErrCodeInvalidParams, "expansion degree must not be negative, got %d", expansionDegree)
	}
	if expansionDegree > MaxDegree {
		return New(ErrCodeInvalidParams, "expansion degree %d exceeds %d", expansionDegree, MaxDegree)
	}
	if uint64(nodes)*uint64(expansionDegree) > MaxExpanderDomain {
		return New(ErrCodeInvalidParams, "expander domain %d*%d exceeds %d", nodes, expansionDegree, uint64(MaxExpanderDomain))
	}
	return nil
}

// ValidateNode checks that node addresses a node of a graph with n nodes.
func ValidateNode(node, n int) error {
	if node < 0 || node >= n {
		return New(ErrCodeInvalidNode, "node %d out of range [0, %d)", node, n)
	}
	return nil
}

// ParseReplicaID decodes a hex replica identifier of exactly size bytes.
// A leading "0x" is accepted.
func ParseReplicaID(s string, size int) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, New(ErrCodeInvalidReplicaID, "replica id cannot be empty")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, Wrap(ErrCodeInvalidReplicaID, err, "replica id is not hex")
	}
	if len(b) != size {
		return nil, New(ErrCodeInvalidReplicaID, "replica id must be %d bytes, got %d", size, len(b))
	}
	return b, nil
}

// ValidatePath validates a local file path given on the command line or in a
// config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
