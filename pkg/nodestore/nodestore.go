// Package nodestore holds the sector being replicated as a sequence of
// fixed-size nodes.
//
// The replication engine reads parents and writes encoded nodes through the
// [Store] interface. Prefetch is advisory: a store that ignores it stays
// correct, only slower.
//
// Implementations:
//   - [Memory]: a byte slice
//   - [File]: a sector file, prefetched with posix_fadvise on Linux
//   - [Badger]: nodes as keys of a BadgerDB instance
package nodestore

import (
	"fmt"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/fr32"
	"github.com/matzehuels/zigzag/pkg/graph"
)

// NodeSize is the size in bytes of one node.
const NodeSize = fr32.NodeSize

// Store is random access storage for the nodes of one sector.
type Store interface {
	// Len returns the number of nodes.
	Len() int

	// ReadNode copies node i into dst, which must hold NodeSize bytes.
	ReadNode(i int, dst []byte) error

	// WriteNode overwrites node i with the first NodeSize bytes of b.
	WriteNode(i int, b []byte) error

	// Prefetch hints that node i will be read soon. It must not block.
	Prefetch(i int, dir graph.Direction)
}

// Copy copies every node of src into dst. Both stores must have the same
// length.
func Copy(dst, src Store) error {
	if dst.Len() != src.Len() {
		return errors.New(errors.ErrCodeInvalidInput, "copy %d nodes into a store of %d", src.Len(), dst.Len())
	}
	buf := make([]byte, NodeSize)
	for i := 0; i < src.Len(); i++ {
		if err := src.ReadNode(i, buf); err != nil {
			return err
		}
		if err := dst.WriteNode(i, buf); err != nil {
			return err
		}
	}
	return nil
}

func checkIndex(i, n int) error {
	return errors.ValidateNode(i, n)
}

func checkSize(size int64) (int, error) {
	if size%NodeSize != 0 {
		return 0, errors.New(errors.ErrCodeStoreCorrupt, "size %d is not a multiple of %d", size, NodeSize)
	}
	return int(size / NodeSize), nil
}

func checkBuf(b []byte) error {
	if len(b) < NodeSize {
		return fmt.Errorf("node buffer holds %d bytes, want %d", len(b), NodeSize)
	}
	return nil
}
