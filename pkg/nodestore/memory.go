package nodestore

import (
	"github.com/matzehuels/zigzag/pkg/graph"
)

// Memory keeps the sector in a byte slice.
type Memory struct {
	data []byte
}

// NewMemory returns a zeroed sector of n nodes.
func NewMemory(n int) *Memory {
	return &Memory{data: make([]byte, n*NodeSize)}
}

// MemoryFrom wraps data without copying. Its length must be a multiple of
// NodeSize.
func MemoryFrom(data []byte) (*Memory, error) {
	if _, err := checkSize(int64(len(data))); err != nil {
		return nil, err
	}
	return &Memory{data: data}, nil
}

// Bytes returns the sector. It aliases the store.
func (m *Memory) Bytes() []byte { return m.data }

func (m *Memory) Len() int { return len(m.data) / NodeSize }

func (m *Memory) ReadNode(i int, dst []byte) error {
	if err := checkIndex(i, m.Len()); err != nil {
		return err
	}
	if err := checkBuf(dst); err != nil {
		return err
	}
	copy(dst, m.data[i*NodeSize:(i+1)*NodeSize])
	return nil
}

func (m *Memory) WriteNode(i int, b []byte) error {
	if err := checkIndex(i, m.Len()); err != nil {
		return err
	}
	if err := checkBuf(b); err != nil {
		return err
	}
	copy(m.data[i*NodeSize:(i+1)*NodeSize], b)
	return nil
}

// Prefetch does nothing: every node is already resident.
func (m *Memory) Prefetch(int, graph.Direction) {}

var _ Store = (*Memory)(nil)
