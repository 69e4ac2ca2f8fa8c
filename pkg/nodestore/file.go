package nodestore

import (
	"fmt"
	"os"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
)

// File reads and writes nodes of a sector file in place.
type File struct {
	f     *os.File
	nodes int
}

// CreateFile creates (or truncates) a zeroed sector file of n nodes.
func CreateFile(path string, n int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create sector %s", path)
	}
	if err := f.Truncate(int64(n) * NodeSize); err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "size sector %s", path)
	}
	return &File{f: f, nodes: n}, nil
}

// OpenFile opens an existing sector file for reading and writing.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open sector %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open sector %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "stat sector %s", path)
	}
	n, err := checkSize(info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sector %s: %w", path, err)
	}
	return &File{f: f, nodes: n}, nil
}

// Name returns the path of the sector file.
func (s *File) Name() string { return s.f.Name() }

func (s *File) Len() int { return s.nodes }

func (s *File) ReadNode(i int, dst []byte) error {
	if err := checkIndex(i, s.nodes); err != nil {
		return err
	}
	if err := checkBuf(dst); err != nil {
		return err
	}
	if _, err := s.f.ReadAt(dst[:NodeSize], int64(i)*NodeSize); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "read node %d", i)
	}
	return nil
}

func (s *File) WriteNode(i int, b []byte) error {
	if err := checkIndex(i, s.nodes); err != nil {
		return err
	}
	if err := checkBuf(b); err != nil {
		return err
	}
	if _, err := s.f.WriteAt(b[:NodeSize], int64(i)*NodeSize); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write node %d", i)
	}
	return nil
}

// Prefetch asks the kernel to read node i ahead. Errors are ignored.
func (s *File) Prefetch(i int, _ graph.Direction) {
	if i < 0 || i >= s.nodes {
		return
	}
	adviseWillNeed(s.f, int64(i)*NodeSize, NodeSize)
}

// Sync commits the file to stable storage.
func (s *File) Sync() error { return s.f.Sync() }

// Close closes the sector file.
func (s *File) Close() error { return s.f.Close() }

var _ Store = (*File)(nil)
