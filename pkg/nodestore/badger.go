package nodestore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
)

// BadgerConfig holds configuration for a BadgerDB-backed store.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory keeps the database in memory. Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's own log lines. If nil, they are discarded.
	Logger *log.Logger
}

// prefetchQueue bounds the pending prefetch requests. Requests beyond it are
// dropped.
const prefetchQueue = 16

// metaNodes is the key holding the node count. Node keys are 8 bytes long,
// so it cannot collide with them.
var metaNodes = []byte("meta:nodes")

// Badger stores each node under its big-endian index.
//
// Prefetched nodes are read by a background goroutine into a small warm set
// that ReadNode consumes. A write to a node evicts it from the warm set.
type Badger struct {
	db    *badger.DB
	nodes int

	mu   sync.Mutex
	warm map[int][]byte

	queue chan int
	done  chan struct{}
	wg    sync.WaitGroup
}

// badgerLogger adapts a charm logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *log.Logger
}

func (l badgerLogger) Errorf(format string, args ...any)   { l.logger.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...any) { l.logger.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...any)    { l.logger.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...any)   { l.logger.Debugf(format, args...) }

// OpenBadger opens the database described by cfg.
//
// If nodes is positive, the store is (re)initialized to nodes zeroed nodes.
// Otherwise the node count recorded in the database is used, and opening a
// database that has none fails with NOT_FOUND.
func OpenBadger(cfg BadgerConfig, nodes int) (*Badger, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidPath, "badger store needs a path")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: cfg.Logger.WithPrefix("badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open badger store")
	}

	if nodes > 0 {
		err = initNodes(db, nodes)
	} else {
		nodes, err = readNodes(db)
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Badger{
		db:    db,
		nodes: nodes,
		warm:  make(map[int][]byte, prefetchQueue),
		queue: make(chan int, prefetchQueue),
		done:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.prefetchLoop()
	return s, nil
}

func nodeKey(i int) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(i))
	return k[:]
}

func initNodes(db *badger.DB, nodes int) error {
	wb := db.NewWriteBatch()
	defer wb.Cancel()

	zero := make([]byte, NodeSize)
	for i := 0; i < nodes; i++ {
		if err := wb.Set(nodeKey(i), zero); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "initialize node %d", i)
		}
	}
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(nodes))
	if err := wb.Set(metaNodes, n[:]); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "record node count")
	}
	if err := wb.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "initialize nodes")
	}
	return nil
}

func readNodes(db *badger.DB) (int, error) {
	var nodes int
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaNodes)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			if len(v) != 8 {
				return fmt.Errorf("node count has %d bytes", len(v))
			}
			nodes = int(binary.BigEndian.Uint64(v))
			return nil
		})
	})
	switch {
	case err == badger.ErrKeyNotFound:
		return 0, errors.New(errors.ErrCodeNotFound, "badger store holds no sector")
	case err != nil:
		return 0, errors.Wrap(errors.ErrCodeStoreCorrupt, err, "read node count")
	}
	return nodes, nil
}

func (s *Badger) Len() int { return s.nodes }

func (s *Badger) ReadNode(i int, dst []byte) error {
	if err := checkIndex(i, s.nodes); err != nil {
		return err
	}
	if err := checkBuf(dst); err != nil {
		return err
	}

	s.mu.Lock()
	v, ok := s.warm[i]
	if ok {
		delete(s.warm, i)
	}
	s.mu.Unlock()
	if ok {
		copy(dst, v)
		return nil
	}

	v, err := s.get(i)
	if err != nil {
		return err
	}
	copy(dst, v)
	return nil
}

func (s *Badger) get(i int) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(i))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read node %d", i)
	}
	if len(out) != NodeSize {
		return nil, errors.New(errors.ErrCodeStoreCorrupt, "node %d has %d bytes, want %d", i, len(out), NodeSize)
	}
	return out, nil
}

func (s *Badger) WriteNode(i int, b []byte) error {
	if err := checkIndex(i, s.nodes); err != nil {
		return err
	}
	if err := checkBuf(b); err != nil {
		return err
	}

	// Holding mu keeps the prefetcher from caching the value being replaced.
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.warm, i)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(nodeKey(i), append([]byte(nil), b[:NodeSize]...))
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write node %d", i)
	}
	return nil
}

// Prefetch queues node i for the background reader. Full queues drop the hint.
func (s *Badger) Prefetch(i int, _ graph.Direction) {
	if i < 0 || i >= s.nodes {
		return
	}
	select {
	case s.queue <- i:
	default:
	}
}

func (s *Badger) prefetchLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case i := <-s.queue:
			s.warmUp(i)
		}
	}
}

func (s *Badger) warmUp(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.warm[i]; ok {
		return
	}
	if len(s.warm) >= prefetchQueue {
		for k := range s.warm {
			delete(s.warm, k)
			break
		}
	}
	if v, err := s.get(i); err == nil {
		s.warm[i] = v
	}
}

// Close stops the prefetcher and closes the database.
func (s *Badger) Close() error {
	close(s.done)
	s.wg.Wait()
	return s.db.Close()
}

var _ Store = (*Badger)(nil)
