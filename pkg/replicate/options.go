package replicate

import (
	"hash"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/blake2s"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/fr32"
	"github.com/matzehuels/zigzag/pkg/observability"
)

// DefaultLayers is the number of layers a sector is encoded with.
const DefaultLayers = 10

// ReplicaID identifies the sector being replicated. It primes every key
// digest.
type ReplicaID [fr32.NodeSize]byte

// ParseReplicaID decodes a hex replica identifier.
func ParseReplicaID(s string) (ReplicaID, error) {
	var id ReplicaID
	b, err := errors.ParseReplicaID(s, len(id))
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

// Progress reports how far a run has come.
type Progress struct {
	Layer  int
	Layers int
	Node   int
	Nodes  int
}

// Options configure an [Engine].
type Options struct {
	// Layers is the number of layers to encode. Defaults to DefaultLayers.
	Layers int

	// ReplicaID primes every key digest.
	ReplicaID ReplicaID

	// Hasher creates the key digest. Its output must be NodeSize bytes.
	// Defaults to BLAKE2s-256.
	Hasher func() hash.Hash

	// Hooks receives run and layer events. Defaults to observability.Replication().
	Hooks observability.ReplicationHooks

	// Logger receives per-layer timings. Defaults to a discarding logger.
	Logger *log.Logger

	// Progress, if set, is called periodically from the replicating goroutine.
	Progress func(Progress)
}

func newBlake2s() hash.Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

func (o *Options) setDefaults() {
	if o.Layers == 0 {
		o.Layers = DefaultLayers
	}
	if o.Hasher == nil {
		o.Hasher = newBlake2s
	}
	if o.Hooks == nil {
		o.Hooks = observability.Replication()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) validate() error {
	if o.Layers < 1 {
		return errors.New(errors.ErrCodeInvalidParams, "layers must be positive, got %d", o.Layers)
	}
	if size := o.Hasher().Size(); size != fr32.NodeSize {
		return errors.New(errors.ErrCodeInvalidParams, "hasher produces %d bytes, want %d", size, fr32.NodeSize)
	}
	return nil
}
