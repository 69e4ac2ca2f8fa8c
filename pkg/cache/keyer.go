package cache

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2s"
)

// Keyer derives cache keys for cached artifacts.
type Keyer interface {
	// GraphKey returns the key a graph with the given parameters is stored under.
	GraphKey(opts GraphKeyOpts) string
}

// GraphKeyOpts holds every parameter that determines a generated graph.
type GraphKeyOpts struct {
	Nodes           int       `json:"nodes"`
	BaseDegree      int       `json:"base_degree"`
	ExpansionDegree int       `json:"expansion_degree"`
	Seed            [7]uint32 `json:"seed"`
}

// DefaultKeyer names graphs "graph:<digest>", where the digest covers the
// JSON form of the parameters.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) GraphKey(opts GraphKeyOpts) string {
	// Marshaling a struct of ints cannot fail.
	data, _ := json.Marshal(opts)
	return KeyTypeGraph + ":" + digest(data)
}

// digest is the hex BLAKE2s-256 of data.
func digest(data []byte) string {
	sum := blake2s.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ScopedKeyer prepends a fixed prefix to every key of an inner Keyer, so
// deployments sharing a Redis or MongoDB backend stay apart.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer scopes inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) GraphKey(opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(opts)
}
