package graph

import (
	"context"
	"time"

	"github.com/matzehuels/zigzag/pkg/cache"
	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/observability"
)

// Store persists generated graphs.
//
// Load reports a miss with (nil, false, nil). Any other failure, including a
// stored entry that cannot be decoded, is returned as an error: callers must
// not fall back to regenerating over a corrupt entry.
type Store interface {
	Load(ctx context.Context, p Params) (*Graph, bool, error)
	Save(ctx context.Context, g *Graph) error
}

// CacheStore is a [Store] backed by a [cache.Cache].
type CacheStore struct {
	Cache cache.Cache
	Keyer cache.Keyer
	// TTL of saved graphs. Zero keeps them until deleted.
	TTL time.Duration
}

// NewCacheStore creates a store on top of c.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (nothing is persisted).
func NewCacheStore(c cache.Cache, keyer cache.Keyer) *CacheStore {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CacheStore{Cache: c, Keyer: keyer, TTL: cache.TTLGraph}
}

// Key returns the cache key the graph for p is stored under.
func (s *CacheStore) Key(p Params) string {
	return s.Keyer.GraphKey(cache.GraphKeyOpts{
		Nodes:           p.Nodes,
		BaseDegree:      p.BaseDegree,
		ExpansionDegree: p.ExpansionDegree,
		Seed:            p.Seed,
	})
}

// Load implements [Store].
func (s *CacheStore) Load(ctx context.Context, p Params) (*Graph, bool, error) {
	key := s.Key(p)
	data, hit, err := s.Cache.Get(ctx, key)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCache, err, "read graph %s", key)
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeGraph)
		return nil, false, nil
	}

	g, err := UnmarshalGraph(data)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCacheCorrupt, err, "decode graph %s", key)
	}
	if g.Params() != p {
		return nil, false, errors.New(errors.ErrCodeCacheCorrupt, "graph %s holds %s, want %s", key, g.Params(), p)
	}
	observability.Cache().OnCacheHit(ctx, cache.KeyTypeGraph)
	return g, true, nil
}

// Save implements [Store].
func (s *CacheStore) Save(ctx context.Context, g *Graph) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
	}
	key := s.Key(g.Params())
	if err := s.Cache.Set(ctx, key, data, s.TTL); err != nil {
		return errors.Wrap(errors.ErrCodeCache, err, "write graph %s", key)
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyTypeGraph, len(data))
	return nil
}

// LoadOrGenerate returns the stored graph for p, generating and saving it on
// a miss. The boolean reports whether the graph came from the store.
func LoadOrGenerate(ctx context.Context, s Store, p Params, opts GenerateOptions) (*Graph, bool, error) {
	g, hit, err := s.Load(ctx, p)
	if err != nil {
		return nil, false, err
	}
	if hit {
		return g, true, nil
	}

	g, err = Generate(ctx, p, opts)
	if err != nil {
		return nil, false, err
	}
	if err := s.Save(ctx, g); err != nil {
		return nil, false, err
	}
	return g, false, nil
}
