// Package config loads zigzag settings from TOML files.
//
// A config file has one table per concern. Every key is optional; missing
// keys keep their defaults:
//
//	[graph]
//	nodes = 65536
//	base_degree = 5
//	expansion_degree = 8
//	seed = [1, 2, 3, 4, 5, 6, 7]
//
//	[replication]
//	layers = 10
//	replica_id = "0x..."
//
//	[cache]
//	backend = "file"   # file, redis, mongo or none
//
//	[store]
//	backend = "file"   # file, memory or badger
//
//	[server]
//	addr = ":8080"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
	"github.com/matzehuels/zigzag/pkg/replicate"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheMongo = "mongo"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// DefaultNodes is the node count of a 2 MiB sector.
const DefaultNodes = 1 << 16

// Config is the complete zigzag configuration.
type Config struct {
	Graph       GraphConfig       `toml:"graph"`
	Replication ReplicationConfig `toml:"replication"`
	Cache       CacheConfig       `toml:"cache"`
	Store       StoreConfig       `toml:"store"`
	Server      ServerConfig      `toml:"server"`
}

// GraphConfig holds the parameters graphs are generated from.
type GraphConfig struct {
	Nodes           int      `toml:"nodes"`
	BaseDegree      int      `toml:"base_degree"`
	ExpansionDegree int      `toml:"expansion_degree"`
	Seed            []uint32 `toml:"seed"`
	// Workers bounds generation concurrency. Zero uses every CPU.
	Workers int `toml:"workers"`
}

// ReplicationConfig configures the encoding engine.
type ReplicationConfig struct {
	Layers int `toml:"layers"`
	// ReplicaID is the hex replica identifier. Empty means all zeros.
	ReplicaID string `toml:"replica_id"`
}

// CacheConfig selects where generated graphs are kept.
type CacheConfig struct {
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`
	// Prefix scopes every key, so several setups can share a backend.
	Prefix        string `toml:"prefix"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// StoreConfig selects how sectors are accessed while replicating.
type StoreConfig struct {
	Backend string `toml:"backend"`
	// BadgerDir is the database directory of the badger backend.
	BadgerDir  string `toml:"badger_dir"`
	SyncWrites bool   `toml:"sync_writes"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Graph: GraphConfig{
			Nodes:           DefaultNodes,
			BaseDegree:      graph.DefaultBaseDegree,
			ExpansionDegree: graph.DefaultExpansionDegree,
			Seed:            make([]uint32, graph.SeedWords),
		},
		Replication: ReplicationConfig{
			Layers: replicate.DefaultLayers,
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			MongoURI:  "mongodb://localhost:27017",
		},
		Store: StoreConfig{
			Backend: StoreFile,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads the config file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return cfg, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a TOML config on top of the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.GraphParams(); err != nil {
		return err
	}
	if c.Replication.Layers < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "replication.layers must be positive, got %d", c.Replication.Layers)
	}
	if _, err := c.ReplicaID(); err != nil {
		return err
	}
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheMongo, CacheNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if !slices.Contains([]string{StoreFile, StoreMemory, StoreBadger}, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// GraphParams returns the graph parameters of the [graph] section.
func (c Config) GraphParams() (graph.Params, error) {
	p := graph.Params{
		Nodes:           c.Graph.Nodes,
		BaseDegree:      c.Graph.BaseDegree,
		ExpansionDegree: c.Graph.ExpansionDegree,
	}
	if len(c.Graph.Seed) != graph.SeedWords {
		return p, errors.New(errors.ErrCodeInvalidConfig, "graph.seed must have %d words, got %d", graph.SeedWords, len(c.Graph.Seed))
	}
	copy(p.Seed[:], c.Graph.Seed)
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// ReplicaID decodes replication.replica_id.
func (c Config) ReplicaID() (replicate.ReplicaID, error) {
	if c.Replication.ReplicaID == "" {
		return replicate.ReplicaID{}, nil
	}
	return replicate.ParseReplicaID(c.Replication.ReplicaID)
}
