package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}

	p, err := cfg.GraphParams()
	if err != nil {
		t.Fatal(err)
	}
	want := graph.Params{Nodes: DefaultNodes, BaseDegree: 5, ExpansionDegree: 8}
	if p != want {
		t.Errorf("GraphParams() = %+v, want %+v", p, want)
	}
	if cfg.Replication.Layers != 10 {
		t.Errorf("layers = %d, want 10", cfg.Replication.Layers)
	}
}

func TestDecode(t *testing.T) {
	in := `
[graph]
nodes = 1024
expansion_degree = 0
seed = [1, 2, 3, 4, 5, 6, 7]

[replication]
layers = 4
replica_id = "0x0101010101010101010101010101010101010101010101010101010101010101"

[cache]
backend = "redis"
redis_addr = "cache:6379"

[store]
backend = "badger"
badger_dir = "/var/lib/zigzag"
`
	cfg, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	p, _ := cfg.GraphParams()
	want := graph.Params{Nodes: 1024, BaseDegree: 5, Seed: graph.Seed{1, 2, 3, 4, 5, 6, 7}}
	if p != want {
		t.Errorf("GraphParams() = %+v, want %+v", p, want)
	}
	id, err := cfg.ReplicaID()
	if err != nil {
		t.Fatal(err)
	}
	if id[0] != 1 || id[31] != 1 {
		t.Errorf("ReplicaID() = %x", id)
	}
	if cfg.Replication.Layers != 4 || cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Store.Backend != StoreBadger || cfg.Store.BadgerDir != "/var/lib/zigzag" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server.addr = %q, want default", cfg.Server.Addr)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"syntax", "[graph\nnodes = 1", errors.ErrCodeInvalidConfig},
		{"unknown key", "[graph]\nnode = 1024", errors.ErrCodeInvalidConfig},
		{"short seed", "[graph]\nseed = [1, 2]", errors.ErrCodeInvalidConfig},
		{"too few nodes", "[graph]\nnodes = 1", errors.ErrCodeInvalidParams},
		{"zero base degree", "[graph]\nbase_degree = 0", errors.ErrCodeInvalidParams},
		{"zero layers", "[replication]\nlayers = 0", errors.ErrCodeInvalidConfig},
		{"bad replica id", "[replication]\nreplica_id = \"xyz\"", errors.ErrCodeInvalidReplicaID},
		{"cache backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidConfig},
		{"store backend", "[store]\nbackend = \"s3\"", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	if cfg, err := Load(""); err != nil || cfg.Graph.Nodes != DefaultNodes {
		t.Errorf("Load(\"\") = %+v, %v; want defaults", cfg.Graph, err)
	}

	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}

	path := filepath.Join(dir, "zigzag.toml")
	if err := os.WriteFile(path, []byte("[graph]\nnodes = 64\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Graph.Nodes != 64 {
		t.Errorf("nodes = %d, want 64", cfg.Graph.Nodes)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Graph.Nodes = 4096
	cfg.Cache.Backend = CacheNone

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(Encode()) error: %v", err)
	}
	if back.Graph.Nodes != 4096 || back.Cache.Backend != CacheNone {
		t.Errorf("round trip lost settings: %+v", back)
	}
}
