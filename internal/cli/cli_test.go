package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/nodestore"
)

// isolate points the config and cache directories at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// writeSector writes n canonical nodes holding a byte ramp.
func writeSector(t *testing.T, path string, n int) {
	t.Helper()
	data := make([]byte, n*nodestore.NodeSize)
	for i := range data {
		data[i] = byte(i)
	}
	for i := 0; i < n; i++ {
		data[(i+1)*nodestore.NodeSize-1] &= 0x3f
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func sha256File(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var smallGraph = []string{"--base-degree", "3", "--expansion-degree", "3", "--seed", "1,2,3,4,5,6,7"}

func TestReplicateCommandStores(t *testing.T) {
	dir := isolate(t)
	sector := filepath.Join(dir, "sector.bin")
	writeSector(t, sector, 8)

	replicaID := make([]byte, 32)
	for i := range replicaID {
		replicaID[i] = byte(i)
	}
	const want = "f477640c38b2dc536df2e93a54b1199c44da684b70e33e2b9001eda114431920"

	for _, store := range []string{"file", "memory", "badger"} {
		t.Run(store, func(t *testing.T) {
			out := filepath.Join(dir, store+".bin")
			args := append([]string{"replicate", sector,
				"--output", out,
				"--layers", "2",
				"--replica-id", "0x" + hex.EncodeToString(replicaID),
				"--store", store,
				"--no-cache",
			}, smallGraph...)
			if err := execute(t, args...); err != nil {
				t.Fatalf("replicate --store %s: %v", store, err)
			}
			if got := sha256File(t, out); got != want {
				t.Errorf("--store %s: digest = %s, want %s", store, got, want)
			}
		})
	}

	// The input is only read when --output is set.
	before := sha256File(t, sector)
	writeSector(t, filepath.Join(dir, "ref.bin"), 8)
	if ref := sha256File(t, filepath.Join(dir, "ref.bin")); before != ref {
		t.Error("replicate --output modified the input sector")
	}
}

func TestReplicateCommandSizeMismatch(t *testing.T) {
	dir := isolate(t)
	sector := filepath.Join(dir, "sector.bin")
	writeSector(t, sector, 8)

	args := append([]string{"replicate", sector, "--nodes", "16", "--no-cache"}, smallGraph...)
	err := execute(t, args...)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("replicate with --nodes 16 on 8 nodes: err = %v, want INVALID_INPUT", err)
	}
}

func TestReplicateCommandNonCanonicalSector(t *testing.T) {
	dir := isolate(t)
	sector := filepath.Join(dir, "sector.bin")
	data := make([]byte, 8*nodestore.NodeSize)
	for i := range data {
		data[i] = 0xff
	}
	if err := os.WriteFile(sector, data, 0o644); err != nil {
		t.Fatal(err)
	}

	args := append([]string{"replicate", sector, "--layers", "1", "--no-cache"}, smallGraph...)
	if err := execute(t, args...); !errors.Is(err, errors.ErrCodeStoreCorrupt) {
		t.Errorf("err = %v, want STORE_CORRUPT", err)
	}
}

func TestReplicateCommandFailureByStore(t *testing.T) {
	dir := isolate(t)
	sector := filepath.Join(dir, "sector.bin")
	writeSector(t, sector, 8)

	// Only the last node is non-canonical, so layer 0 writes nodes 0..6
	// before failing on it.
	data, err := os.ReadFile(sector)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] = 0xff
	if err := os.WriteFile(sector, data, 0o644); err != nil {
		t.Fatal(err)
	}
	original := sha256File(t, sector)

	tests := []struct {
		store       string
		wantTouched bool
	}{
		{store: "file", wantTouched: true},
		{store: "memory", wantTouched: false},
		{store: "badger", wantTouched: false},
	}

	for _, tt := range tests {
		t.Run(tt.store, func(t *testing.T) {
			out := filepath.Join(dir, tt.store+".bin")
			args := append([]string{"replicate", sector, "--output", out, "--layers", "1", "--store", tt.store, "--no-cache"}, smallGraph...)
			if err := execute(t, args...); !errors.Is(err, errors.ErrCodeStoreCorrupt) {
				t.Fatalf("err = %v, want STORE_CORRUPT", err)
			}
			if touched := sha256File(t, out) != original; touched != tt.wantTouched {
				t.Errorf("--store %s: target modified = %v, want %v", tt.store, touched, tt.wantTouched)
			}
		})
	}
}

func TestGenerateWritesGraph(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "graph.json")

	args := append([]string{"generate", "--nodes", "64", "--no-cache", "-o", out}, smallGraph...)
	if err := execute(t, args...); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("graph file not written: %v", err)
	}

	if err := execute(t, "verify", "--graph", out); err != nil {
		t.Errorf("verify --graph: %v", err)
	}
	if err := execute(t, "parents", "42", "--graph", out, "--layer", "1", "--json"); err != nil {
		t.Errorf("parents --graph: %v", err)
	}
	if err := execute(t, "parents", "64", "--graph", out); !errors.Is(err, errors.ErrCodeInvalidNode) {
		t.Errorf("parents 64: err = %v, want INVALID_NODE", err)
	}
}

func TestGenerateUsesFileCache(t *testing.T) {
	dir := isolate(t)

	args := append([]string{"generate", "--nodes", "32"}, smallGraph...)
	if err := execute(t, args...); err != nil {
		t.Fatalf("generate: %v", err)
	}

	cached, err := os.ReadDir(filepath.Join(dir, "cache", appName))
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	if len(cached) == 0 {
		t.Fatal("generate left the cache empty")
	}

	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	cached, _ = os.ReadDir(filepath.Join(dir, "cache", appName))
	if len(cached) != 0 {
		t.Errorf("cache clear left %d entries", len(cached))
	}
}

func TestRenderDOT(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "layer.dot")

	args := append([]string{"render", "--nodes", "8", "--no-cache", "-f", "dot", "-o", out, "--layer", "1"}, smallGraph...)
	if err := execute(t, args...); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("render wrote %q", data)
	}
}

func TestRenderRefusesLargeGraphs(t *testing.T) {
	isolate(t)
	args := append([]string{"render", "--nodes", "64", "--no-cache", "--max-nodes", "16", "-f", "dot"}, smallGraph...)
	if err := execute(t, args...); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[graph]\nnodez = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "config", "--config", bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown key: err = %v, want INVALID_CONFIG", err)
	}

	good := filepath.Join(dir, "good.toml")
	cfg := "[graph]\nnodes = 16\nbase_degree = 2\nexpansion_degree = 0\nseed = [1, 2, 3, 4, 5, 6, 7]\n\n[cache]\nbackend = \"none\"\n"
	if err := os.WriteFile(good, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "verify", "--config", good); err != nil {
		t.Errorf("verify with config: %v", err)
	}

	if err := execute(t, "config", "--config", filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing config: err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		in      string
		want    []uint32
		wantErr bool
	}{
		{in: "1,2,3,4,5,6,7", want: []uint32{1, 2, 3, 4, 5, 6, 7}},
		{in: " 0x10, 2,3,4,5,6, 7", want: []uint32{16, 2, 3, 4, 5, 6, 7}},
		{in: "1,2,3", wantErr: true},
		{in: "1,2,3,4,5,6,x", wantErr: true},
		{in: "1,2,3,4,5,6,4294967296", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseSeed(tt.in)
		if tt.wantErr {
			if !errors.Is(err, errors.ErrCodeInvalidParams) {
				t.Errorf("parseSeed(%q) err = %v, want INVALID_PARAMS", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSeed(%q) error: %v", tt.in, err)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("parseSeed(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "svg"},
		{in: "dot", want: "dot"},
		{in: "SVG, png", want: "svg,png"},
		{in: "svg,jpeg", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseFormats(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFormats(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && strings.Join(got, ",") != tt.want {
			t.Errorf("parseFormats(%q) = %v, want %s", tt.in, got, tt.want)
		}
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		output  string
		formats []string
		layer   int
		want    string
	}{
		{output: "", formats: []string{"svg"}, layer: 3, want: "layer3"},
		{output: "out.svg", formats: []string{"svg"}, want: "out.svg"},
		{output: "out.svg", formats: []string{"svg", "png"}, want: "out"},
		{output: "out", formats: []string{"svg", "png"}, want: "out"},
	}

	for _, tt := range tests {
		if got := outputBase(tt.output, tt.formats, tt.layer); got != tt.want {
			t.Errorf("outputBase(%q, %v) = %q, want %q", tt.output, tt.formats, got, tt.want)
		}
	}
}
