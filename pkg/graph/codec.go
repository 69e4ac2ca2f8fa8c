package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/zigzag/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// record is the persisted form of a graph. Field names are stable: cached
// graphs are decoded verbatim.
type record struct {
	Nodes           int     `json:"nodes"`
	BaseDegree      int     `json:"base_degree"`
	ExpansionDegree int     `json:"expansion_degree"`
	Seed            Seed    `json:"seed"`
	Bas             [][]int `json:"bas"`
	Exp             [][]int `json:"exp"`
	ExpReversed     [][]int `json:"exp_reversed"`
}

// MarshalGraph converts a graph to JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph decodes a graph from JSON bytes.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return readGraphFrom(bytes.NewReader(data))
}

// WriteGraphFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeGraphTo(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteGraph writes a graph as JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded graph.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (*Graph, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g *Graph, w io.Writer) error {
	out := record{
		Nodes:           g.nodes,
		BaseDegree:      g.baseDegree,
		ExpansionDegree: g.expansionDegree,
		Seed:            g.seed,
		Bas:             nonNil(g.bas),
		Exp:             nonNil(g.exp),
		ExpReversed:     nonNil(g.expReversed),
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Graph, error) {
	var data record
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	p := Params{
		Nodes:           data.Nodes,
		BaseDegree:      data.BaseDegree,
		ExpansionDegree: data.ExpansionDegree,
		Seed:            data.Seed,
	}
	return New(p, data.Bas, data.Exp, data.ExpReversed)
}

// nonNil replaces nil adjacency lists with empty ones so every node encodes
// as a JSON array.
func nonNil(lists [][]int) [][]int {
	out := make([][]int, len(lists))
	for i, l := range lists {
		if l == nil {
			l = []int{}
		}
		out[i] = l
	}
	return out
}

// checkShape verifies the adjacency has one list per node. It is the only
// check applied to decoded graphs.
func (g *Graph) checkShape() error {
	for name, lists := range map[string][][]int{"bas": g.bas, "exp": g.exp, "exp_reversed": g.expReversed} {
		if len(lists) != g.nodes {
			return errors.New(errors.ErrCodeGraphInvalid, "%s has %d entries, want %d", name, len(lists), g.nodes)
		}
	}
	return nil
}
