package graph

import (
	"fmt"

	"github.com/matzehuels/zigzag/pkg/errors"
)

// Default degrees, matching the reference parameters of the construction.
const (
	DefaultBaseDegree      = 5
	DefaultExpansionDegree = 8
)

// SeedWords is the number of 32-bit words in a [Seed]. The node index is
// appended as the final word of the sampler key.
const SeedWords = 7

// Seed is the fixed-width value the DRG sampler is keyed with.
type Seed [SeedWords]uint32

// Params fully determine a graph: identical Params always generate a
// byte-identical graph.
type Params struct {
	Nodes           int  `json:"nodes"`
	BaseDegree      int  `json:"base_degree"`
	ExpansionDegree int  `json:"expansion_degree"`
	Seed            Seed `json:"seed"`
}

// Validate checks the parameters before generation.
func (p Params) Validate() error {
	return errors.ValidateGraphParams(p.Nodes, p.BaseDegree, p.ExpansionDegree)
}

// Degree returns the total number of parents per node.
func (p Params) Degree() int { return p.BaseDegree + p.ExpansionDegree }

// String returns a compact description used in logs.
func (p Params) String() string {
	return fmt.Sprintf("nodes=%d m=%d d=%d", p.Nodes, p.BaseDegree, p.ExpansionDegree)
}

// Direction is the edge direction a layer is encoded with.
type Direction int

const (
	// Forward uses the generated edges as is. Even layers are forward.
	Forward Direction = iota
	// Reverse reflects the DRG and flips the expander edges. Odd layers are
	// reverse.
	Reverse
)

// LayerDirection returns the direction of layer.
func LayerDirection(layer int) Direction {
	if layer%2 == 0 {
		return Forward
	}
	return Reverse
}

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Stats summarizes the edge structure of a graph.
type Stats struct {
	Nodes           int `json:"nodes"`
	BaseDegree      int `json:"base_degree"`
	ExpansionDegree int `json:"expansion_degree"`
	DRGEdges        int `json:"drg_edges"`
	ExpanderEdges   int `json:"expander_edges"`
	ReversedEdges   int `json:"reversed_edges"`
}
