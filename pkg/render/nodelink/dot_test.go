package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/zigzag/pkg/graph"
)

var testSeed = graph.Seed{1, 2, 3, 4, 5, 6, 7}

func mustGraph(t *testing.T, p graph.Params) *graph.Graph {
	t.Helper()
	g, err := graph.Generate(context.Background(), p, graph.GenerateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT_Basic(t *testing.T) {
	g := mustGraph(t, graph.Params{Nodes: 4, BaseDegree: 2, Seed: testSeed})

	dot := ToDOT(g, 0, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for _, id := range []string{`"n0"`, `"n1"`, `"n2"`, `"n3"`} {
		if !strings.Contains(dot, id) {
			t.Errorf("ToDOT() output missing node %s", id)
		}
	}
	// Node 3 has DRG parents [1, 2].
	if !strings.Contains(dot, `"n1" -> "n3"`) || !strings.Contains(dot, `"n2" -> "n3"`) {
		t.Error("ToDOT() output missing DRG edges of node 3")
	}
	if strings.Contains(dot, "dashed") {
		t.Error("graph without expander should have no dashed edges")
	}
}

func TestToDOT_OddLayer(t *testing.T) {
	g := mustGraph(t, graph.Params{Nodes: 4, BaseDegree: 2, Seed: testSeed})

	dot := ToDOT(g, 1, Options{})

	// On odd layers node 0 has parents [2, 1].
	if !strings.Contains(dot, `"n2" -> "n0"`) || !strings.Contains(dot, `"n1" -> "n0"`) {
		t.Error("ToDOT() odd layer missing reflected edges of node 0")
	}
	if !strings.Contains(dot, "(reverse)") {
		t.Error("ToDOT() odd layer label should name the direction")
	}
}

func TestToDOT_ExpanderDashed(t *testing.T) {
	g := mustGraph(t, graph.Params{Nodes: 8, BaseDegree: 3, ExpansionDegree: 3, Seed: testSeed})

	dot := ToDOT(g, 0, Options{})

	// Node 3 has expander parent 0.
	if !strings.Contains(dot, `"n0" -> "n3" [style=dashed`) {
		t.Error("ToDOT() expander edge should be dashed")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g := mustGraph(t, graph.Params{Nodes: 4, BaseDegree: 2, Seed: testSeed})

	dot := ToDOT(g, 0, Options{Detailed: true})

	// Node 2 has DRG parents [1, 1].
	if !strings.Contains(dot, `label="drg x2"`) {
		t.Error("ToDOT() detailed output missing edge multiplicity")
	}
}

func TestLayerEdgesCollapse(t *testing.T) {
	g := mustGraph(t, graph.Params{Nodes: 4, BaseDegree: 2, Seed: testSeed})

	edges := layerEdges(g, 2, 0)
	if len(edges) != 1 || edges[0].from != 1 || edges[0].count != 2 {
		t.Errorf("layerEdges(2, 0) = %+v, want one edge from 1 with count 2", edges)
	}
}

func TestFitViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "graphviz root",
			in:   `<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`,
			want: `viewBox="0 0 10.00 20.00" width="10" height="20"><g/>`,
		},
		{
			name: "no viewBox",
			in:   `<svg width="10pt"><g/></svg>`,
			want: `<svg width="10pt"><g/></svg>`,
		},
		{
			name: "empty box",
			in:   `<svg viewBox="0 0 0 5"></svg>`,
			want: `<svg viewBox="0 0 0 5"></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := string(fitViewBox([]byte(tt.in))); !strings.Contains(out, tt.want) {
				t.Errorf("fitViewBox() = %s, want it to contain %s", out, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	g := mustGraph(t, graph.Params{Nodes: 4, BaseDegree: 2, Seed: testSeed})

	svg, err := Render(context.Background(), ToDOT(g, 0, Options{}), "svg", 1)
	if err != nil {
		t.Fatalf("Render(svg) error: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("Render(svg) root element not normalized: %.120s", svg)
	}
}
