package graph_test

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/zigzag/pkg/graph"
)

func ExampleGraph_Parents() {
	p := graph.Params{Nodes: 4, BaseDegree: 2, Seed: graph.Seed{1, 2, 3, 4, 5, 6, 7}}
	g, err := graph.Generate(context.Background(), p, graph.GenerateOptions{})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for layer := 0; layer < 2; layer++ {
		for node := 0; node < g.Nodes(); node++ {
			fmt.Printf("layer %d node %d: %v\n", layer, node, g.Parents(node, layer, nil))
		}
	}
	// Output:
	// layer 0 node 0: [0 0]
	// layer 0 node 1: [0 0]
	// layer 0 node 2: [1 1]
	// layer 0 node 3: [1 2]
	// layer 1 node 0: [2 1]
	// layer 1 node 1: [2 2]
	// layer 1 node 2: [3 3]
	// layer 1 node 3: [3 3]
}

func ExampleWriteGraph() {
	p := graph.Params{Nodes: 4, BaseDegree: 2, Seed: graph.Seed{1, 2, 3, 4, 5, 6, 7}}
	g, err := graph.Generate(context.Background(), p, graph.GenerateOptions{})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	if err := graph.WriteGraph(g, os.Stdout); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// {"nodes":4,"base_degree":2,"expansion_degree":0,"seed":[1,2,3,4,5,6,7],"bas":[[0,0],[0,0],[1,1],[1,2]],"exp":[[],[],[],[]],"exp_reversed":[[],[],[],[]]}
}
