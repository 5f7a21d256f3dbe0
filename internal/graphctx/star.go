package graphctx

import (
	"fmt"

	"github.com/neurodyn/tauspread/internal/vecmath"
)

// Stage names used by star graphs.
const (
	StageHub       = "Hub"
	StagePeriphery = "Periphery"
)

// StarGraph builds a context for a star graph of n nodes: node 0 is the hub,
// connected to every other node by an edge of weight 1. All volumes are 1
// and the partition has a hub stage and a periphery stage. n must be at
// least 2.
func StarGraph(n int) (*Context, error) {
	if n < 2 {
		return nil, fmt.Errorf("graphctx: star graph needs at least 2 nodes, got %d", n)
	}

	adj := vecmath.NewDense(n, n)
	for i := 1; i < n; i++ {
		adj.Set(0, i, 1)
		adj.Set(i, 0, 1)
	}

	volumes := make([]float64, n)
	vecmath.Fill(volumes, 1)

	periphery := make([]int, n-1)
	for i := 1; i < n; i++ {
		periphery[i-1] = i
	}
	stages := []Stage{
		{Name: StageHub, Nodes: []int{0}},
		{Name: StagePeriphery, Nodes: periphery},
	}

	return New(adj, volumes, nil, stages)
}
