package simulation

import (
	"fmt"

	"github.com/neurodyn/tauspread/internal/graphctx"
	"github.com/neurodyn/tauspread/internal/vecmath"
)

// LineGraph builds a chain of n unit-volume nodes with unit edge weights.
// Each node forms its own stage named "n00", "n01", ... so wavefront
// assertions can track per-node crossing times.
func LineGraph(n int) GraphBuilder {
	return func() (*graphctx.Context, error) {
		adj := vecmath.NewDense(n, n)
		for i := 0; i < n-1; i++ {
			adj.Set(i, i+1, 1)
			adj.Set(i+1, i, 1)
		}
		return graphctx.New(adj, unitVolumes(n), nil, nodeStages(n))
	}
}

// RingGraph builds a cycle of n unit-volume nodes with unit edge weights.
func RingGraph(n int) GraphBuilder {
	return func() (*graphctx.Context, error) {
		adj := vecmath.NewDense(n, n)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			adj.Set(i, j, 1)
			adj.Set(j, i, 1)
		}
		return graphctx.New(adj, unitVolumes(n), nil, nodeStages(n))
	}
}

// CompleteGraph builds a clique of n unit-volume nodes grouped in a single
// "all" stage.
func CompleteGraph(n int) GraphBuilder {
	return func() (*graphctx.Context, error) {
		adj := vecmath.NewDense(n, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j {
					adj.Set(i, j, 1)
				}
			}
		}
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return graphctx.New(adj, unitVolumes(n), nil,
			[]graphctx.Stage{{Name: "all", Nodes: all}})
	}
}

// Star builds a hub-and-spoke graph via graphctx.StarGraph.
func Star(n int) GraphBuilder {
	return func() (*graphctx.Context, error) {
		return graphctx.StarGraph(n)
	}
}

// BrainGraph builds the anatomical staging partition over a synthetic
// 83-node connectome where consecutive stages are chained through their
// member nodes. It is a stand-in for connectome data files in tests.
func BrainGraph() GraphBuilder {
	return func() (*graphctx.Context, error) {
		const n = 83
		stages, err := graphctx.BraakStages(n)
		if err != nil {
			return nil, err
		}

		adj := vecmath.NewDense(n, n)
		// Chain nodes within each stage, then bridge consecutive stages.
		var prev int = -1
		for _, st := range stages {
			for i := 0; i < len(st.Nodes)-1; i++ {
				a, b := st.Nodes[i], st.Nodes[i+1]
				adj.Set(a, b, 1)
				adj.Set(b, a, 1)
			}
			if prev >= 0 {
				adj.Set(prev, st.Nodes[0], 1)
				adj.Set(st.Nodes[0], prev, 1)
			}
			prev = st.Nodes[len(st.Nodes)-1]
		}
		return graphctx.New(adj, unitVolumes(n), nil, stages)
	}
}

// NodeStage returns the per-node stage name used by LineGraph and RingGraph.
func NodeStage(i int) string {
	return fmt.Sprintf("n%02d", i)
}

func nodeStages(n int) []graphctx.Stage {
	stages := make([]graphctx.Stage, n)
	for i := 0; i < n; i++ {
		stages[i] = graphctx.Stage{Name: NodeStage(i), Nodes: []int{i}}
	}
	return stages
}

func unitVolumes(n int) []float64 {
	vols := make([]float64, n)
	for i := range vols {
		vols[i] = 1
	}
	return vols
}
