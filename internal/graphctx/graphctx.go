// Package graphctx builds and holds the fixed brain-graph context consumed by
// the propagation models: the weighted adjacency matrix, its graph Laplacian,
// per-node volumes, optional 3-D node positions, and the partition of nodes
// into named anatomical stages. A Context is immutable once built; model runs
// clone the Laplacian before modifying it.
package graphctx

import (
	"errors"
	"fmt"

	"github.com/neurodyn/tauspread/internal/vecmath"
)

var (
	// ErrNotSquare indicates a non-square adjacency matrix.
	ErrNotSquare = errors.New("graphctx: adjacency matrix is not square")

	// ErrVolumeShape indicates a volume vector whose length differs from the
	// adjacency dimension.
	ErrVolumeShape = errors.New("graphctx: volume vector length does not match adjacency")

	// ErrVolumeNonPositive indicates a zero or negative node volume.
	ErrVolumeNonPositive = errors.New("graphctx: node volume must be positive")

	// ErrBadPartition indicates a stage partition that is not total and
	// disjoint over the node set.
	ErrBadPartition = errors.New("graphctx: stage partition must cover every node exactly once")
)

// Stage is a named group of node indices (0-based).
type Stage struct {
	Name  string
	Nodes []int
}

// Context is the read-only graph context shared by all model runs.
type Context struct {
	adjacency *vecmath.Dense
	laplacian *vecmath.Dense
	volumes   []float64
	positions [][3]float64
	stages    []Stage
}

// New validates the inputs and assembles a Context. The Laplacian is computed
// once as degree minus adjacency. positions may be nil. The stage partition
// must be total and disjoint over [0, N).
func New(adjacency *vecmath.Dense, volumes []float64, positions [][3]float64, stages []Stage) (*Context, error) {
	if adjacency.Rows() != adjacency.Cols() {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, adjacency.Rows(), adjacency.Cols())
	}
	n := adjacency.Rows()

	if len(volumes) != n {
		return nil, fmt.Errorf("%w: %d volumes for %d nodes", ErrVolumeShape, len(volumes), n)
	}
	for i, v := range volumes {
		if v <= 0 {
			return nil, fmt.Errorf("%w: node %d has volume %g", ErrVolumeNonPositive, i, v)
		}
	}
	if positions != nil && len(positions) != n {
		return nil, fmt.Errorf("graphctx: %d positions for %d nodes", len(positions), n)
	}
	if err := validatePartition(stages, n); err != nil {
		return nil, err
	}

	return &Context{
		adjacency: adjacency.Clone(),
		laplacian: laplacianOf(adjacency),
		volumes:   append([]float64(nil), volumes...),
		positions: append([][3]float64(nil), positions...),
		stages:    cloneStages(stages),
	}, nil
}

// laplacianOf computes L = D - A where D is the diagonal weighted-degree matrix.
func laplacianOf(a *vecmath.Dense) *vecmath.Dense {
	n := a.Rows()
	lap := vecmath.NewDense(n, n)
	for i := 0; i < n; i++ {
		degree := 0.0
		for j := 0; j < n; j++ {
			w := a.At(i, j)
			degree += w
			lap.Set(i, j, -w)
		}
		lap.Set(i, i, degree-a.At(i, i))
	}
	return lap
}

func validatePartition(stages []Stage, n int) error {
	seen := make([]bool, n)
	total := 0
	for _, s := range stages {
		for _, node := range s.Nodes {
			if node < 0 || node >= n {
				return fmt.Errorf("%w: stage %q references node %d outside [0, %d)", ErrBadPartition, s.Name, node, n)
			}
			if seen[node] {
				return fmt.Errorf("%w: node %d appears in more than one stage", ErrBadPartition, node)
			}
			seen[node] = true
			total++
		}
	}
	if total != n {
		return fmt.Errorf("%w: %d of %d nodes assigned", ErrBadPartition, total, n)
	}
	return nil
}

func cloneStages(stages []Stage) []Stage {
	out := make([]Stage, len(stages))
	for i, s := range stages {
		out[i] = Stage{Name: s.Name, Nodes: append([]int(nil), s.Nodes...)}
	}
	return out
}

// N returns the number of nodes.
func (c *Context) N() int { return c.adjacency.Rows() }

// Adjacency returns the weighted adjacency matrix. Callers must not mutate it.
func (c *Context) Adjacency() *vecmath.Dense { return c.adjacency }

// Laplacian returns the graph Laplacian. Callers must not mutate it; use
// CloneLaplacian for a private working copy.
func (c *Context) Laplacian() *vecmath.Dense { return c.laplacian }

// CloneLaplacian returns a fresh copy of the Laplacian for a single run to own.
func (c *Context) CloneLaplacian() *vecmath.Dense { return c.laplacian.Clone() }

// Volumes returns the per-node volume vector. Callers must not mutate it.
func (c *Context) Volumes() []float64 { return c.volumes }

// Positions returns the 3-D node positions, or nil if none were loaded.
func (c *Context) Positions() [][3]float64 { return c.positions }

// Stages returns the stage partition in declaration order.
func (c *Context) Stages() []Stage { return c.stages }

// StageByName returns the stage with the given name.
func (c *Context) StageByName(name string) (Stage, bool) {
	for _, s := range c.stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}
