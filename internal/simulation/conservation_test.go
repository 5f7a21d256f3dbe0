package simulation_test

import (
	"testing"

	"github.com/neurodyn/tauspread/internal/dynamics"
	"github.com/neurodyn/tauspread/internal/simulation"
)

// TestPureDiffusionConservesMass validates that with growth disabled,
// graph diffusion only moves concentration around: the volume-weighted total
// stays fixed while individual nodes equalize.
func TestPureDiffusionConservesMass(t *testing.T) {
	r := simulation.NewRunner(t)

	cfg := dynamics.DefaultConfig()
	cfg.SeedNodes = []int{0}
	cfg.SeedValue = 0.8
	cfg.Clearance = false
	cfg.Params.Alpha = 0
	cfg.Params.Rho = 0.5
	cfg.TMax = 40

	result := r.Run(simulation.Scenario{
		Name:   "pure-diffusion",
		Graph:  simulation.CompleteGraph(4),
		Config: cfg,
	})

	simulation.AssertMassConserved(t, result, 1e-9)

	// Equalized endpoint: every node near the uniform share 0.8/4.
	last := result.Traj.C[result.Traj.Steps()-1]
	for node, v := range last {
		if v < 0.19 || v > 0.21 {
			t.Errorf("node %d ended at %.6f, want near 0.2", node, v)
		}
	}
}

// TestGrowthAddsMass validates that logistic growth strictly increases the
// total while diffusion alone cannot.
func TestGrowthAddsMass(t *testing.T) {
	r := simulation.NewRunner(t)

	cfg := dynamics.DefaultConfig()
	cfg.SeedNodes = []int{0}
	cfg.Clearance = false
	cfg.TMax = 10
	cfg.GlobalLoad = true

	result := r.Run(simulation.Scenario{
		Name:   "growth-mass",
		Graph:  simulation.LineGraph(4),
		Config: cfg,
	})

	gl := result.Traj.GlobalLoad
	for i := 1; i < len(gl); i++ {
		if gl[i] < gl[i-1] {
			t.Fatalf("global load decreased at step %d: %.9f -> %.9f", i, gl[i-1], gl[i])
		}
	}
	if gl[0] >= gl[len(gl)-1] {
		t.Error("global load did not grow over the run")
	}
}
