// Package simulation provides a test harness for validating emergent
// dynamics of the propagation models.
//
// Scenarios exercise the real integrator, graph contexts, and run store —
// no mocks. A scenario is a Go builder that constructs a graph, integrates
// one of the model variants over it, and captures the trajectory together
// with per-stage summary curves for property-based assertions.
//
// Each test gets an isolated database directory via t.TempDir().
//
// Usage:
//
//	func TestWavefrontOrdering(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:   "wavefront",
//	        Graph:  simulation.LineGraph(8),
//	        Config: cfg,
//	    })
//	    simulation.AssertCrossingOrder(t, result, 0.3, "n00", "n03", "n07")
//	}
package simulation
