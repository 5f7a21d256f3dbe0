package simulation

import (
	"context"
	"fmt"
	"testing"

	"github.com/neurodyn/tauspread/internal/biomarker"
	"github.com/neurodyn/tauspread/internal/dynamics"
	"github.com/neurodyn/tauspread/internal/store"
)

// Runner orchestrates scenario experiments against the real integrator and
// an isolated run store.
type Runner struct {
	t     *testing.T
	store *store.RunStore
}

// NewRunner creates a runner with an isolated run store under t.TempDir().
func NewRunner(t *testing.T) *Runner {
	t.Helper()

	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunner: failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Runner{t: t, store: s}
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(scenario Scenario) Result {
	r.t.Helper()

	if scenario.Graph == nil {
		r.t.Fatalf("scenario %s: no graph builder", scenario.Name)
	}
	g, err := scenario.Graph()
	if err != nil {
		r.t.Fatalf("scenario %s: build graph: %v", scenario.Name, err)
	}

	traj, err := dynamics.Integrate(g, scenario.Config)
	if err != nil {
		r.t.Fatalf("scenario %s: integrate: %v", scenario.Name, err)
	}

	means := biomarker.StageMeans(traj.C, g.Stages())

	result := Result{
		Graph:      g,
		Config:     scenario.Config,
		Traj:       traj,
		StageMeans: means,
	}

	if scenario.Persist {
		result.Store = r.store
		result.RunID = r.persist(scenario, g.N(), traj, means)
	}
	return result
}

// persist saves the run and its summary curves, returning the assigned ID.
func (r *Runner) persist(scenario Scenario, nodes int, traj *dynamics.Trajectory, means map[string][]float64) string {
	r.t.Helper()

	variant := scenario.Variant
	if variant == "" {
		variant = scenario.Config.Damage.String()
	}

	curves := make(map[string][]store.CurvePoint, len(means)+1)
	for name, curve := range means {
		curves[name] = toCurvePoints(traj.T, curve)
	}
	if len(traj.GlobalLoad) > 0 {
		curves["global"] = toCurvePoints(traj.T, traj.GlobalLoad)
	}

	rec := store.RunRecord{
		Variant: variant,
		Nodes:   nodes,
		Steps:   traj.Steps(),
		TMax:    scenario.Config.TMax,
		Dt:      scenario.Config.Dt,
		Config:  scenario.Config,
	}
	saved, err := r.store.SaveRun(context.Background(), rec, curves)
	if err != nil {
		r.t.Fatalf("scenario %s: save run: %v", scenario.Name, err)
	}
	return saved.ID
}

func toCurvePoints(t, curve []float64) []store.CurvePoint {
	points := make([]store.CurvePoint, len(curve))
	for i, v := range curve {
		points[i] = store.CurvePoint{Step: i, T: t[i], Value: v}
	}
	return points
}

// FormatResultDebug returns a debug string summarizing a scenario result.
func FormatResultDebug(r Result) string {
	s := fmt.Sprintf("nodes=%d steps=%d\n", r.Graph.N(), r.Traj.Steps())
	for name, curve := range r.StageMeans {
		if len(curve) == 0 {
			continue
		}
		s += fmt.Sprintf("  stage %s: start=%.4f end=%.4f\n", name, curve[0], curve[len(curve)-1])
	}
	return s
}
