package simulation

import (
	"github.com/neurodyn/tauspread/internal/dynamics"
	"github.com/neurodyn/tauspread/internal/graphctx"
	"github.com/neurodyn/tauspread/internal/store"
)

// GraphBuilder constructs the graph context for a scenario.
type GraphBuilder func() (*graphctx.Context, error)

// Scenario defines a complete integration experiment.
type Scenario struct {
	Name   string
	Graph  GraphBuilder
	Config dynamics.Config

	// Persist, when true, saves the run and its summary curves to an
	// isolated run store so tests can assert on the persisted state.
	Persist bool

	// Variant labels the run when persisted. Defaults to the damage law name.
	Variant string
}

// Result captures the outcome of a scenario run.
type Result struct {
	Graph      *graphctx.Context
	Config     dynamics.Config
	Traj       *dynamics.Trajectory
	StageMeans map[string][]float64

	// Store and RunID are set when the scenario persisted its run.
	Store *store.RunStore
	RunID string
}

// Final returns the last sample of a named stage-mean curve.
func (r Result) Final(stage string) (float64, bool) {
	curve, ok := r.StageMeans[stage]
	if !ok || len(curve) == 0 {
		return 0, false
	}
	return curve[len(curve)-1], true
}
