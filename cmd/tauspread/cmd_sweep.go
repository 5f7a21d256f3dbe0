package main

import (
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/neurodyn/tauspread/internal/biomarker"
	"github.com/neurodyn/tauspread/internal/dynamics"
	"github.com/neurodyn/tauspread/internal/graphctx"
)

// sweepOutcome is the per-seed result of the seeding sweep.
type sweepOutcome struct {
	Stage   string  `json:"stage"`
	Node    int     `json:"node"`
	Reached bool    `json:"reached"`
	Time    float64 `json:"time,omitempty"`
}

// stageEnvelope aggregates sweep outcomes over one stage's seed nodes.
type stageEnvelope struct {
	Stage    string  `json:"stage"`
	Seeds    int     `json:"seeds"`
	Reached  int     `json:"reached"`
	MeanTime float64 `json:"mean_time"`
	MinTime  float64 `json:"min_time"`
	MaxTime  float64 `json:"max_time"`
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep single-node seedings across every stage",
		Long: `Seed each node of each stage in turn and run an independent
growth-diffusion simulation per seed, in parallel. For every seed the time
for the normalized global load to cross the threshold is recorded, and the
per-stage mean, minimum, and maximum arrival times are reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			threshold, _ := cmd.Flags().GetFloat64("threshold")
			workers, _ := cmd.Flags().GetInt("workers")

			if dir, _ := cmd.Flags().GetString("data"); dir != "" {
				cfg.Data.Dir = dir
			}

			g, err := loadContext(cfg)
			if err != nil {
				return err
			}

			base, err := cfg.Dynamics()
			if err != nil {
				return err
			}
			base.Clearance = false
			base.Damage = dynamics.DamageNone
			base.TrackOperators = false
			base.GlobalLoad = true

			if workers <= 0 {
				workers = runtime.NumCPU()
			}

			var (
				mu       sync.Mutex
				outcomes []sweepOutcome
			)
			var eg errgroup.Group
			eg.SetLimit(workers)

			total := 0
			for _, st := range g.Stages() {
				for _, node := range st.Nodes {
					total++
					stage, node := st.Name, node
					eg.Go(func() error {
						seedCfg := base
						seedCfg.SeedNodes = []int{node}
						traj, err := dynamics.Integrate(g, seedCfg)
						if err != nil {
							return fmt.Errorf("seed %d: %w", node, err)
						}
						cross, reached := biomarker.FirstCrossing(traj.T, traj.GlobalLoad, threshold)
						out := sweepOutcome{Stage: stage, Node: node, Reached: reached}
						if reached {
							out.Time = cross.Time
						}
						mu.Lock()
						outcomes = append(outcomes, out)
						mu.Unlock()
						return nil
					})
				}
			}

			logger.Info("seeding sweep", "seeds", total, "workers", workers, "threshold", threshold)
			if err := eg.Wait(); err != nil {
				return err
			}

			envelopes := aggregateSweep(g, outcomes)
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"threshold": threshold,
					"stages":    envelopes,
				})
			}
			for _, env := range envelopes {
				if env.Reached == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d seeds, none reached %.2f\n", env.Stage, env.Seeds, threshold)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d/%d reached  t mean=%.2f min=%.2f max=%.2f\n",
					env.Stage, env.Reached, env.Seeds, env.MeanTime, env.MinTime, env.MaxTime)
			}
			return nil
		},
	}

	cmd.Flags().String("data", "", "Data directory with the connectome tables")
	cmd.Flags().Float64("threshold", 0.5, "Global load threshold")
	cmd.Flags().Int("workers", 0, "Parallel simulations (0 = number of CPUs)")

	return cmd
}

// aggregateSweep folds per-seed outcomes into per-stage envelopes, keeping
// the graph's stage order.
func aggregateSweep(g *graphctx.Context, outcomes []sweepOutcome) []stageEnvelope {
	byStage := make(map[string][]sweepOutcome)
	for _, out := range outcomes {
		byStage[out.Stage] = append(byStage[out.Stage], out)
	}

	envelopes := make([]stageEnvelope, 0, len(g.Stages()))
	for _, st := range g.Stages() {
		env := stageEnvelope{Stage: st.Name, Seeds: len(byStage[st.Name]), MinTime: math.Inf(1)}
		var sum float64
		for _, out := range byStage[st.Name] {
			if !out.Reached {
				continue
			}
			env.Reached++
			sum += out.Time
			if out.Time < env.MinTime {
				env.MinTime = out.Time
			}
			if out.Time > env.MaxTime {
				env.MaxTime = out.Time
			}
		}
		if env.Reached > 0 {
			env.MeanTime = sum / float64(env.Reached)
		} else {
			env.MinTime = 0
		}
		envelopes = append(envelopes, env)
	}
	return envelopes
}
