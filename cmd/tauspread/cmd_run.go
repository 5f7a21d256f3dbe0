package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neurodyn/tauspread/internal/biomarker"
	"github.com/neurodyn/tauspread/internal/logging"
	"github.com/neurodyn/tauspread/internal/render"
	"github.com/neurodyn/tauspread/internal/store"
	"github.com/neurodyn/tauspread/internal/vecmath"

	"github.com/neurodyn/tauspread/internal/dynamics"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Integrate the configured model over the connectome",
		Long: `Run a single integration of the configured model, write the stage-mean
chart, and record the run with its summary curves in the run database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			noSave, _ := cmd.Flags().GetBool("no-save")
			noChart, _ := cmd.Flags().GetBool("no-chart")

			if dir, _ := cmd.Flags().GetString("data"); dir != "" {
				cfg.Data.Dir = dir
			}
			if dir, _ := cmd.Flags().GetString("out"); dir != "" {
				cfg.Output.Dir = dir
			}
			if law, _ := cmd.Flags().GetString("damage"); law != "" {
				cfg.Run.Damage = law
			}

			g, err := loadContext(cfg)
			if err != nil {
				return err
			}

			runCfg, err := cfg.Dynamics()
			if err != nil {
				return err
			}
			runCfg.GlobalLoad = true

			logger.Info("integrating",
				"nodes", g.N(),
				"clearance", runCfg.Clearance,
				"damage", runCfg.Damage.String(),
				"tmax", runCfg.TMax,
				"dt", runCfg.Dt)

			traj, err := dynamics.Integrate(g, runCfg)
			if err != nil {
				return fmt.Errorf("integrate: %w", err)
			}
			means := biomarker.StageMeans(traj.C, g.Stages())

			runLog := logging.NewRunLogger(cfg.Output.Dir, cfg.Logging.Level)
			defer runLog.Close()
			runLog.Log(map[string]any{
				"event": "run",
				"nodes": g.N(),
				"steps": traj.Steps(),
				"final": traj.GlobalLoad[traj.Steps()-1],
			})
			if logging.ParseLevel(cfg.Logging.Level) == logging.LevelTrace {
				for k := 0; k < traj.Steps(); k++ {
					runLog.Log(map[string]any{
						"event": "step",
						"step":  k,
						"t":     traj.T[k],
						"load":  traj.GlobalLoad[k],
						"c_max": vecmath.MaxVec(traj.C[k]),
					})
				}
			}

			var runID string
			if !noSave {
				runID, err = saveRun(cfg.Output.Dir, variantName(runCfg), g.N(), runCfg, traj, means)
				if err != nil {
					return err
				}
			}

			chartPath := ""
			if !noChart {
				chartPath = filepath.Join(cfg.Output.Dir, "stage_means.png")
				stageNames := make([]string, len(g.Stages()))
				for i, st := range g.Stages() {
					stageNames[i] = st.Name
				}
				err := writeChart(chartPath, func(f *os.File) error {
					return render.StageMeanChart(f, "stage mean concentration", traj, stageNames, means)
				})
				if err != nil {
					return err
				}
			}

			summary := map[string]any{
				"model":       variantName(runCfg),
				"nodes":       g.N(),
				"steps":       traj.Steps(),
				"global_load": traj.GlobalLoad[traj.Steps()-1],
			}
			if runID != "" {
				summary["run_id"] = runID
			}
			if chartPath != "" {
				summary["chart"] = chartPath
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model:       %s\n", summary["model"])
			fmt.Fprintf(cmd.OutOrStdout(), "nodes:       %d\n", g.N())
			fmt.Fprintf(cmd.OutOrStdout(), "steps:       %d\n", traj.Steps())
			fmt.Fprintf(cmd.OutOrStdout(), "final load:  %.4f\n", summary["global_load"])
			if runID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "run id:      %s\n", runID)
			}
			if chartPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "chart:       %s\n", chartPath)
			}
			return nil
		},
	}

	cmd.Flags().String("data", "", "Data directory with the connectome tables")
	cmd.Flags().String("out", "", "Output directory for charts and the run database")
	cmd.Flags().String("damage", "", "Damage law: none, linear, exp, or nonlinear")
	cmd.Flags().Bool("no-save", false, "Skip recording the run in the database")
	cmd.Flags().Bool("no-chart", false, "Skip writing the stage-mean chart")

	return cmd
}

// variantName labels a single run by its mechanism settings.
func variantName(cfg dynamics.Config) string {
	switch {
	case cfg.Damage != dynamics.DamageNone:
		return cfg.Damage.String()
	case cfg.Clearance:
		return string(dynamics.VariantCoupled)
	default:
		return string(dynamics.VariantFKPP)
	}
}

// saveRun records a finished run and its summary curves.
func saveRun(dir, variant string, nodes int, cfg dynamics.Config, traj *dynamics.Trajectory, means map[string][]float64) (string, error) {
	s, err := store.Open(dir)
	if err != nil {
		return "", err
	}
	defer s.Close()

	curves := make(map[string][]store.CurvePoint, len(means)+1)
	for name, curve := range means {
		curves[name] = curvePoints(traj.T, curve)
	}
	if len(traj.GlobalLoad) > 0 {
		curves["global"] = curvePoints(traj.T, traj.GlobalLoad)
	}

	rec := store.RunRecord{
		Variant: variant,
		Nodes:   nodes,
		Steps:   traj.Steps(),
		TMax:    cfg.TMax,
		Dt:      cfg.Dt,
		Config:  cfg,
	}
	saved, err := s.SaveRun(context.Background(), rec, curves)
	if err != nil {
		return "", err
	}
	return saved.ID, nil
}

func curvePoints(t, curve []float64) []store.CurvePoint {
	points := make([]store.CurvePoint, len(curve))
	for i, v := range curve {
		points[i] = store.CurvePoint{Step: i, T: t[i], Value: v}
	}
	return points
}
