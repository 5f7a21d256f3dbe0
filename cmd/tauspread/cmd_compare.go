package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neurodyn/tauspread/internal/biomarker"
	"github.com/neurodyn/tauspread/internal/dynamics"
	"github.com/neurodyn/tauspread/internal/render"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run all four model variants and chart them together",
		Long: `Integrate the plain growth-diffusion model, the clearance-coupled model,
and the two damage variants under a shared seed and parameter set, then
render one comparison chart of per-stage mean curves and a global load
chart. Every variant's run is recorded in the run database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			noSave, _ := cmd.Flags().GetBool("no-save")

			if dir, _ := cmd.Flags().GetString("data"); dir != "" {
				cfg.Data.Dir = dir
			}
			if dir, _ := cmd.Flags().GetString("out"); dir != "" {
				cfg.Output.Dir = dir
			}

			g, err := loadContext(cfg)
			if err != nil {
				return err
			}

			base, err := cfg.Dynamics()
			if err != nil {
				return err
			}
			base.GlobalLoad = true

			logger.Info("running model comparison", "nodes", g.N(), "tmax", base.TMax)
			cmp, err := dynamics.RunAll(g, base)
			if err != nil {
				return fmt.Errorf("run variants: %w", err)
			}

			stagePath := filepath.Join(cfg.Output.Dir, "comparison.png")
			err = writeChart(stagePath, func(f *os.File) error {
				return render.ModelComparisonChart(f, cmp, g.Stages())
			})
			if err != nil {
				return err
			}
			globalPath := filepath.Join(cfg.Output.Dir, "global_load.png")
			err = writeChart(globalPath, func(f *os.File) error {
				return render.ComparisonChart(f, cmp)
			})
			if err != nil {
				return err
			}

			finals := make(map[string]float64, len(cmp.Runs))
			runIDs := make(map[string]string, len(cmp.Runs))
			for _, v := range dynamics.Variants() {
				traj := cmp.Runs[v]
				finals[string(v)] = traj.GlobalLoad[traj.Steps()-1]
				if noSave {
					continue
				}
				means := biomarker.StageMeans(traj.C, g.Stages())
				id, err := saveRun(cfg.Output.Dir, string(v), g.N(), base, traj, means)
				if err != nil {
					return err
				}
				runIDs[string(v)] = id
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"final_load": finals,
					"run_ids":    runIDs,
					"charts":     []string{stagePath, globalPath},
				})
			}
			for _, v := range dynamics.Variants() {
				line := fmt.Sprintf("%-10s final load %.4f", v, finals[string(v)])
				if id, ok := runIDs[string(v)]; ok {
					line += "  run " + id
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "charts: %s, %s\n", stagePath, globalPath)
			return nil
		},
	}

	cmd.Flags().String("data", "", "Data directory with the connectome tables")
	cmd.Flags().String("out", "", "Output directory for charts and the run database")
	cmd.Flags().Bool("no-save", false, "Skip recording the runs in the database")

	return cmd
}
