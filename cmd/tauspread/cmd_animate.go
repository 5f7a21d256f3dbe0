package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neurodyn/tauspread/internal/dynamics"
	"github.com/neurodyn/tauspread/internal/render"
)

func newAnimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "animate",
		Short: "Render the damage-operator evolution as an AVI animation",
		Long: `Run the configured model with operator snapshots enabled and render the
snapshot sequence as an MJPEG AVI heatmap, one frame per time step.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			fps, _ := cmd.Flags().GetInt("fps")

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
			if runCfg.Damage == dynamics.DamageNone {
				return fmt.Errorf("animation needs a damage law; pass --damage linear, exp, or nonlinear")
			}
			runCfg.TrackOperators = true

			logger.Info("rendering operator animation",
				"nodes", g.N(), "damage", runCfg.Damage.String(), "fps", fps)

			traj, err := dynamics.Integrate(g, runCfg)
			if err != nil {
				return fmt.Errorf("integrate: %w", err)
			}

			if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			path := filepath.Join(cfg.Output.Dir, "operators.avi")
			if err := render.OperatorAnimation(path, traj, fps); err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"animation": path,
					"frames":    len(traj.Operators),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d frames)\n", path, len(traj.Operators))
			return nil
		},
	}

	cmd.Flags().String("data", "", "Data directory with the connectome tables")
	cmd.Flags().String("out", "", "Output directory for the animation")
	cmd.Flags().String("damage", "", "Damage law: linear, exp, or nonlinear")
	cmd.Flags().Int("fps", 25, "Animation frame rate")

	return cmd
}
