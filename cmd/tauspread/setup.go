package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neurodyn/tauspread/internal/config"
	"github.com/neurodyn/tauspread/internal/graphctx"
	"github.com/neurodyn/tauspread/internal/logging"
)

// loadSetup reads the config file named by the persistent --config flag and
// builds the stderr logger, honoring a --log-level override.
func loadSetup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
	return cfg, logger, nil
}

// loadContext assembles the graph context from the configured data
// directory, honoring per-file name overrides.
func loadContext(cfg config.Config) (*graphctx.Context, error) {
	dir := cfg.Data.Dir
	name := func(override, fallback string) string {
		if override != "" {
			return filepath.Join(dir, override)
		}
		return filepath.Join(dir, fallback)
	}

	volumes, err := graphctx.LoadVolumes(name(cfg.Data.Volumes, graphctx.VolumesFile))
	if err != nil {
		return nil, fmt.Errorf("load volumes: %w", err)
	}
	positions, err := graphctx.LoadPositions(name(cfg.Data.Positions, graphctx.PositionsFile))
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	adjacency, err := graphctx.LoadAdjacency(name(cfg.Data.Adjacency, graphctx.AdjacencyFile))
	if err != nil {
		return nil, fmt.Errorf("load adjacency: %w", err)
	}
	stages, err := graphctx.BraakStages(adjacency.Rows())
	if err != nil {
		return nil, err
	}
	return graphctx.New(adjacency, volumes, positions, stages)
}

// writeChart creates path's parent directory and writes the chart through fn.
func writeChart(path string, fn func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}
