// Package config provides unified configuration loading for tauspread.
// Simulation parameters, data locations, and output settings are read from
// a YAML file; every field has a default so an empty file is valid.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/neurodyn/tauspread/internal/dynamics"
	"github.com/neurodyn/tauspread/internal/graphctx"
)

// Config contains all tauspread configuration settings.
type Config struct {
	// Data locates the tabular graph sources.
	Data DataConfig `yaml:"data"`

	// Model holds the rate constants of the propagation models.
	Model ModelConfig `yaml:"model"`

	// Run holds the per-run integration settings.
	Run RunConfig `yaml:"run"`

	// Output configures where results, charts, and the run database go.
	Output OutputConfig `yaml:"output"`

	// Logging configures log verbosity.
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig locates the graph context sources inside a data directory.
// File names default to the published connectome table names.
type DataConfig struct {
	// Dir is the directory holding the CSV tables.
	Dir string `yaml:"dir"`

	// Volumes, Positions, and Adjacency override the default file names.
	Volumes   string `yaml:"volumes,omitempty"`
	Positions string `yaml:"positions,omitempty"`
	Adjacency string `yaml:"adjacency,omitempty"`
}

// ModelConfig holds the model rate constants.
type ModelConfig struct {
	Alpha float64 `yaml:"alpha"`
	Rho   float64 `yaml:"rho"`
	Beta  float64 `yaml:"beta"`
	LCrit float64 `yaml:"l_crit"`
	LInf  float64 `yaml:"l_inf"`
	Kappa float64 `yaml:"kappa"`
}

// RunConfig holds the per-run integration settings. Seeds are 0-based node
// indices.
type RunConfig struct {
	Seeds            []int   `yaml:"seeds"`
	SeedValue        float64 `yaml:"c0"`
	InitialClearance float64 `yaml:"l0"`
	TMax             float64 `yaml:"tmax"`
	Dt               float64 `yaml:"dt"`
	MassConservation bool    `yaml:"mass_conservation"`
	Clearance        bool    `yaml:"clearance"`

	// Damage selects the operator damage law: "none", "linear", "exp",
	// or "nonlinear".
	Damage string `yaml:"damage"`

	TrackOperators bool `yaml:"track_operators"`
	GlobalLoad     bool `yaml:"global_load"`
}

// OutputConfig configures result destinations.
type OutputConfig struct {
	// Dir is where charts, animations, and the run database are written.
	Dir string `yaml:"dir"`
}

// LoggingConfig configures tauspread's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `yaml:"level"`
}

// Default returns the configuration corresponding to the baseline
// clearance-coupled run on the 83-region parcellation.
func Default() Config {
	run := dynamics.DefaultConfig()
	return Config{
		Data: DataConfig{
			Dir:       "databases",
			Volumes:   graphctx.VolumesFile,
			Positions: graphctx.PositionsFile,
			Adjacency: graphctx.AdjacencyFile,
		},
		Model: ModelConfig{
			Alpha: run.Params.Alpha,
			Rho:   run.Params.Rho,
			Beta:  run.Params.Beta,
			LCrit: run.Params.LCrit,
			LInf:  run.Params.LInf,
			Kappa: run.Params.Kappa,
		},
		Run: RunConfig{
			Seeds:            run.SeedNodes,
			SeedValue:        run.SeedValue,
			InitialClearance: run.InitialClearance,
			TMax:             run.TMax,
			Dt:               run.Dt,
			MassConservation: run.MassConservation,
			Clearance:        run.Clearance,
			Damage:           run.Damage.String(),
		},
		Output:  OutputConfig{Dir: "results"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file, layering it over the defaults. A missing
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Dynamics translates the config into an integrator configuration.
func (c Config) Dynamics() (dynamics.Config, error) {
	law, err := dynamics.ParseDamageLaw(c.Run.Damage)
	if err != nil {
		return dynamics.Config{}, err
	}
	return dynamics.Config{
		Params: dynamics.Params{
			Alpha: c.Model.Alpha,
			Rho:   c.Model.Rho,
			Beta:  c.Model.Beta,
			LCrit: c.Model.LCrit,
			LInf:  c.Model.LInf,
			Kappa: c.Model.Kappa,
		},
		SeedNodes:        append([]int(nil), c.Run.Seeds...),
		SeedValue:        c.Run.SeedValue,
		InitialClearance: c.Run.InitialClearance,
		TMax:             c.Run.TMax,
		Dt:               c.Run.Dt,
		MassConservation: c.Run.MassConservation,
		Clearance:        c.Run.Clearance,
		Damage:           law,
		TrackOperators:   c.Run.TrackOperators,
		GlobalLoad:       c.Run.GlobalLoad,
	}, nil
}
