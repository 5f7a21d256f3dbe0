// Package dynamics implements the propagation models: explicit Euler
// integration of the FKPP reaction-diffusion system on the brain graph,
// optional coupled clearance dynamics, and progressive damage of the
// diffusion operator. All state is per-run; a run clones the context's
// Laplacian and never mutates shared data.
package dynamics

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSeeds indicates an empty seed set.
	ErrNoSeeds = errors.New("dynamics: seed set is empty")

	// ErrSeedOutOfRange indicates a seed index outside [0, N).
	ErrSeedOutOfRange = errors.New("dynamics: seed node out of range")

	// ErrBadStep indicates a non-positive time step.
	ErrBadStep = errors.New("dynamics: dt must be positive")

	// ErrBadHorizon indicates a non-positive time horizon.
	ErrBadHorizon = errors.New("dynamics: tmax must be positive")

	// ErrBadKappa indicates a non-positive decay rate for the exponential
	// damage law.
	ErrBadKappa = errors.New("dynamics: kappa must be positive")

	// ErrUnknownDamageLaw indicates an unrecognized damage law name or value.
	ErrUnknownDamageLaw = errors.New("dynamics: unknown damage law")
)

// DamageLaw selects how the diffusion operator degrades as exposure or
// concentration accumulates.
type DamageLaw int

const (
	// DamageNone leaves the operator untouched; every step reuses the
	// original Laplacian.
	DamageNone DamageLaw = iota

	// DamageLinear scales each edge by clamp((2 - x_a - x_b) / 2, 0, inf).
	DamageLinear

	// DamageExponential scales each edge by
	// clamp((exp(2k - x_a - x_b) - 1) / (exp(2k) - 1), 0, inf) and then
	// floors the operator at zero.
	DamageExponential

	// DamageNonlinear scales each edge by 1 - c_a*c_b, driven by
	// concentration rather than exposure, with no clamping.
	DamageNonlinear
)

// String returns the configuration name of the law.
func (d DamageLaw) String() string {
	switch d {
	case DamageNone:
		return "none"
	case DamageLinear:
		return "linear"
	case DamageExponential:
		return "exp"
	case DamageNonlinear:
		return "nonlinear"
	default:
		return fmt.Sprintf("DamageLaw(%d)", int(d))
	}
}

// ParseDamageLaw maps a configuration string to a DamageLaw.
func ParseDamageLaw(s string) (DamageLaw, error) {
	switch s {
	case "none", "":
		return DamageNone, nil
	case "linear":
		return DamageLinear, nil
	case "exp", "exponential":
		return DamageExponential, nil
	case "nonlinear":
		return DamageNonlinear, nil
	default:
		return DamageNone, fmt.Errorf("%w: %q", ErrUnknownDamageLaw, s)
	}
}

// Params holds the rate constants of the coupled concentration-clearance
// system.
type Params struct {
	// Alpha is the nonlinear reaction (misfolding) rate.
	Alpha float64

	// Rho is the effective diffusion coefficient.
	Rho float64

	// Beta is the global kinetic constant for node vulnerability.
	Beta float64

	// LCrit is the critical clearance value below which concentration grows.
	LCrit float64

	// LInf is the global minimum clearance level.
	LInf float64

	// Kappa is the relative connectivity deterioration rate for the
	// exponential damage law.
	Kappa float64
}

// DefaultParams returns the rate constants of the growth-dominated regime
// used throughout the study.
func DefaultParams() Params {
	return Params{
		Alpha: 2.1,
		Rho:   0.01,
		Beta:  1,
		LCrit: 0.72,
		LInf:  0.01,
		Kappa: 1,
	}
}

// Config describes a single integration run.
type Config struct {
	// Params are the model rate constants.
	Params Params

	// SeedNodes are the 0-based indices receiving the initial concentration.
	SeedNodes []int

	// SeedValue is the initial concentration placed on each seed node.
	SeedValue float64

	// InitialClearance is the uniform initial clearance level, used only
	// when Clearance is set.
	InitialClearance float64

	// TMax is the time horizon; the trajectory covers [0, TMax) in steps
	// of Dt.
	TMax float64

	// Dt is the explicit Euler step size. Stability under the chosen rate
	// constants is the caller's responsibility.
	Dt float64

	// MassConservation scales the diffusion term by per-node volume.
	MassConservation bool

	// Clearance couples the clearance and exposure equations to the
	// concentration dynamics.
	Clearance bool

	// Damage selects the operator damage law.
	Damage DamageLaw

	// TrackOperators retains a snapshot of the diffusion operator after
	// every step.
	TrackOperators bool

	// GlobalLoad computes the normalized total-concentration biomarker
	// curve alongside the trajectory.
	GlobalLoad bool
}

// DefaultConfig returns the baseline clearance-coupled configuration with
// the entorhinal seed pair of the 83-region parcellation.
func DefaultConfig() Config {
	return Config{
		Params:           DefaultParams(),
		SeedNodes:        []int{26, 67},
		SeedValue:        1.0 / 20,
		InitialClearance: 0.5,
		TMax:             80,
		Dt:               0.1,
		MassConservation: true,
		Clearance:        true,
		Damage:           DamageNone,
	}
}

// Validate rejects configurations the integrator cannot run. n is the number
// of graph nodes. Configuration errors are reported before any integration
// work begins.
func (c Config) Validate(n int) error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: got %g", ErrBadStep, c.Dt)
	}
	if c.TMax <= 0 {
		return fmt.Errorf("%w: got %g", ErrBadHorizon, c.TMax)
	}
	if len(c.SeedNodes) == 0 {
		return ErrNoSeeds
	}
	for _, s := range c.SeedNodes {
		if s < 0 || s >= n {
			return fmt.Errorf("%w: node %d not in [0, %d)", ErrSeedOutOfRange, s, n)
		}
	}
	if c.Damage < DamageNone || c.Damage > DamageNonlinear {
		return fmt.Errorf("%w: %d", ErrUnknownDamageLaw, int(c.Damage))
	}
	if c.Damage == DamageExponential && c.Params.Kappa <= 0 {
		return fmt.Errorf("%w: got %g", ErrBadKappa, c.Params.Kappa)
	}
	return nil
}
