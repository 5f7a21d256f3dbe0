package dynamics

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/neurodyn/tauspread/internal/graphctx"
)

// Variant names one of the four model configurations compared in the study.
type Variant string

const (
	// VariantFKPP is the plain growth-diffusion model, no clearance or damage.
	VariantFKPP Variant = "fkpp"

	// VariantCoupled couples clearance to the concentration dynamics.
	VariantCoupled Variant = "coupled"

	// VariantLinearDamage adds linearly modulated connectivity damage.
	VariantLinearDamage Variant = "linear"

	// VariantExponentialDamage adds exponentially modulated connectivity damage.
	VariantExponentialDamage Variant = "exp"
)

// Variants lists the comparison variants in presentation order.
func Variants() []Variant {
	return []Variant{VariantFKPP, VariantCoupled, VariantLinearDamage, VariantExponentialDamage}
}

// Comparison bundles the trajectories of all four variants run under a
// shared seed, parameter set, and base topology, so that only the studied
// mechanism differs between them.
type Comparison struct {
	// T is the shared time vector.
	T []float64

	// Runs holds one trajectory per variant.
	Runs map[Variant]*Trajectory
}

// RunAll integrates all four model variants from the base configuration.
// The base clearance and damage settings are overridden per variant;
// everything else (seeds, c0, l0, rates, horizon, step) is shared. The runs
// are independent and execute in parallel, each owning its own operator
// copy.
func RunAll(g *graphctx.Context, base Config) (*Comparison, error) {
	if err := base.Validate(g.N()); err != nil {
		return nil, err
	}

	configs := map[Variant]Config{
		VariantFKPP:              variantConfig(base, false, DamageNone),
		VariantCoupled:           variantConfig(base, true, DamageNone),
		VariantLinearDamage:      variantConfig(base, true, DamageLinear),
		VariantExponentialDamage: variantConfig(base, true, DamageExponential),
	}

	runs := make(map[Variant]*Trajectory, len(configs))
	var eg errgroup.Group
	results := make([]*Trajectory, len(configs))
	order := Variants()

	for idx, variant := range order {
		idx, cfg := idx, configs[variant]
		eg.Go(func() error {
			tr, err := Integrate(g, cfg)
			if err != nil {
				return fmt.Errorf("variant %s: %w", order[idx], err)
			}
			results[idx] = tr
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for idx, variant := range order {
		runs[variant] = results[idx]
	}
	return &Comparison{T: runs[VariantFKPP].T, Runs: runs}, nil
}

func variantConfig(base Config, clearance bool, law DamageLaw) Config {
	cfg := base
	cfg.Clearance = clearance
	cfg.Damage = law
	if law == DamageNone {
		// Operator history is flat without damage; skip the snapshots.
		cfg.TrackOperators = false
	}
	return cfg
}
