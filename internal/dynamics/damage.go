package dynamics

import (
	"math"

	"github.com/neurodyn/tauspread/internal/vecmath"
)

// applyDamage degrades the operator in place according to the law, driven by
// the per-node state x (cumulative exposure for linear and exponential damage
// on the clearance path, concentration everywhere else). Damage is
// cumulative: each step scales the operator that survived the previous step,
// so connectivity never recovers.
func applyDamage(lap *vecmath.Dense, law DamageLaw, x []float64, kappa float64) {
	switch law {
	case DamageLinear:
		lap.Apply(func(i, j int, v float64) float64 {
			scale := (2 - x[i] - x[j]) / 2
			if scale < 0 {
				scale = 0
			}
			return v * scale
		})

	case DamageExponential:
		norm := math.Exp(2*kappa) - 1
		lap.Apply(func(i, j int, v float64) float64 {
			scale := (math.Exp(2*kappa-x[i]-x[j]) - 1) / norm
			if scale < 0 {
				scale = 0
			}
			return v * scale
		})
		// Remaining structural integrity cannot be negative.
		lap.ClampMin(0)

	case DamageNonlinear:
		lap.Apply(func(i, j int, v float64) float64 {
			return v * (1 - x[i]*x[j])
		})
	}
}

// LinearDamageScale returns the edge scale factor of the linear law for
// exposures a and b, floored at zero.
func LinearDamageScale(a, b float64) float64 {
	scale := (2 - a - b) / 2
	if scale < 0 {
		return 0
	}
	return scale
}

// ExponentialDamageScale returns the edge scale factor of the exponential
// law for exposures a and b under decay rate kappa, floored at zero.
func ExponentialDamageScale(a, b, kappa float64) float64 {
	scale := (math.Exp(2*kappa-a-b) - 1) / (math.Exp(2*kappa) - 1)
	if scale < 0 {
		return 0
	}
	return scale
}
