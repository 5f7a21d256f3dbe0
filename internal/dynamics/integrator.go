package dynamics

import (
	"math"

	"github.com/neurodyn/tauspread/internal/biomarker"
	"github.com/neurodyn/tauspread/internal/graphctx"
	"github.com/neurodyn/tauspread/internal/vecmath"
)

// Trajectory is the full result of one integration run. Every field is owned
// by the caller; nothing is shared across runs.
type Trajectory struct {
	// T holds the time value of each step: T[k] = k*Dt, covering [0, TMax).
	T []float64

	// C holds the concentration vector per step (steps × nodes).
	C [][]float64

	// L holds the clearance vector per step; nil unless clearance was
	// enabled.
	L [][]float64

	// Q holds the cumulative exposure vector per step; nil unless clearance
	// was enabled.
	Q [][]float64

	// GlobalLoad is the normalized total-concentration biomarker curve;
	// nil unless requested.
	GlobalLoad []float64

	// Operators is the append-only log of diffusion-operator snapshots,
	// one per step, starting with the pristine Laplacian; nil unless
	// requested. Each snapshot is immutable once recorded.
	Operators []*vecmath.Dense
}

// Steps returns the number of time steps in the trajectory.
func (tr *Trajectory) Steps() int { return len(tr.T) }

// Integrate advances the configured system over the full horizon with the
// explicit Euler scheme and returns the trajectory. The run owns a private
// copy of the context's Laplacian; g is never mutated. Numerical divergence
// under an unstable dt is not detected: NaN or Inf values propagate into the
// output arrays.
func Integrate(g *graphctx.Context, cfg Config) (*Trajectory, error) {
	n := g.N()
	if err := cfg.Validate(n); err != nil {
		return nil, err
	}

	steps := int(math.Ceil(cfg.TMax / cfg.Dt))
	if steps < 1 {
		steps = 1
	}

	tr := &Trajectory{
		T: make([]float64, steps),
		C: makeGrid(steps, n),
	}
	for k := range tr.T {
		tr.T[k] = float64(k) * cfg.Dt
	}
	for _, s := range cfg.SeedNodes {
		tr.C[0][s] = cfg.SeedValue
	}

	// The run owns its operator; damage mutates this copy only.
	lap := g.CloneLaplacian()
	if cfg.TrackOperators {
		tr.Operators = append(tr.Operators, lap.Clone())
	}

	var volumes []float64
	if cfg.MassConservation {
		volumes = g.Volumes()
	}

	if cfg.Clearance {
		tr.L = makeGrid(steps, n)
		tr.Q = makeGrid(steps, n)
		vecmath.Fill(tr.L[0], cfg.InitialClearance)
		integrateCoupled(tr, lap, volumes, cfg, steps, n)
	} else {
		integrateFKPP(tr, lap, volumes, cfg, steps, n)
	}

	if cfg.GlobalLoad {
		load, err := biomarker.GlobalLoad(tr.C)
		if err != nil {
			return nil, err
		}
		tr.GlobalLoad = load
	}

	return tr, nil
}

// integrateFKPP runs the uncoupled growth-diffusion system:
//
//	dc/dt = -rho*(L c)/vol + alpha*c*(1 - c)
//
// The legacy damage path for this branch is driven by concentration.
func integrateFKPP(tr *Trajectory, lap *vecmath.Dense, volumes []float64, cfg Config, steps, n int) {
	p := cfg.Params
	diffusion := make([]float64, n)

	for i := 1; i < steps; i++ {
		prev := tr.C[i-1]
		cur := tr.C[i]
		lap.MulVec(diffusion, prev)

		for j := 0; j < n; j++ {
			d := diffusion[j]
			if volumes != nil {
				d /= volumes[j]
			}
			cur[j] = prev[j] + cfg.Dt*(-p.Rho*d+p.Alpha*prev[j]*(1-prev[j]))
		}

		applyDamage(lap, cfg.Damage, cur, p.Kappa)
		if cfg.TrackOperators {
			tr.Operators = append(tr.Operators, lap.Clone())
		}
	}
}

// integrateCoupled runs the clearance-coupled system:
//
//	dc/dt = -rho*(L c)/vol + (l_crit - l)*c - alpha*c^2
//	dl/dt = beta*c*(l_inf - l)
//	dq/dt = beta*c*(1 - q)
//
// All three updates read the previous step only (simultaneous update). The
// linear and exponential damage laws are driven by the cumulative exposure q;
// the nonlinear law stays concentration-driven in this branch too.
func integrateCoupled(tr *Trajectory, lap *vecmath.Dense, volumes []float64, cfg Config, steps, n int) {
	p := cfg.Params
	diffusion := make([]float64, n)

	for i := 1; i < steps; i++ {
		cPrev, lPrev, qPrev := tr.C[i-1], tr.L[i-1], tr.Q[i-1]
		cCur, lCur, qCur := tr.C[i], tr.L[i], tr.Q[i]
		lap.MulVec(diffusion, cPrev)

		for j := 0; j < n; j++ {
			d := diffusion[j]
			if volumes != nil {
				d /= volumes[j]
			}
			cCur[j] = cPrev[j] + cfg.Dt*(-p.Rho*d+(p.LCrit-lPrev[j])*cPrev[j]-p.Alpha*cPrev[j]*cPrev[j])
			lCur[j] = lPrev[j] + cfg.Dt*(p.Beta*cPrev[j]*(p.LInf-lPrev[j]))
			qCur[j] = qPrev[j] + cfg.Dt*(p.Beta*cPrev[j]*(1-qPrev[j]))
		}

		driver := qCur
		if cfg.Damage == DamageNonlinear {
			driver = cCur
		}
		applyDamage(lap, cfg.Damage, driver, p.Kappa)
		if cfg.TrackOperators {
			tr.Operators = append(tr.Operators, lap.Clone())
		}
	}
}

func makeGrid(steps, n int) [][]float64 {
	grid := make([][]float64, steps)
	for i := range grid {
		grid[i] = make([]float64, n)
	}
	return grid
}
