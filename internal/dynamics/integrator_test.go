package dynamics

import (
	"errors"
	"math"
	"testing"

	"github.com/neurodyn/tauspread/internal/biomarker"
	"github.com/neurodyn/tauspread/internal/graphctx"
	"github.com/neurodyn/tauspread/internal/vecmath"
)

// singleNode builds a one-node context with no edges and unit volume.
func singleNode(t *testing.T) *graphctx.Context {
	t.Helper()
	g, err := graphctx.New(vecmath.NewDense(1, 1), []float64{1}, nil,
		[]graphctx.Stage{{Name: "only", Nodes: []int{0}}})
	if err != nil {
		t.Fatalf("singleNode: %v", err)
	}
	return g
}

// twoNode builds a two-node context connected by one edge of weight 1.
func twoNode(t *testing.T) *graphctx.Context {
	t.Helper()
	adj := vecmath.NewDense(2, 2)
	adj.Set(0, 1, 1)
	adj.Set(1, 0, 1)
	g, err := graphctx.New(adj, []float64{1, 1}, nil,
		[]graphctx.Stage{{Name: "left", Nodes: []int{0}}, {Name: "right", Nodes: []int{1}}})
	if err != nil {
		t.Fatalf("twoNode: %v", err)
	}
	return g
}

func TestConfigValidation(t *testing.T) {
	base := Config{
		Params:    DefaultParams(),
		SeedNodes: []int{0},
		SeedValue: 0.1,
		TMax:      1,
		Dt:        0.1,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, ErrBadStep},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }, ErrBadStep},
		{"zero horizon", func(c *Config) { c.TMax = 0 }, ErrBadHorizon},
		{"no seeds", func(c *Config) { c.SeedNodes = nil }, ErrNoSeeds},
		{"seed out of range", func(c *Config) { c.SeedNodes = []int{2} }, ErrSeedOutOfRange},
		{"negative seed", func(c *Config) { c.SeedNodes = []int{-1} }, ErrSeedOutOfRange},
		{"unknown damage law", func(c *Config) { c.Damage = DamageLaw(9) }, ErrUnknownDamageLaw},
		{"bad kappa", func(c *Config) { c.Damage = DamageExponential; c.Params.Kappa = 0 }, ErrBadKappa},
	}

	g := twoNode(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.SeedNodes = append([]int(nil), base.SeedNodes...)
			tt.mutate(&cfg)
			_, err := Integrate(g, cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Integrate error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitialConditions(t *testing.T) {
	g := twoNode(t)
	cfg := Config{
		Params:           DefaultParams(),
		SeedNodes:        []int{1},
		SeedValue:        0.25,
		InitialClearance: 0.5,
		TMax:             1,
		Dt:               0.1,
		Clearance:        true,
	}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	if tr.C[0][0] != 0 || tr.C[0][1] != 0.25 {
		t.Errorf("c[0] = %v, want [0 0.25]", tr.C[0])
	}
	for j, v := range tr.L[0] {
		if v != 0.5 {
			t.Errorf("l[0][%d] = %v, want uniform 0.5", j, v)
		}
	}
	for j, v := range tr.Q[0] {
		if v != 0 {
			t.Errorf("q[0][%d] = %v, want 0", j, v)
		}
	}
}

func TestTimeGrid(t *testing.T) {
	g := singleNode(t)
	cfg := Config{Params: DefaultParams(), SeedNodes: []int{0}, SeedValue: 0.5, TMax: 5, Dt: 0.1}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	// [0, tmax) exclusive: 50 steps, last at 4.9.
	if tr.Steps() != 50 {
		t.Fatalf("Steps = %d, want 50", tr.Steps())
	}
	if tr.T[0] != 0 {
		t.Errorf("T[0] = %v, want 0", tr.T[0])
	}
	if math.Abs(tr.T[49]-4.9) > 1e-12 {
		t.Errorf("T[49] = %v, want 4.9", tr.T[49])
	}
}

func TestLogisticGrowthSingleNode(t *testing.T) {
	// With rho = 0 and one node the FKPP equation reduces to logistic
	// growth: c must increase monotonically toward 1 from c0 in (0,1).
	g := singleNode(t)
	cfg := Config{
		Params:    Params{Alpha: 1, Rho: 0},
		SeedNodes: []int{0},
		SeedValue: 0.5,
		TMax:      5,
		Dt:        0.1,
	}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	for i := 1; i < tr.Steps(); i++ {
		if tr.C[i][0] <= tr.C[i-1][0] {
			t.Fatalf("step %d: c not strictly increasing: %v -> %v", i, tr.C[i-1][0], tr.C[i][0])
		}
		if tr.C[i][0] >= 1 {
			t.Fatalf("step %d: c = %v exceeded carrying capacity", i, tr.C[i][0])
		}
	}
	if final := tr.C[tr.Steps()-1][0]; final < 0.9 {
		t.Errorf("final concentration %v, want approach to 1", final)
	}
}

func TestCoupledFrozenConcentration(t *testing.T) {
	// With alpha = rho = 0, clearance pinned at l_crit, and beta = 0, every
	// right-hand side vanishes: c stays at its seed value and l stays at l0.
	g := singleNode(t)
	cfg := Config{
		Params:           Params{Alpha: 0, Rho: 0, Beta: 0, LCrit: 0.8, LInf: 0.01},
		SeedNodes:        []int{0},
		SeedValue:        0.3,
		InitialClearance: 0.8,
		TMax:             20,
		Dt:               0.1,
		Clearance:        true,
	}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	for i := 0; i < tr.Steps(); i++ {
		if math.Abs(tr.C[i][0]-0.3) > 1e-12 {
			t.Fatalf("step %d: c drifted to %v at the coupled fixed point", i, tr.C[i][0])
		}
		if tr.L[i][0] != 0.8 {
			t.Fatalf("step %d: l drifted to %v with beta=0", i, tr.L[i][0])
		}
	}
}

func TestClearanceRelaxesTowardLInf(t *testing.T) {
	// With a positive seed, l relaxes monotonically from l0 toward l_inf
	// and never undershoots it.
	g := singleNode(t)
	cfg := Config{
		Params:           Params{Alpha: 0, Rho: 0, Beta: 1, LCrit: 0.72, LInf: 0.01},
		SeedNodes:        []int{0},
		SeedValue:        0.3,
		InitialClearance: 0.8,
		TMax:             5,
		Dt:               0.1,
		Clearance:        true,
	}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	last := tr.Steps() - 1
	for i := 1; i <= last; i++ {
		if tr.L[i][0] > tr.L[i-1][0] {
			t.Fatalf("step %d: l increased from %v to %v", i, tr.L[i-1][0], tr.L[i][0])
		}
		if tr.L[i][0] < cfg.Params.LInf-1e-9 {
			t.Fatalf("step %d: l = %v undershot l_inf", i, tr.L[i][0])
		}
	}
	if tr.L[last][0] >= cfg.InitialClearance {
		t.Errorf("final l = %v, want decline from %v", tr.L[last][0], cfg.InitialClearance)
	}
}

func TestCoupledNoSeedNoClearanceChange(t *testing.T) {
	// A zero seed value means no concentration anywhere, so clearance must
	// stay flat at l0.
	g := singleNode(t)
	cfg := Config{
		Params:           Params{Alpha: 0, Rho: 0, Beta: 1, LCrit: 0, LInf: 0.01},
		SeedNodes:        []int{0},
		SeedValue:        0,
		InitialClearance: 0.8,
		TMax:             5,
		Dt:               0.1,
		Clearance:        true,
	}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	for i := 0; i < tr.Steps(); i++ {
		if tr.L[i][0] != 0.8 {
			t.Fatalf("step %d: l = %v, want flat 0.8", i, tr.L[i][0])
		}
	}
}

func TestDiffusionEqualizesTwoNodes(t *testing.T) {
	// Pure diffusion over one unit edge: mass splits 50/50 and total mass
	// is conserved.
	g := twoNode(t)
	cfg := Config{
		Params:    Params{Alpha: 0, Rho: 0.1},
		SeedNodes: []int{0},
		SeedValue: 1,
		TMax:      100,
		Dt:        0.1,
	}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	last := tr.C[tr.Steps()-1]
	if math.Abs(last[0]-last[1]) > 1e-6 {
		t.Errorf("nodes did not equalize: %v vs %v", last[0], last[1])
	}
	if math.Abs(last[0]-0.5) > 1e-6 {
		t.Errorf("node 0 = %v, want 0.5 (half the seeded mass)", last[0])
	}
	for i := 0; i < tr.Steps(); i++ {
		if total := tr.C[i][0] + tr.C[i][1]; math.Abs(total-1) > 1e-9 {
			t.Fatalf("step %d: total mass %v, want 1", i, total)
		}
	}
}

func TestGlobalLoadNormalization(t *testing.T) {
	g := twoNode(t)
	cfg := Config{
		Params:     Params{Alpha: 1, Rho: 0.05},
		SeedNodes:  []int{0},
		SeedValue:  0.1,
		TMax:       20,
		Dt:         0.1,
		GlobalLoad: true,
	}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if got := vecmath.MaxVec(tr.GlobalLoad); got != 1 {
		t.Errorf("max global load = %v, want exactly 1", got)
	}
}

func TestGlobalLoadDegenerate(t *testing.T) {
	g := twoNode(t)
	cfg := Config{
		Params:     DefaultParams(),
		SeedNodes:  []int{0},
		SeedValue:  0,
		TMax:       1,
		Dt:         0.1,
		GlobalLoad: true,
	}

	_, err := Integrate(g, cfg)
	if !errors.Is(err, biomarker.ErrDegenerateLoad) {
		t.Errorf("Integrate error = %v, want ErrDegenerateLoad", err)
	}
}

func TestOperatorSnapshots(t *testing.T) {
	g := twoNode(t)
	cfg := Config{
		Params:           DefaultParams(),
		SeedNodes:        []int{0},
		SeedValue:        0.5,
		InitialClearance: 0.5,
		TMax:             2,
		Dt:               0.1,
		Clearance:        true,
		Damage:           DamageLinear,
		TrackOperators:   true,
	}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	if len(tr.Operators) != tr.Steps() {
		t.Fatalf("got %d snapshots for %d steps", len(tr.Operators), tr.Steps())
	}

	// Snapshot 0 is the pristine Laplacian.
	pristine := g.Laplacian()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if tr.Operators[0].At(i, j) != pristine.At(i, j) {
				t.Fatalf("snapshot 0 differs from pristine Laplacian at (%d,%d)", i, j)
			}
		}
	}

	// Linear damage never amplifies connectivity: entry magnitudes are
	// monotonically non-increasing across snapshots.
	for k := 1; k < len(tr.Operators); k++ {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				prev := math.Abs(tr.Operators[k-1].At(i, j))
				cur := math.Abs(tr.Operators[k].At(i, j))
				if cur > prev+1e-12 {
					t.Fatalf("snapshot %d amplified (%d,%d): %v -> %v", k, i, j, prev, cur)
				}
			}
		}
	}
}

func TestNonlinearDamageConcentrationDriven(t *testing.T) {
	// With growth and diffusion off and l0 pinned at l_crit, concentration
	// is frozen at the seed value while exposure q still accumulates. The
	// nonlinear law must erode edges from concentration, so one step scales
	// the coupling by 1 - c0^2, not by 1 - q^2.
	g := twoNode(t)
	p := DefaultParams()
	p.Alpha = 0
	p.Rho = 0
	cfg := Config{
		Params:           p,
		SeedNodes:        []int{0, 1},
		SeedValue:        0.5,
		InitialClearance: p.LCrit,
		TMax:             1,
		Dt:               0.1,
		Clearance:        true,
		Damage:           DamageNonlinear,
		TrackOperators:   true,
	}

	tr, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	if got := tr.C[1][0]; got != 0.5 {
		t.Fatalf("c[1][0] = %v, want frozen at 0.5", got)
	}
	if got := tr.Q[1][0]; got != 0.05 {
		t.Fatalf("q[1][0] = %v, want 0.05", got)
	}

	want := -(1 - 0.5*0.5)
	if got := tr.Operators[1].At(0, 1); math.Abs(got-want) > 1e-12 {
		t.Errorf("operator(0,1) after one step = %v, want %v", got, want)
	}
}

func TestRunsAreIndependent(t *testing.T) {
	// Damage-enabled runs must start from a pristine operator every time:
	// repeating the same run yields identical trajectories and leaves the
	// context untouched.
	g := twoNode(t)
	before := g.Laplacian().Clone()

	cfg := Config{
		Params:           DefaultParams(),
		SeedNodes:        []int{0},
		SeedValue:        0.5,
		InitialClearance: 0.5,
		TMax:             5,
		Dt:               0.1,
		Clearance:        true,
		Damage:           DamageExponential,
	}

	first, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for i := 0; i < first.Steps(); i++ {
		for j := 0; j < 2; j++ {
			if first.C[i][j] != second.C[i][j] {
				t.Fatalf("step %d node %d: runs diverged: %v vs %v", i, j, first.C[i][j], second.C[i][j])
			}
		}
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if g.Laplacian().At(i, j) != before.At(i, j) {
				t.Fatalf("context Laplacian mutated at (%d,%d)", i, j)
			}
		}
	}
}

func TestMassConservationScalesDiffusion(t *testing.T) {
	// Unequal volumes change only the diffusion scaling, so the
	// volume-weighted run must differ from the unweighted one.
	adj := vecmath.NewDense(2, 2)
	adj.Set(0, 1, 1)
	adj.Set(1, 0, 1)
	g, err := graphctx.New(adj, []float64{1, 4}, nil,
		[]graphctx.Stage{{Name: "all", Nodes: []int{0, 1}}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cfg := Config{
		Params:    Params{Alpha: 0, Rho: 0.1},
		SeedNodes: []int{0},
		SeedValue: 1,
		TMax:      5,
		Dt:        0.1,
	}

	plain, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}

	cfg.MassConservation = true
	weighted, err := Integrate(g, cfg)
	if err != nil {
		t.Fatalf("weighted: %v", err)
	}

	last := plain.Steps() - 1
	if plain.C[last][1] == weighted.C[last][1] {
		t.Error("volume scaling had no effect on diffusion")
	}
}
