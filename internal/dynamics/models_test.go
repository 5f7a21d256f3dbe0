package dynamics

import (
	"errors"
	"testing"
)

func TestRunAllVariants(t *testing.T) {
	g := twoNode(t)
	base := Config{
		Params:           DefaultParams(),
		SeedNodes:        []int{0},
		SeedValue:        0.2,
		InitialClearance: 0.5,
		TMax:             10,
		Dt:               0.1,
	}

	cmp, err := RunAll(g, base)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	if len(cmp.Runs) != 4 {
		t.Fatalf("got %d runs, want 4", len(cmp.Runs))
	}
	for _, variant := range Variants() {
		tr, ok := cmp.Runs[variant]
		if !ok {
			t.Fatalf("missing variant %s", variant)
		}
		if tr.Steps() != len(cmp.T) {
			t.Errorf("variant %s has %d steps, want %d", variant, tr.Steps(), len(cmp.T))
		}
		// All variants share the same initial condition.
		if tr.C[0][0] != 0.2 || tr.C[0][1] != 0 {
			t.Errorf("variant %s c[0] = %v, want [0.2 0]", variant, tr.C[0])
		}
	}

	if cmp.Runs[VariantFKPP].L != nil {
		t.Error("fkpp variant should not carry clearance state")
	}
	for _, variant := range []Variant{VariantCoupled, VariantLinearDamage, VariantExponentialDamage} {
		if cmp.Runs[variant].L == nil || cmp.Runs[variant].Q == nil {
			t.Errorf("variant %s missing clearance/exposure state", variant)
		}
	}

	// The studied mechanism is the only difference: damage variants diverge
	// from the plain coupled run, and from each other.
	last := len(cmp.T) - 1
	coupled := cmp.Runs[VariantCoupled].C[last][1]
	linear := cmp.Runs[VariantLinearDamage].C[last][1]
	exp := cmp.Runs[VariantExponentialDamage].C[last][1]
	if coupled == linear && coupled == exp {
		t.Error("damage laws had no effect on the trajectories")
	}
}

func TestRunAllValidatesBase(t *testing.T) {
	g := twoNode(t)
	base := DefaultConfig()
	base.SeedNodes = nil

	if _, err := RunAll(g, base); !errors.Is(err, ErrNoSeeds) {
		t.Errorf("RunAll error = %v, want ErrNoSeeds", err)
	}
}

func TestParseDamageLaw(t *testing.T) {
	tests := []struct {
		in      string
		want    DamageLaw
		wantErr bool
	}{
		{"none", DamageNone, false},
		{"", DamageNone, false},
		{"linear", DamageLinear, false},
		{"exp", DamageExponential, false},
		{"exponential", DamageExponential, false},
		{"nonlinear", DamageNonlinear, false},
		{"quadratic", DamageNone, true},
	}

	for _, tt := range tests {
		got, err := ParseDamageLaw(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownDamageLaw) {
				t.Errorf("ParseDamageLaw(%q) error = %v, want ErrUnknownDamageLaw", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDamageLaw(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestDamageLawRoundTrip(t *testing.T) {
	for _, law := range []DamageLaw{DamageNone, DamageLinear, DamageExponential, DamageNonlinear} {
		parsed, err := ParseDamageLaw(law.String())
		if err != nil || parsed != law {
			t.Errorf("round trip %v -> %q -> %v, %v", law, law.String(), parsed, err)
		}
	}
}
