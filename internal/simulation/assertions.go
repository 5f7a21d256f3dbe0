package simulation

import (
	"math"
	"testing"

	"github.com/neurodyn/tauspread/internal/biomarker"
)

// AssertBounded asserts that every concentration sample of every node stays
// within [min, max].
func AssertBounded(t *testing.T, result Result, min, max float64) {
	t.Helper()
	for step, row := range result.Traj.C {
		for node, v := range row {
			if v < min || v > max {
				t.Errorf("AssertBounded: step %d node %d: concentration %.6f not in [%.4f, %.4f]", step, node, v, min, max)
				return
			}
		}
	}
}

// AssertMonotoneNondecreasing asserts that a stage-mean curve never drops by
// more than tol between consecutive steps.
func AssertMonotoneNondecreasing(t *testing.T, result Result, stage string, tol float64) {
	t.Helper()
	curve, ok := result.StageMeans[stage]
	if !ok {
		t.Fatalf("AssertMonotoneNondecreasing: stage %s not found", stage)
	}
	for i := 1; i < len(curve); i++ {
		if curve[i] < curve[i-1]-tol {
			t.Errorf("AssertMonotoneNondecreasing: stage %s dropped %.6f -> %.6f at step %d", stage, curve[i-1], curve[i], i)
			return
		}
	}
}

// AssertMassConserved asserts that volume-weighted total concentration stays
// within tol of its initial value at every step.
func AssertMassConserved(t *testing.T, result Result, tol float64) {
	t.Helper()
	vols := result.Graph.Volumes()
	initial := weightedMass(result.Traj.C[0], vols)
	for step, row := range result.Traj.C {
		m := weightedMass(row, vols)
		if math.Abs(m-initial) > tol {
			t.Errorf("AssertMassConserved: step %d: mass %.9f, initial %.9f (tol %.1e)", step, m, initial, tol)
			return
		}
	}
}

// AssertCrossingOrder asserts that the listed stages cross the threshold in
// the given order, each strictly later than (or at the same step as) the one
// before it, and that every listed stage does cross.
func AssertCrossingOrder(t *testing.T, result Result, threshold float64, stages ...string) {
	t.Helper()
	lastStep := -1
	for _, stage := range stages {
		curve, ok := result.StageMeans[stage]
		if !ok {
			t.Fatalf("AssertCrossingOrder: stage %s not found", stage)
		}
		cross, reached := biomarker.FirstCrossing(result.Traj.T, curve, threshold)
		if !reached {
			t.Errorf("AssertCrossingOrder: stage %s never crossed %.4f", stage, threshold)
			return
		}
		if cross.Step < lastStep {
			t.Errorf("AssertCrossingOrder: stage %s crossed at step %d, before preceding stage at step %d", stage, cross.Step, lastStep)
			return
		}
		lastStep = cross.Step
	}
}

// AssertCrossesBefore asserts that stage a crosses the threshold strictly
// earlier than stage b.
func AssertCrossesBefore(t *testing.T, result Result, threshold float64, a, b string) {
	t.Helper()
	stepA, okA := CrossingStep(result, a, threshold)
	stepB, okB := CrossingStep(result, b, threshold)
	if !okA {
		t.Fatalf("AssertCrossesBefore: stage %s never crossed %.4f", a, threshold)
	}
	if okB && stepB <= stepA {
		t.Errorf("AssertCrossesBefore: stage %s crossed at step %d, not after %s at step %d", b, stepB, a, stepA)
	}
}

// AssertFinalAbove asserts that a stage-mean curve ends above the threshold.
func AssertFinalAbove(t *testing.T, result Result, stage string, threshold float64) {
	t.Helper()
	v, ok := result.Final(stage)
	if !ok {
		t.Fatalf("AssertFinalAbove: stage %s not found", stage)
	}
	if v <= threshold {
		t.Errorf("AssertFinalAbove: stage %s ended at %.6f, want > %.4f", stage, v, threshold)
	}
}

// AssertFinalBelow asserts that a stage-mean curve ends below the threshold.
func AssertFinalBelow(t *testing.T, result Result, stage string, threshold float64) {
	t.Helper()
	v, ok := result.Final(stage)
	if !ok {
		t.Fatalf("AssertFinalBelow: stage %s not found", stage)
	}
	if v >= threshold {
		t.Errorf("AssertFinalBelow: stage %s ended at %.6f, want < %.4f", stage, v, threshold)
	}
}

// AssertOperatorErosion asserts that recorded operator snapshots never regain
// off-diagonal coupling magnitude: damage only weakens the connectome.
func AssertOperatorErosion(t *testing.T, result Result) {
	t.Helper()
	ops := result.Traj.Operators
	if len(ops) < 2 {
		t.Fatal("AssertOperatorErosion: fewer than 2 operator snapshots")
	}
	n := ops[0].Rows()
	for k := 1; k < len(ops); k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				prev := -ops[k-1].At(i, j)
				cur := -ops[k].At(i, j)
				if cur > prev+1e-12 {
					t.Errorf("AssertOperatorErosion: coupling (%d,%d) grew %.9f -> %.9f at snapshot %d", i, j, prev, cur, k)
					return
				}
			}
		}
	}
}

// CrossingStep returns the step at which a stage-mean curve first exceeds
// the threshold.
func CrossingStep(result Result, stage string, threshold float64) (int, bool) {
	curve, ok := result.StageMeans[stage]
	if !ok {
		return 0, false
	}
	cross, reached := biomarker.FirstCrossing(result.Traj.T, curve, threshold)
	if !reached {
		return 0, false
	}
	return cross.Step, true
}

// FinalGlobalLoad returns the last sample of the normalized global load
// curve, or false when the run did not record one.
func FinalGlobalLoad(result Result) (float64, bool) {
	gl := result.Traj.GlobalLoad
	if len(gl) == 0 {
		return 0, false
	}
	return gl[len(gl)-1], true
}

func weightedMass(row, vols []float64) float64 {
	var m float64
	for i, v := range row {
		m += v * vols[i]
	}
	return m
}
