// Package biomarker reduces per-node concentration trajectories to the
// scalar and stage-level summary curves used for reporting: the normalized
// global load, stage mean curves, and threshold-crossing detection.
package biomarker

import (
	"errors"
	"fmt"

	"github.com/neurodyn/tauspread/internal/graphctx"
	"github.com/neurodyn/tauspread/internal/vecmath"
)

// ErrDegenerateLoad indicates a trajectory whose total concentration is zero
// everywhere, which cannot be normalized.
var ErrDegenerateLoad = errors.New("biomarker: total concentration is zero over the whole horizon")

// ErrUnknownStage indicates a stage name absent from the context partition.
var ErrUnknownStage = errors.New("biomarker: unknown stage")

// GlobalLoad sums the concentration over all nodes at each step and
// normalizes the curve by its own maximum, so the peak value is exactly 1.
// This is a relative severity proxy, not an absolute concentration. A
// trajectory with zero total concentration everywhere returns
// ErrDegenerateLoad.
func GlobalLoad(c [][]float64) ([]float64, error) {
	load := make([]float64, len(c))
	for k, row := range c {
		load[k] = vecmath.Sum(row)
	}

	max := vecmath.MaxVec(load)
	if max == 0 {
		return nil, ErrDegenerateLoad
	}
	for k := range load {
		load[k] /= max
	}
	return load, nil
}

// StageMean computes the per-step mean concentration over the given node
// indices.
func StageMean(c [][]float64, nodes []int) []float64 {
	mean := make([]float64, len(c))
	for k, row := range c {
		mean[k] = vecmath.MeanIndexed(row, nodes)
	}
	return mean
}

// StageMeans computes the mean curve of every stage in the partition, keyed
// by stage name.
func StageMeans(c [][]float64, stages []graphctx.Stage) map[string][]float64 {
	means := make(map[string][]float64, len(stages))
	for _, s := range stages {
		means[s.Name] = StageMean(c, s.Nodes)
	}
	return means
}

// Crossing locates the earliest step at which a curve strictly exceeds a
// threshold.
type Crossing struct {
	// Step is the index of the first sample above the threshold.
	Step int

	// Time is the simulated time of that sample.
	Time float64

	// Value is the curve value at that sample.
	Value float64
}

// FirstCrossing returns the earliest point where curve[k] > threshold. The
// second return value is false when the threshold is never exceeded within
// the horizon; this is distinct from a crossing at step 0.
func FirstCrossing(t, curve []float64, threshold float64) (Crossing, bool) {
	for k, v := range curve {
		if v > threshold {
			return Crossing{Step: k, Time: t[k], Value: v}, true
		}
	}
	return Crossing{}, false
}

// StageCrossing runs FirstCrossing on the mean curve of the named stage.
func StageCrossing(t []float64, c [][]float64, g *graphctx.Context, stage string, threshold float64) (Crossing, bool, error) {
	s, ok := g.StageByName(stage)
	if !ok {
		return Crossing{}, false, fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
	crossing, reached := FirstCrossing(t, StageMean(c, s.Nodes), threshold)
	return crossing, reached, nil
}
