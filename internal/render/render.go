// Package render draws concentration curves and operator animations for
// integration results.
package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/neurodyn/tauspread/internal/biomarker"
	"github.com/neurodyn/tauspread/internal/dynamics"
	"github.com/neurodyn/tauspread/internal/graphctx"
)

// palette holds the line colors used across all charts, cycled in order.
var palette = []drawing.Color{
	{R: 0xdc, G: 0x3e, B: 0x04, A: 0xff},
	{R: 0x45, G: 0x1d, B: 0xdc, A: 0xff},
	{R: 0x01, G: 0xdc, B: 0x04, A: 0xff},
	{R: 0xdc, G: 0x01, B: 0xd9, A: 0xff},
	{R: 0x58, G: 0x34, B: 0x19, A: 0xff},
	{R: 0xff, G: 0xa1, B: 0x1b, A: 0xff},
	{R: 0xd1, G: 0xdc, B: 0x00, A: 0xff},
}

// paletteColor returns the i-th palette color, wrapping around.
func paletteColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// CurveChart renders one or more named curves over a shared time grid as a
// PNG. Curves are drawn in the given order so colors stay stable between
// renders.
func CurveChart(w io.Writer, title string, t []float64, names []string, curves map[string][]float64) error {
	if len(t) == 0 {
		return fmt.Errorf("render: empty time grid")
	}

	var series []chart.Series
	for i, name := range names {
		ys, ok := curves[name]
		if !ok {
			return fmt.Errorf("render: missing curve %q", name)
		}
		if len(ys) != len(t) {
			return fmt.Errorf("render: curve %q has %d samples, time grid has %d", name, len(ys), len(t))
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: t,
			YValues: ys,
			Style:   chart.Style{StrokeColor: paletteColor(i), StrokeWidth: 2.0},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1024,
		Height: 640,
		XAxis: chart.XAxis{
			Name:  "time",
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// StageMeanChart renders the per-stage mean concentration curves of a run.
func StageMeanChart(w io.Writer, title string, traj *dynamics.Trajectory, stageNames []string, means map[string][]float64) error {
	return CurveChart(w, title, traj.T, stageNames, means)
}

// variantDashes gives each model variant its own stroke pattern, in
// presentation order. The first entry (solid) is the baseline model.
var variantDashes = [][]float64{nil, {6, 3}, {2, 2}, {8, 3, 2, 3}}

// ModelComparisonChart renders the per-stage mean curves of every variant on
// one axis: color encodes the stage, dash pattern encodes the model.
func ModelComparisonChart(w io.Writer, cmp *dynamics.Comparison, stages []graphctx.Stage) error {
	if len(cmp.T) == 0 {
		return fmt.Errorf("render: empty time grid")
	}

	var series []chart.Series
	for vi, v := range dynamics.Variants() {
		run, ok := cmp.Runs[v]
		if !ok {
			continue
		}
		means := biomarker.StageMeans(run.C, stages)
		for si, st := range stages {
			series = append(series, chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s (%s)", st.Name, v),
				XValues: cmp.T,
				YValues: means[st.Name],
				Style: chart.Style{
					StrokeColor:     paletteColor(si),
					StrokeWidth:     1.5,
					StrokeDashArray: variantDashes[vi%len(variantDashes)],
				},
			})
		}
	}
	if len(series) == 0 {
		return fmt.Errorf("render: comparison has no runs")
	}

	graph := chart.Chart{
		Title:  "stage means by model",
		Width:  1280,
		Height: 800,
		XAxis: chart.XAxis{
			Name:  "time",
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	return graph.Render(chart.PNG, w)
}

// ComparisonChart renders the global load curve of each model variant on a
// shared axis. Variants without a global load curve are skipped.
func ComparisonChart(w io.Writer, cmp *dynamics.Comparison) error {
	var names []string
	curves := make(map[string][]float64)
	for _, v := range dynamics.Variants() {
		run, ok := cmp.Runs[v]
		if !ok || len(run.GlobalLoad) == 0 {
			continue
		}
		names = append(names, string(v))
		curves[string(v)] = run.GlobalLoad
	}
	if len(names) == 0 {
		return fmt.Errorf("render: comparison has no global load curves")
	}
	return CurveChart(w, "global toxic load", cmp.T, names, curves)
}
