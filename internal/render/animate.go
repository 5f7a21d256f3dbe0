package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"github.com/neurodyn/tauspread/internal/dynamics"
	"github.com/neurodyn/tauspread/internal/vecmath"
)

// cellSize is the pixel width of one matrix entry in animation frames.
const cellSize = 6

// OperatorAnimation writes the recorded operator snapshots of a run as an
// MJPEG AVI heatmap. Each frame shows the coupling magnitude of one snapshot;
// darkening cells trace how damage erodes the connectome over time.
func OperatorAnimation(path string, traj *dynamics.Trajectory, fps int) error {
	if len(traj.Operators) == 0 {
		return fmt.Errorf("render: trajectory has no operator snapshots")
	}
	if fps <= 0 {
		fps = 10
	}

	n := traj.Operators[0].Rows()
	size := int32(n * cellSize)
	writer, err := mjpeg.New(path, size, size, int32(fps))
	if err != nil {
		return fmt.Errorf("render: create animation %s: %w", path, err)
	}
	defer writer.Close()

	// Normalize against the pristine operator so damage reads as fading.
	ref := offDiagonalMax(traj.Operators[0])
	if ref == 0 {
		ref = 1
	}

	var buf bytes.Buffer
	for _, op := range traj.Operators {
		img := heatmapFrame(op, ref)
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("render: encode frame: %w", err)
		}
		if err := writer.AddFrame(buf.Bytes()); err != nil {
			return fmt.Errorf("render: add frame: %w", err)
		}
	}
	return nil
}

// heatmapFrame paints the off-diagonal magnitude of op relative to ref.
func heatmapFrame(op *vecmath.Dense, ref float64) *image.RGBA {
	n := op.Rows()
	img := image.NewRGBA(image.Rect(0, 0, n*cellSize, n*cellSize))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := op.At(i, j)
			if i == j {
				fillCell(img, i, j, color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff})
				continue
			}
			mag := -v / ref
			if mag < 0 {
				mag = 0
			}
			if mag > 1 {
				mag = 1
			}
			c := uint8(255 * mag)
			fillCell(img, i, j, color.RGBA{R: c, G: uint8(float64(c) * 0.3), B: 0x10, A: 0xff})
		}
	}
	return img
}

func fillCell(img *image.RGBA, row, col int, c color.RGBA) {
	x0, y0 := col*cellSize, row*cellSize
	for y := y0; y < y0+cellSize; y++ {
		for x := x0; x < x0+cellSize; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// offDiagonalMax returns the largest off-diagonal coupling magnitude.
func offDiagonalMax(op *vecmath.Dense) float64 {
	var max float64
	n := op.Rows()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if v := -op.At(i, j); v > max {
				max = v
			}
		}
	}
	return max
}
