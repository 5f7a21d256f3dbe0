package graphctx

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/neurodyn/tauspread/internal/vecmath"
)

// Default file names inside a data directory, matching the published
// connectome tables: per-node volumes, node names with 3-D positions, and
// the dense weighted adjacency matrix A2 (fiber count over squared length).
const (
	VolumesFile   = "VolumeOfNodes.csv"
	PositionsFile = "NamesAndPosition.csv"
	AdjacencyFile = "A2.csv"
)

// Load reads the three tabular sources from dir using the default file
// names, builds the Braak partition, and assembles a Context.
func Load(dir string) (*Context, error) {
	volumes, err := LoadVolumes(filepath.Join(dir, VolumesFile))
	if err != nil {
		return nil, err
	}
	positions, err := LoadPositions(filepath.Join(dir, PositionsFile))
	if err != nil {
		return nil, err
	}
	adjacency, err := LoadAdjacency(filepath.Join(dir, AdjacencyFile))
	if err != nil {
		return nil, err
	}
	stages, err := BraakStages(adjacency.Rows())
	if err != nil {
		return nil, err
	}
	return New(adjacency, volumes, positions, stages)
}

// LoadVolumes reads per-node volumes from a headerless CSV, taking the last
// column of each row.
func LoadVolumes(path string) ([]float64, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	volumes := make([]float64, len(rows))
	for i, row := range rows {
		v, err := parseField(path, i, row[len(row)-1])
		if err != nil {
			return nil, err
		}
		volumes[i] = v
	}
	return volumes, nil
}

// LoadPositions reads 3-D node positions from a headerless CSV, taking the
// last three columns of each row. Leading columns (names, indices) are
// ignored.
func LoadPositions(path string) ([][3]float64, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	positions := make([][3]float64, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("graphctx: %s row %d has %d columns, need at least 3", path, i+1, len(row))
		}
		for k := 0; k < 3; k++ {
			v, err := parseField(path, i, row[len(row)-3+k])
			if err != nil {
				return nil, err
			}
			positions[i][k] = v
		}
	}
	return positions, nil
}

// LoadAdjacency reads a dense N×N weighted adjacency matrix from a
// headerless CSV.
func LoadAdjacency(path string) (*vecmath.Dense, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("graphctx: %s is empty", path)
	}
	adj := vecmath.NewDense(n, n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("graphctx: %s row %d has %d columns, want %d", path, i+1, len(row), n)
		}
		for j, field := range row {
			v, err := parseField(path, i, field)
			if err != nil {
				return nil, err
			}
			adj.Set(i, j, v)
		}
	}
	return adj, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graphctx: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row widths are validated by the callers
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("graphctx: read %s: %w", path, err)
	}
	return rows, nil
}

func parseField(path string, row int, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("graphctx: %s row %d: %w", path, row+1, err)
	}
	return v, nil
}
