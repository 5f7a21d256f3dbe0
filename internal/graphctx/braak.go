package graphctx

import "fmt"

// Stage display names, in partition order.
const (
	StageBraak1 = "Braak stage I"
	StageBraak2 = "Braak stage II"
	StageBraak3 = "Braak stage III"
	StageBraak4 = "Braak stage IV"
	StageBraak5 = "Braak stage V"
	StageBraak6 = "Braak stage VI"
	StageRest   = "Rest of brain"
)

// Hand-curated Braak groupings for the 83-region parcellation, using the
// 1-based node numbers of the parcellation tables. Braak stage V is defined
// as the leftover set.
var (
	braak1Nodes   = []int{27, 68}
	braak2Nodes   = []int{40, 81}
	braak3Nodes   = []int{24, 25, 26, 41, 65, 66, 67, 82}
	braak4Nodes   = []int{12, 13, 14, 15, 28, 29, 30, 34, 53, 54, 55, 56, 69, 70, 71, 75}
	braak6Nodes   = []int{10, 11, 16, 21, 22, 51, 52, 57, 62, 63}
	restNodes     = []int{35, 36, 37, 38, 39, 76, 77, 78, 79, 80}
	labelledNodes = [][]int{braak1Nodes, braak2Nodes, braak3Nodes, braak4Nodes, braak6Nodes, restNodes}
)

// DefaultSeedNodes returns the entorhinal seed pair (Braak stage I) as
// 0-based indices.
func DefaultSeedNodes() []int {
	return []int{braak1Nodes[0] - 1, braak1Nodes[1] - 1}
}

// BraakStages builds the seven-stage Braak partition for a graph of n nodes.
// Stages I-IV and VI plus the unlabelled "rest" stage are fixed node lists;
// stage V is the leftover set. n must be large enough to contain every
// labelled node.
func BraakStages(n int) ([]Stage, error) {
	assigned := make([]bool, n)
	for _, group := range labelledNodes {
		for _, node := range group {
			if node < 1 || node > n {
				return nil, fmt.Errorf("graphctx: labelled node %d outside parcellation of size %d", node, n)
			}
			assigned[node-1] = true
		}
	}

	var braak5 []int
	for i := 0; i < n; i++ {
		if !assigned[i] {
			braak5 = append(braak5, i)
		}
	}

	return []Stage{
		{Name: StageBraak1, Nodes: toZeroBased(braak1Nodes)},
		{Name: StageBraak2, Nodes: toZeroBased(braak2Nodes)},
		{Name: StageBraak3, Nodes: toZeroBased(braak3Nodes)},
		{Name: StageBraak4, Nodes: toZeroBased(braak4Nodes)},
		{Name: StageBraak5, Nodes: braak5},
		{Name: StageBraak6, Nodes: toZeroBased(braak6Nodes)},
		{Name: StageRest, Nodes: toZeroBased(restNodes)},
	}, nil
}

func toZeroBased(nodes []int) []int {
	out := make([]int, len(nodes))
	for i, v := range nodes {
		out[i] = v - 1
	}
	return out
}
