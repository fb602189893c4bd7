package ml

import "sort"

// RegressionTree is one CART regressor used as a boosting weak learner.
// Nodes are stored in a flat slice so the tree round-trips through JSON
// without recursion in the codec.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is either an internal split (Leaf false) or a leaf carrying
// the fitted value. Left/Right index into the node slice.
type TreeNode struct {
	Leaf      bool    `json:"leaf"`
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// treeParams bounds tree growth
type treeParams struct {
	maxDepth       int
	minSamplesLeaf int
	// leafValue turns the residuals routed to a leaf into its output
	leafValue func(idx []int) float64
}

const splitCandidates = 16

// fitTree grows a regression tree on the residuals of the given sample
// indexes using variance-reduction splits over quantile candidate
// thresholds.
func fitTree(rows [][]float64, residuals []float64, idx []int, p treeParams) *RegressionTree {
	t := &RegressionTree{}
	t.grow(rows, residuals, idx, 0, p)
	return t
}

// grow appends the subtree for idx and returns its node index
func (t *RegressionTree) grow(rows [][]float64, residuals []float64, idx []int, depth int, p treeParams) int {
	node := TreeNode{Leaf: true, Left: -1, Right: -1}
	nodeIdx := len(t.Nodes)
	t.Nodes = append(t.Nodes, node)

	if depth >= p.maxDepth || len(idx) < 2*p.minSamplesLeaf {
		t.Nodes[nodeIdx].Value = p.leafValue(idx)
		return nodeIdx
	}

	feature, threshold, ok := bestSplit(rows, residuals, idx, p.minSamplesLeaf)
	if !ok {
		t.Nodes[nodeIdx].Value = p.leafValue(idx)
		return nodeIdx
	}

	var left, right []int
	for _, i := range idx {
		if rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	t.Nodes[nodeIdx].Leaf = false
	t.Nodes[nodeIdx].Feature = feature
	t.Nodes[nodeIdx].Threshold = threshold
	t.Nodes[nodeIdx].Left = t.grow(rows, residuals, left, depth+1, p)
	t.Nodes[nodeIdx].Right = t.grow(rows, residuals, right, depth+1, p)
	return nodeIdx
}

// bestSplit scans quantile candidate thresholds per feature and returns
// the split with the lowest total squared error, or ok=false when no
// admissible split improves on the parent node.
func bestSplit(rows [][]float64, residuals []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	var sum, sqSum float64
	for _, i := range idx {
		r := residuals[i]
		sum += r
		sqSum += r * r
	}
	n := float64(len(idx))
	parentSSE := sqSum - sum*sum/n

	bestSSE := parentSSE - 1e-12
	cols := len(rows[idx[0]])

	values := make([]float64, 0, len(idx))
	for f := 0; f < cols; f++ {
		values = values[:0]
		for _, i := range idx {
			values = append(values, rows[i][f])
		}
		sort.Float64s(values)
		if values[0] == values[len(values)-1] {
			continue
		}

		for _, thr := range candidateThresholds(values) {
			var lSum, lSq, lN float64
			for _, i := range idx {
				if rows[i][f] <= thr {
					r := residuals[i]
					lSum += r
					lSq += r * r
					lN++
				}
			}
			rN := n - lN
			if lN < float64(minLeaf) || rN < float64(minLeaf) {
				continue
			}

			rSum := sum - lSum
			rSq := sqSum - lSq
			sse := (lSq - lSum*lSum/lN) + (rSq - rSum*rSum/rN)
			if sse < bestSSE {
				bestSSE = sse
				feature = f
				threshold = thr
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

// candidateThresholds picks up to splitCandidates distinct quantile
// values from a sorted slice
func candidateThresholds(sorted []float64) []float64 {
	if len(sorted) <= splitCandidates {
		out := make([]float64, 0, len(sorted)-1)
		for i := 0; i < len(sorted)-1; i++ {
			if sorted[i] != sorted[i+1] {
				out = append(out, sorted[i])
			}
		}
		return out
	}

	out := make([]float64, 0, splitCandidates)
	step := float64(len(sorted)) / float64(splitCandidates+1)
	var prev float64
	for k := 1; k <= splitCandidates; k++ {
		v := sorted[int(float64(k)*step)]
		if len(out) == 0 || v != prev {
			out = append(out, v)
			prev = v
		}
	}
	return out
}

// Predict routes a row to its leaf value
func (t *RegressionTree) Predict(row []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}

	i := 0
	for !t.Nodes[i].Leaf {
		n := t.Nodes[i]
		if n.Feature < len(row) && row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}
