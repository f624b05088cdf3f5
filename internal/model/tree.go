package model

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

const leafMarker = -1

// Node is one node of a flattened regression tree. Leaves have Left == -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int32   `json:"l"`
	Right     int32   `json:"r"`
	Value     float64 `json:"v"`
}

// IsLeaf reports whether the node is terminal.
func (n Node) IsLeaf() bool {
	return n.Left == leafMarker
}

// Tree is a CART regression tree stored as a node slice rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict walks the tree for row x.
func (t *Tree) Predict(x []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	i := int32(0)
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// validate checks that every split references a valid feature and that child
// indices point forward, which rules out cycles in a decoded tree.
func (t *Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("model: empty tree")
	}
	for i, n := range t.Nodes {
		if n.IsLeaf() {
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("model: node %d splits on feature %d of %d", i, n.Feature, nFeatures)
		}
		if int(n.Left) <= i || int(n.Right) <= i || int(n.Left) >= len(t.Nodes) || int(n.Right) >= len(t.Nodes) {
			return fmt.Errorf("model: node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

// treeParams bound tree growth.
type treeParams struct {
	maxDepth       int
	minSamplesLeaf int
	maxFeatures    int
}

type treeBuilder struct {
	x      [][]float64
	y      []float64
	params treeParams
	rng    *rand.Rand
	nodes  []Node
}

// growTree fits a tree on the rows listed in idx. Duplicated indices act as
// bootstrap weights.
func growTree(x [][]float64, y []float64, idx []int, params treeParams, rng *rand.Rand) *Tree {
	b := &treeBuilder{
		x:      x,
		y:      y,
		params: params,
		rng:    rng,
		nodes:  make([]Node, 0, 2*len(idx)),
	}
	b.build(idx, 0)
	return &Tree{Nodes: b.nodes}
}

func (b *treeBuilder) build(idx []int, depth int) int32 {
	id := int32(len(b.nodes))

	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	b.nodes = append(b.nodes, Node{
		Left:  leafMarker,
		Right: leafMarker,
		Value: sum / float64(len(idx)),
	})

	if b.params.maxDepth > 0 && depth >= b.params.maxDepth {
		return id
	}
	if len(idx) < 2*b.params.minSamplesLeaf || pure(b.y, idx) {
		return id
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return id
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)

	b.nodes[id].Feature = feature
	b.nodes[id].Threshold = threshold
	b.nodes[id].Left = l
	b.nodes[id].Right = r
	return id
}

func pure(y []float64, idx []int) bool {
	first := y[idx[0]]
	for _, i := range idx[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}

// bestSplit finds the split minimising the summed squared error of both
// children. Candidate features are visited in a fixed order so the result is
// deterministic for a given rng state.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	nFeatures := len(b.x[idx[0]])
	features := b.candidateFeatures(nFeatures)
	minLeaf := b.params.minSamplesLeaf

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := 0.0

	sorted := make([]int, len(idx))
	n := len(idx)

	for _, f := range features {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool {
			return b.x[sorted[a]][f] < b.x[sorted[c]][f]
		})

		var totalSum, totalSq float64
		for _, i := range sorted {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		var leftSum, leftSq float64
		for k := 1; k < n; k++ {
			prev := sorted[k-1]
			leftSum += b.y[prev]
			leftSq += b.y[prev] * b.y[prev]

			if k < minLeaf || n-k < minLeaf {
				continue
			}

			lo := b.x[prev][f]
			hi := b.x[sorted[k]][f]
			if lo == hi {
				continue
			}

			nl := float64(k)
			nr := float64(n - k)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			score := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)

			if bestFeature == -1 || score < bestScore {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				bestFeature = f
				bestThreshold = threshold
				bestScore = score
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func (b *treeBuilder) candidateFeatures(nFeatures int) []int {
	k := b.params.maxFeatures
	if k <= 0 || k >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := b.rng.Perm(nFeatures)[:k]
	sort.Ints(perm)
	return perm
}
