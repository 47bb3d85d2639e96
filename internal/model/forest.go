package model

import (
	"math"
	"math/rand"
	"sort"
)

// ForestParams configure the random forest.
type ForestParams struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
	Seed     int64
}

// classes in tie-break order: flat first.
var classes = []int{0, 1, -1}

// node is a CART node; leaf when left == nil.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	label     int
}

func (n *node) predict(x []float64) int {
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.label
}

// forest is a bagged ensemble of gini decision trees with sqrt(p) feature
// sampling per split. Class labels are small ints (-1, 0, 1).
type forest struct {
	trees  []*node
	params ForestParams
}

func fitForest(X [][]float64, y []int, p ForestParams) *forest {
	if p.Trees <= 0 {
		p.Trees = 100
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 8
	}
	if p.MinLeaf <= 0 {
		p.MinLeaf = 1
	}
	rng := rand.New(rand.NewSource(p.Seed))
	nFeat := len(X[0])
	mtry := int(math.Sqrt(float64(nFeat)))
	if mtry < 1 {
		mtry = 1
	}

	f := &forest{params: p, trees: make([]*node, 0, p.Trees)}
	for t := 0; t < p.Trees; t++ {
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		b := &builder{X: X, y: y, rng: rng, mtry: mtry, maxDepth: p.MaxDepth, minLeaf: p.MinLeaf}
		f.trees = append(f.trees, b.grow(idx, 0))
	}
	return f
}

// predict returns the majority vote; ties resolve in classes order.
func (f *forest) predict(x []float64) int {
	votes := map[int]int{}
	for _, t := range f.trees {
		votes[t.predict(x)]++
	}
	best, bestN := 0, -1
	for _, label := range classes {
		if votes[label] > bestN {
			best, bestN = label, votes[label]
		}
	}
	return best
}

type builder struct {
	X        [][]float64
	y        []int
	rng      *rand.Rand
	mtry     int
	maxDepth int
	minLeaf  int
}

func (b *builder) grow(idx []int, depth int) *node {
	counts := classCounts(b.y, idx)
	label := majority(counts)
	if depth >= b.maxDepth || len(idx) < 2*b.minLeaf || len(counts) == 1 {
		return &node{label: label}
	}

	feat, thr, ok := b.bestSplit(idx)
	if !ok {
		return &node{label: label}
	}
	var left, right []int
	for _, i := range idx {
		if b.X[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feat,
		threshold: thr,
		left:      b.grow(left, depth+1),
		right:     b.grow(right, depth+1),
		label:     label,
	}
}

func (b *builder) bestSplit(idx []int) (int, float64, bool) {
	nFeat := len(b.X[0])
	feats := b.rng.Perm(nFeat)[:b.mtry]
	sort.Ints(feats)

	parent := gini(classCounts(b.y, idx), len(idx))
	bestGain, bestFeat, bestThr := 0.0, -1, 0.0

	sorted := make([]int, len(idx))
	for _, f := range feats {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		left := map[int]int{}
		right := classCounts(b.y, sorted)
		for k := 0; k < len(sorted)-1; k++ {
			lbl := b.y[sorted[k]]
			left[lbl]++
			right[lbl]--
			nl, nr := k+1, len(sorted)-k-1
			v, next := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if v == next || nl < b.minLeaf || nr < b.minLeaf {
				continue
			}
			w := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(len(sorted))
			if gain := parent - w; gain > bestGain+1e-12 {
				bestGain, bestFeat, bestThr = gain, f, (v+next)/2
			}
		}
	}
	return bestFeat, bestThr, bestFeat >= 0
}

func classCounts(y []int, idx []int) map[int]int {
	c := map[int]int{}
	for _, i := range idx {
		c[y[i]]++
	}
	return c
}

func gini(counts map[int]int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, label := range classes {
		p := float64(counts[label]) / float64(n)
		g -= p * p
	}
	return g
}

func majority(counts map[int]int) int {
	best, bestN := 0, -1
	for _, label := range classes {
		if counts[label] > bestN {
			best, bestN = label, counts[label]
		}
	}
	return best
}
