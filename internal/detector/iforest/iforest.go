// Package iforest implements the isolation forest algorithm for univariate
// anomaly scoring. A forest of randomized binary trees is built over a
// subsample of the data; observations that isolate in fewer splits receive
// higher anomaly scores.
package iforest

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// Default configuration, matching the usual production settings for
// univariate series.
const (
	DefaultTreeCount  = 200
	DefaultSampleSize = 256
)

// eulerGamma is the Euler-Mascheroni constant used by the harmonic number
// approximation in averagePathLength.
const eulerGamma = 0.5772156649

// Forest is an isolation forest over one-dimensional values. A Forest is
// fit once and scored against; it is not safe to call Fit concurrently with
// Score.
type Forest struct {
	treeCount  int
	sampleSize int
	seed       int64

	trees  []*node
	normal float64 // c(sampleSize), expected path length normalizer
}

// node is a node in one isolation tree. Leaves carry the count of samples
// that reached them.
type node struct {
	splitValue float64
	left       *node
	right      *node
	size       int
}

// Option configures a Forest.
type Option func(*Forest)

// WithTreeCount sets the number of isolation trees.
func WithTreeCount(n int) Option {
	return func(f *Forest) {
		f.treeCount = n
	}
}

// WithSampleSize sets the per-tree subsample size. The effective size is
// capped at the length of the fitted data.
func WithSampleSize(n int) Option {
	return func(f *Forest) {
		f.sampleSize = n
	}
}

// WithSeed sets the seed all internal randomness derives from. Two forests
// fit with the same seed on the same data produce identical scores.
func WithSeed(seed int64) Option {
	return func(f *Forest) {
		f.seed = seed
	}
}

// New creates a Forest with the given options.
func New(opts ...Option) *Forest {
	f := &Forest{
		treeCount:  DefaultTreeCount,
		sampleSize: DefaultSampleSize,
		seed:       1,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fit builds the forest over values. Subsamples and per-tree seeds are drawn
// sequentially from a master generator seeded by WithSeed, so tree
// construction can fan out over goroutines without losing reproducibility.
// values must not be empty.
func (f *Forest) Fit(values []float64) {
	n := len(values)

	sampleSize := f.sampleSize
	if sampleSize > n {
		sampleSize = n
	}

	// Depth cap: beyond ceil(log2(sample size)) additional splits carry no
	// isolation signal.
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))
	if maxDepth < 1 {
		maxDepth = 1
	}

	rng := rand.New(rand.NewSource(f.seed))

	samples := make([][]float64, f.treeCount)
	seeds := make([]int64, f.treeCount)
	for i := 0; i < f.treeCount; i++ {
		indices := rng.Perm(n)[:sampleSize]
		sample := make([]float64, sampleSize)
		for j, idx := range indices {
			sample[j] = values[idx]
		}
		samples[i] = sample
		seeds[i] = rng.Int63()
	}

	f.trees = make([]*node, f.treeCount)

	workers := runtime.GOMAXPROCS(0)
	if workers > f.treeCount {
		workers = f.treeCount
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				treeRNG := rand.New(rand.NewSource(seeds[i]))
				f.trees[i] = buildNode(samples[i], treeRNG, 0, maxDepth)
			}
		}()
	}
	for i := 0; i < f.treeCount; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	f.normal = averagePathLength(float64(sampleSize))
}

// buildNode recursively grows one isolation tree by splitting on a uniform
// random value between the node's min and max.
func buildNode(data []float64, rng *rand.Rand, depth, maxDepth int) *node {
	n := len(data)

	if depth >= maxDepth || n <= 1 {
		return &node{size: n}
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	// All remaining values identical: nothing left to isolate.
	if minVal == maxVal {
		return &node{size: n}
	}

	splitValue := minVal + rng.Float64()*(maxVal-minVal)

	var left, right []float64
	for _, v := range data {
		if v < splitValue {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}

	return &node{
		splitValue: splitValue,
		left:       buildNode(left, rng, depth+1, maxDepth),
		right:      buildNode(right, rng, depth+1, maxDepth),
	}
}

// Score returns the anomaly score of v: 2^(-E[h(v)]/c(sampleSize)), where
// E[h(v)] is the mean path length across trees. Scores approach 1 for easy
// to isolate values and fall toward 0.5 and below for inliers.
func (f *Forest) Score(v float64) float64 {
	var total float64
	for _, t := range f.trees {
		total += pathLength(v, t, 0)
	}
	avg := total / float64(len(f.trees))

	return math.Pow(2, -avg/f.normal)
}

// Scores returns the anomaly score for every value, in input order.
func (f *Forest) Scores(values []float64) []float64 {
	scores := make([]float64, len(values))
	for i, v := range values {
		scores[i] = f.Score(v)
	}
	return scores
}

// pathLength descends one tree and returns the path length for v. A leaf
// holding more than one sample contributes the expected extra depth for the
// isolation that never happened.
func pathLength(v float64, nd *node, depth int) float64 {
	if nd.left == nil && nd.right == nil {
		return float64(depth) + averagePathLength(float64(nd.size))
	}

	if v < nd.splitValue {
		return pathLength(v, nd.left, depth+1)
	}
	return pathLength(v, nd.right, depth+1)
}

// averagePathLength returns c(n), the average path length of an unsuccessful
// search in a binary search tree of n nodes:
// c(n) = 2*H(n-1) - 2*(n-1)/n with H(i) ~ ln(i) + eulerGamma.
func averagePathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+eulerGamma) - 2*(n-1)/n
}
