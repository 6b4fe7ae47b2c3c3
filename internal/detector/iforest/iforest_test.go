package iforest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewForest(t *testing.T) {
	tests := []struct {
		name           string
		opts           []Option
		wantTreeCount  int
		wantSampleSize int
	}{
		{
			name:           "default configuration",
			opts:           nil,
			wantTreeCount:  200,
			wantSampleSize: 256,
		},
		{
			name:           "custom tree count",
			opts:           []Option{WithTreeCount(50)},
			wantTreeCount:  50,
			wantSampleSize: 256,
		},
		{
			name:           "multiple options",
			opts:           []Option{WithTreeCount(25), WithSampleSize(64), WithSeed(123)},
			wantTreeCount:  25,
			wantSampleSize: 64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.opts...)
			assert.Equal(t, tt.wantTreeCount, f.treeCount)
			assert.Equal(t, tt.wantSampleSize, f.sampleSize)
		})
	}
}

func TestFitBuildsAllTrees(t *testing.T) {
	f := New(WithTreeCount(10), WithSeed(42))
	f.Fit(generateValues(100, 42))

	require.Len(t, f.trees, 10)
	for _, tree := range f.trees {
		assert.NotNil(t, tree)
	}
	assert.Greater(t, f.normal, 0.0)
}

func TestScoresInUnitInterval(t *testing.T) {
	values := generateValues(300, 7)
	f := New(WithSeed(42))
	f.Fit(values)

	scores := f.Scores(values)
	require.Len(t, scores, len(values))
	for _, s := range scores {
		assert.Greater(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestOutlierScoresHigher(t *testing.T) {
	// Tight cluster around 10 with one extreme value.
	values := generateValues(200, 11)
	values = append(values, 100.0)

	f := New(WithSeed(42))
	f.Fit(values)

	scores := f.Scores(values)
	outlier := scores[len(scores)-1]

	assert.Greater(t, outlier, 0.6, "extreme value should be easy to isolate")
	for i, s := range scores[:len(scores)-1] {
		assert.Greater(t, outlier, s, "inlier %d should score below the outlier", i)
	}
}

func TestDeterministicForSameSeed(t *testing.T) {
	values := generateValues(150, 3)

	first := New(WithSeed(99))
	first.Fit(values)
	second := New(WithSeed(99))
	second.Fit(values)

	assert.Equal(t, first.Scores(values), second.Scores(values))
}

func TestDifferentSeedsDiffer(t *testing.T) {
	values := generateValues(150, 3)

	first := New(WithSeed(1))
	first.Fit(values)
	second := New(WithSeed(2))
	second.Fit(values)

	assert.NotEqual(t, first.Scores(values), second.Scores(values))
}

func TestSampleSizeCappedAtDataLength(t *testing.T) {
	// Fewer values than the default sample size must still fit cleanly.
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	f := New(WithSeed(42))
	f.Fit(values)

	scores := f.Scores(values)
	require.Len(t, scores, len(values))
	for _, s := range scores {
		assert.Greater(t, s, 0.0)
	}
}

func TestConstantValuesScoreEqually(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 3.14
	}

	f := New(WithSeed(42))
	f.Fit(values)

	scores := f.Scores(values)
	for _, s := range scores[1:] {
		assert.Equal(t, scores[0], s)
	}
}

func TestAveragePathLength(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLength(0))
	assert.Equal(t, 0.0, averagePathLength(1))

	// c(2) = 2*(ln(1) + gamma) - 2*(1/2)
	assert.InDelta(t, 2*eulerGamma-1, averagePathLength(2), 1e-12)

	// c(n) grows with n.
	assert.Greater(t, averagePathLength(256), averagePathLength(16))
}

// generateValues returns n values drawn from a narrow distribution around 10.
func generateValues(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = 10 + rng.NormFloat64()
	}
	return values
}
