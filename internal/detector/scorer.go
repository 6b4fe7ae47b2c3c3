package detector

import (
	"math"
	"sort"

	"github.com/metricops/anomalyd/internal/detector/iforest"
	"github.com/metricops/anomalyd/internal/pkg/errors"
)

// MinSeriesLength is the smallest series the scorer accepts. Below two
// points isolation scoring is meaningless; a shorter non-empty series is
// rejected as invalid input.
const MinSeriesLength = 2

// Score fits an isolation forest on the full series and returns one result
// per observation, preserving input order. contamination is the expected
// outlier fraction and must lie in (0, 0.5]; it positions the decision
// threshold at the (1-contamination) quantile of the raw scores. All
// randomness derives from seed, so identical (series, contamination, seed)
// yield identical results.
//
// An empty series returns an empty result without error.
func Score(series []Observation, contamination float64, seed int64) ([]PointResult, error) {
	if contamination <= 0 || contamination > 0.5 || math.IsNaN(contamination) {
		return nil, errors.InvalidInputf("contamination must be in (0, 0.5], got %v", contamination)
	}

	if len(series) == 0 {
		return []PointResult{}, nil
	}
	if len(series) < MinSeriesLength {
		return nil, errors.InvalidInputf("series must contain at least %d points, got %d", MinSeriesLength, len(series))
	}

	values := make([]float64, len(series))
	for i, obs := range series {
		if math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0) {
			return nil, errors.InvalidInputf("value at %q is not finite", obs.Timestamp)
		}
		values[i] = obs.Value
	}

	forest := iforest.New(iforest.WithSeed(seed))
	forest.Fit(values)
	raw := forest.Scores(values)

	// Points whose raw score exceeds the (1-contamination) quantile are
	// flagged. The reported score is the signed distance below the
	// threshold, so flagged points come out negative.
	threshold := percentile(raw, 100*(1-contamination))

	results := make([]PointResult, len(series))
	for i, obs := range series {
		results[i] = PointResult{
			Timestamp: obs.Timestamp,
			Value:     obs.Value,
			Score:     threshold - raw[i],
			IsAnomaly: raw[i] > threshold,
		}
	}

	return results, nil
}

// percentile returns the p-th percentile of data using linear interpolation
// between closest ranks. data must not be empty.
func percentile(data []float64, p float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
