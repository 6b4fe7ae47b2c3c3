// Package detector implements the anomaly detection pipeline for univariate
// time series: isolation-based point scoring, segment-level aggregation, and
// extraction of contiguous anomaly intervals.
package detector

import (
	"sort"
	"time"
)

// Default request parameters.
const (
	DefaultContamination   = 0.05
	DefaultSeed            = int64(42)
	DefaultRatioThreshold  = 0.20
	DefaultStreakThreshold = 20
)

// Observation is a single point of a series. Timestamps are opaque, totally
// ordered strings (ISO-8601 in practice); the detector never parses them.
type Observation struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// PointResult is one scored observation. Score follows the convention
// "lower = more anomalous": flagged points have negative scores. IsAnomaly
// is derived from the contamination level, not from a caller threshold on
// Score.
type PointResult struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Score     float64 `json:"score"`
	IsAnomaly bool    `json:"is_anomaly"`
}

// SegmentRules records the thresholds a verdict was computed with.
type SegmentRules struct {
	RatioThreshold  float64 `json:"ratio_threshold"`
	StreakThreshold int     `json:"streak_threshold"`
}

// SegmentVerdict is the aggregate decision for a whole series.
type SegmentVerdict struct {
	IsSegmentAnomaly      bool         `json:"is_segment_anomaly"`
	AnomalyRatio          float64      `json:"anomaly_ratio"`
	MaxConsecutiveAnomaly int          `json:"max_consecutive_anomaly"`
	Reason                string       `json:"reason,omitempty"`
	Rules                 SegmentRules `json:"rules"`
}

// Interval is one maximal run of flagged points, inclusive on both ends.
type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Params configures one detection pass.
type Params struct {
	Contamination   float64
	Seed            int64
	RatioThreshold  float64
	StreakThreshold int
}

// DefaultParams returns the documented default parameters.
func DefaultParams() Params {
	return Params{
		Contamination:   DefaultContamination,
		Seed:            DefaultSeed,
		RatioThreshold:  DefaultRatioThreshold,
		StreakThreshold: DefaultStreakThreshold,
	}
}

// Result is the outcome of one full pipeline pass.
type Result struct {
	Points    []PointResult  `json:"points"`
	Verdict   SegmentVerdict `json:"segment"`
	Intervals []Interval     `json:"anomalies"`
	Duration  time.Duration  `json:"-"`
}

// Detect runs the full pipeline: stable-sort the series by timestamp, score
// every point, aggregate the flags into a segment verdict, and extract
// intervals when the verdict is anomalous. Each call fits its own model;
// nothing is shared or cached across calls.
func Detect(series []Observation, params Params) (*Result, error) {
	start := time.Now()

	sorted := make([]Observation, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	points, err := Score(sorted, params.Contamination, params.Seed)
	if err != nil {
		return nil, err
	}

	verdict := Aggregate(points, params.RatioThreshold, params.StreakThreshold)

	intervals := []Interval{}
	if verdict.IsSegmentAnomaly {
		intervals = Extract(points)
	}

	return &Result{
		Points:    points,
		Verdict:   verdict,
		Intervals: intervals,
		Duration:  time.Since(start),
	}, nil
}
