package detector

import (
	"fmt"
	"math"
	"testing"
)

// resultsFromFlags builds a PointResult sequence from anomaly flags with
// timestamps t0, t1, ...
func resultsFromFlags(flags []bool) []PointResult {
	results := make([]PointResult, len(flags))
	for i, f := range flags {
		results[i] = PointResult{
			Timestamp: fmt.Sprintf("t%d", i),
			Value:     float64(i),
			IsAnomaly: f,
		}
	}
	return results
}

func TestAggregateRatioExact(t *testing.T) {
	// 2 flagged out of 8.
	results := resultsFromFlags([]bool{false, true, false, false, true, false, false, false})

	verdict := Aggregate(results, 0.5, 10)

	if verdict.AnomalyRatio != 0.25 {
		t.Errorf("ratio = %v, want exactly 0.25", verdict.AnomalyRatio)
	}
	if verdict.MaxConsecutiveAnomaly != 1 {
		t.Errorf("max streak = %d, want 1", verdict.MaxConsecutiveAnomaly)
	}
	if verdict.IsSegmentAnomaly {
		t.Error("verdict should be non-anomalous")
	}
}

func TestAggregateAllFlagged(t *testing.T) {
	const n = 5
	flags := make([]bool, n)
	for i := range flags {
		flags[i] = true
	}

	verdict := Aggregate(resultsFromFlags(flags), 0.5, 100)

	if verdict.AnomalyRatio != 1.0 {
		t.Errorf("ratio = %v, want 1.0", verdict.AnomalyRatio)
	}
	if verdict.MaxConsecutiveAnomaly != n {
		t.Errorf("max streak = %d, want %d", verdict.MaxConsecutiveAnomaly, n)
	}
}

func TestAggregateEmpty(t *testing.T) {
	verdict := Aggregate(nil, 0.2, 20)

	if verdict.IsSegmentAnomaly {
		t.Error("empty input must yield a non-anomalous verdict")
	}
	if verdict.Reason != ReasonEmpty {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonEmpty)
	}
	if verdict.AnomalyRatio != 0 || verdict.MaxConsecutiveAnomaly != 0 {
		t.Error("empty verdict should have zeroed ratio and streak")
	}
	if verdict.Rules.RatioThreshold != 0.2 || verdict.Rules.StreakThreshold != 20 {
		t.Error("rules should echo the supplied thresholds")
	}
}

func TestAggregateORSemantics(t *testing.T) {
	tests := []struct {
		name            string
		flags           []bool
		ratioThreshold  float64
		streakThreshold int
		want            bool
	}{
		{
			// Ratio 3/10 below 0.5, but streak of 3 meets threshold.
			name:            "streak alone triggers",
			flags:           []bool{false, false, true, true, true, false, false, false, false, false},
			ratioThreshold:  0.5,
			streakThreshold: 3,
			want:            true,
		},
		{
			// Ratio 4/10 meets 0.4, but flags are scattered (streak 1 < 5).
			name:            "ratio alone triggers",
			flags:           []bool{true, false, true, false, true, false, true, false, false, false},
			ratioThreshold:  0.4,
			streakThreshold: 5,
			want:            true,
		},
		{
			name:            "neither rule met",
			flags:           []bool{true, false, false, true, false, false, false, false, false, false},
			ratioThreshold:  0.5,
			streakThreshold: 5,
			want:            false,
		},
		{
			name:            "both rules met",
			flags:           []bool{true, true, true, true, false},
			ratioThreshold:  0.5,
			streakThreshold: 2,
			want:            true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Aggregate(resultsFromFlags(tt.flags), tt.ratioThreshold, tt.streakThreshold)
			if verdict.IsSegmentAnomaly != tt.want {
				t.Errorf("IsSegmentAnomaly = %v, want %v (ratio=%v streak=%d)",
					verdict.IsSegmentAnomaly, tt.want, verdict.AnomalyRatio, verdict.MaxConsecutiveAnomaly)
			}
		})
	}
}

func TestAggregateStreakResets(t *testing.T) {
	verdict := Aggregate(resultsFromFlags([]bool{true, true, false, true, true, true}), 1.1, 100)

	if verdict.MaxConsecutiveAnomaly != 3 {
		t.Errorf("max streak = %d, want 3", verdict.MaxConsecutiveAnomaly)
	}
	if math.Abs(verdict.AnomalyRatio-5.0/6.0) > 1e-12 {
		t.Errorf("ratio = %v, want 5/6", verdict.AnomalyRatio)
	}
}

func TestAggregateThresholdsPassThrough(t *testing.T) {
	flags := []bool{false, false, false, false}

	// A zero ratio threshold is unconditionally satisfied: 0 >= 0.
	if v := Aggregate(resultsFromFlags(flags), 0, 100); !v.IsSegmentAnomaly {
		t.Error("ratio threshold 0 should make the verdict unconditionally true")
	}

	// Thresholds beyond reachable values are unconditionally unsatisfied,
	// even with every point flagged.
	all := []bool{true, true, true, true}
	if v := Aggregate(resultsFromFlags(all), 1.5, 100); v.IsSegmentAnomaly {
		t.Error("unreachable thresholds should make the verdict false")
	}
}
