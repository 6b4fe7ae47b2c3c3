package detector

// ReasonEmpty marks the fixed verdict returned for an empty input series.
const ReasonEmpty = "empty"

// Aggregate decides whether the series as a whole is anomalous. Two rules,
// either alone sufficient: the share of flagged points reaches
// ratioThreshold, or the longest run of consecutive flagged points reaches
// streakThreshold. An empty input yields a fixed non-anomalous verdict with
// Reason set to "empty" instead of dividing by zero.
//
// Thresholds are taken as supplied. Out-of-range values are neither clamped
// nor rejected; they simply make their rule unconditionally true or false.
func Aggregate(results []PointResult, ratioThreshold float64, streakThreshold int) SegmentVerdict {
	rules := SegmentRules{
		RatioThreshold:  ratioThreshold,
		StreakThreshold: streakThreshold,
	}

	if len(results) == 0 {
		return SegmentVerdict{
			IsSegmentAnomaly: false,
			Reason:           ReasonEmpty,
			Rules:            rules,
		}
	}

	flagged := 0
	streak := 0
	maxStreak := 0
	for _, r := range results {
		if r.IsAnomaly {
			flagged++
			streak++
			if streak > maxStreak {
				maxStreak = streak
			}
		} else {
			streak = 0
		}
	}

	ratio := float64(flagged) / float64(len(results))

	return SegmentVerdict{
		IsSegmentAnomaly:      ratio >= ratioThreshold || maxStreak >= streakThreshold,
		AnomalyRatio:          ratio,
		MaxConsecutiveAnomaly: maxStreak,
		Rules:                 rules,
	}
}
