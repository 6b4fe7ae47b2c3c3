package detector

// Extract walks the ordered point results once and emits one interval per
// maximal run of consecutive flagged points. Runs are determined purely by
// adjacency in the sequence, never by timestamp distance: two flagged
// neighbors far apart in time still form one run. Interval order matches
// the order runs appear in the input.
func Extract(results []PointResult) []Interval {
	intervals := []Interval{}

	runStart := -1
	for i, r := range results {
		if r.IsAnomaly {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			intervals = append(intervals, Interval{
				Start: results[runStart].Timestamp,
				End:   results[i-1].Timestamp,
			})
			runStart = -1
		}
	}

	if runStart >= 0 {
		intervals = append(intervals, Interval{
			Start: results[runStart].Timestamp,
			End:   results[len(results)-1].Timestamp,
		})
	}

	return intervals
}
