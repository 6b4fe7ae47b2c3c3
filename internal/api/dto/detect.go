package dto

import "github.com/metricops/anomalyd/internal/detector"

// AlertMetadata carries optional alert context supplied by the caller.
// It does not influence scoring and is echoed back in the response.
type AlertMetadata struct {
	AlertName string            `json:"alert_name,omitempty"`
	Severity  string            `json:"severity,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// DataPoint is one observation in a detection request
type DataPoint struct {
	Timestamp string   `json:"timestamp" validate:"required"`
	Value     *float64 `json:"value" validate:"required"`
}

// DetectRequest represents a detection request. Tuning parameters are
// pointers so an omitted field can fall back to the configured default
// while an explicit zero is honored.
type DetectRequest struct {
	Metadata        *AlertMetadata `json:"metadata,omitempty"`
	Data            []DataPoint    `json:"data" validate:"required,dive"`
	Contamination   *float64       `json:"contamination,omitempty"`
	RandomState     *int64         `json:"random_state,omitempty"`
	RatioThreshold  *float64       `json:"ratio_threshold,omitempty"`
	StreakThreshold *int           `json:"streak_threshold,omitempty"`
}

// Series converts the request data into detector observations
func (r *DetectRequest) Series() []detector.Observation {
	series := make([]detector.Observation, len(r.Data))
	for i, p := range r.Data {
		series[i] = detector.Observation{Timestamp: p.Timestamp, Value: *p.Value}
	}
	return series
}

// Params merges the request tuning parameters over the given defaults
func (r *DetectRequest) Params(defaults detector.Params) detector.Params {
	params := defaults
	if r.Contamination != nil {
		params.Contamination = *r.Contamination
	}
	if r.RandomState != nil {
		params.Seed = *r.RandomState
	}
	if r.RatioThreshold != nil {
		params.RatioThreshold = *r.RatioThreshold
	}
	if r.StreakThreshold != nil {
		params.StreakThreshold = *r.StreakThreshold
	}
	return params
}

// DetectResponse represents a detection response. Anomalies is always
// present and empty when the segment verdict is non-anomalous.
type DetectResponse struct {
	Metadata  *AlertMetadata      `json:"metadata,omitempty"`
	Anomalies []detector.Interval `json:"anomalies"`
}

// DetectVerboseResponse carries the full scoring output alongside the
// interval summary
type DetectVerboseResponse struct {
	Metadata   *AlertMetadata          `json:"metadata,omitempty"`
	Points     []detector.PointResult  `json:"points"`
	Segment    detector.SegmentVerdict `json:"segment"`
	Anomalies  []detector.Interval     `json:"anomalies"`
	DurationMs int64                   `json:"duration_ms"`
}
