package client

import (
	"encoding/json"
	"time"
)

// AlertMetadata describes the alert context attached to a detection
// request. It is echoed back unchanged in the response.
type AlertMetadata struct {
	AlertName string            `json:"alert_name,omitempty"`
	Severity  string            `json:"severity,omitempty"` // critical, high, medium, low
	Labels    map[string]string `json:"labels,omitempty"`
}

// DataPoint is one observation of a series.
type DataPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// DetectRequest is a detection request. Nil parameter fields take the
// server-side defaults.
type DetectRequest struct {
	Metadata        *AlertMetadata `json:"metadata,omitempty"`
	Data            []DataPoint    `json:"data"`
	Contamination   *float64       `json:"contamination,omitempty"`
	RandomState     *int64         `json:"random_state,omitempty"`
	RatioThreshold  *float64       `json:"ratio_threshold,omitempty"`
	StreakThreshold *int           `json:"streak_threshold,omitempty"`
}

// Interval is one contiguous anomalous range, inclusive on both ends.
type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DetectResponse is the compact detection result. Anomalies is empty when
// the series as a whole is not judged anomalous.
type DetectResponse struct {
	Metadata  *AlertMetadata `json:"metadata,omitempty"`
	Anomalies []Interval     `json:"anomalies"`
}

// PointResult is one scored observation. Lower scores are more anomalous;
// flagged points have negative scores.
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

// SegmentVerdict is the aggregate decision for the whole series.
type SegmentVerdict struct {
	IsSegmentAnomaly      bool         `json:"is_segment_anomaly"`
	AnomalyRatio          float64      `json:"anomaly_ratio"`
	MaxConsecutiveAnomaly int          `json:"max_consecutive_anomaly"`
	Reason                string       `json:"reason,omitempty"`
	Rules                 SegmentRules `json:"rules"`
}

// DetectVerboseResponse is the detection result with per-point scores and
// the segment verdict included.
type DetectVerboseResponse struct {
	Metadata   *AlertMetadata `json:"metadata,omitempty"`
	Points     []PointResult  `json:"points"`
	Segment    SegmentVerdict `json:"segment"`
	Anomalies  []Interval     `json:"anomalies"`
	DurationMs int64          `json:"duration_ms"`
}

// Run is one recorded detection pass.
type Run struct {
	ID              int64             `json:"id"`
	Source          string            `json:"source"` // api, monitor
	AlertName       string            `json:"alert_name,omitempty"`
	Severity        string            `json:"severity,omitempty"`
	Labels          map[string]string `json:"labels,omitempty"`
	PointCount      int               `json:"point_count"`
	AnomalyCount    int               `json:"anomaly_count"`
	AnomalyRatio    float64           `json:"anomaly_ratio"`
	MaxStreak       int               `json:"max_streak"`
	SegmentAnomaly  bool              `json:"segment_anomaly"`
	Contamination   float64           `json:"contamination"`
	Seed            int64             `json:"seed"`
	RatioThreshold  float64           `json:"ratio_threshold"`
	StreakThreshold int               `json:"streak_threshold"`
	Intervals       []Interval        `json:"intervals"`
	DurationMs      int64             `json:"duration_ms"`
	CreatedAt       time.Time         `json:"created_at"`
}

// AlertRecord is one alert payload stored by the relay, stamped with the
// time it was received.
type AlertRecord struct {
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// ListOptions contains common pagination options
type ListOptions struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// RunListOptions contains options for listing detection runs
type RunListOptions struct {
	ListOptions
	Source    *string `json:"source,omitempty"` // api, monitor
	AlertName *string `json:"alert_name,omitempty"`
	Anomalous *bool   `json:"anomalous,omitempty"`
}

// successEnvelope is the wrapper the runs endpoints return.
type successEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// paginatedRuns is the page payload inside a list envelope.
type paginatedRuns struct {
	Data       []Run `json:"data"`
	TotalItems int64 `json:"total_items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}
