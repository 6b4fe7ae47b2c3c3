package detection

import (
	"time"

	"github.com/metricops/anomalyd/internal/detector"
)

// Run records one completed detection pass over a series. Runs are an
// append-only history; they are never read back into scoring.
type Run struct {
	ID              int64               `json:"id"`
	Source          string              `json:"source"`
	AlertName       string              `json:"alert_name,omitempty"`
	Severity        string              `json:"severity,omitempty"`
	Labels          map[string]string   `json:"labels,omitempty"`
	PointCount      int                 `json:"point_count"`
	AnomalyCount    int                 `json:"anomaly_count"`
	AnomalyRatio    float64             `json:"anomaly_ratio"`
	MaxStreak       int                 `json:"max_streak"`
	SegmentAnomaly  bool                `json:"segment_anomaly"`
	Contamination   float64             `json:"contamination"`
	Seed            int64               `json:"seed"`
	RatioThreshold  float64             `json:"ratio_threshold"`
	StreakThreshold int                 `json:"streak_threshold"`
	Intervals       []detector.Interval `json:"intervals"`
	DurationMs      int64               `json:"duration_ms"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Run sources
const (
	SourceAPI     = "api"
	SourceMonitor = "monitor"
)

// Severity levels carried in request metadata
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Filter contains run filtering options
type Filter struct {
	Source    string
	AlertName string
	Anomalous *bool
}

// Input is one detection request as seen by the service layer.
type Input struct {
	Source    string
	AlertName string
	Severity  string
	Labels    map[string]string
	Series    []detector.Observation
	Params    detector.Params
}
