package services

import (
	"context"
	stderrors "errors"

	"github.com/metricops/anomalyd/internal/detector"
	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/errors"
	"github.com/metricops/anomalyd/internal/pkg/logger"
	"github.com/metricops/anomalyd/internal/pkg/metrics"
)

// DetectionService implements detection.Service
type DetectionService struct {
	repo     detection.Repository
	logger   *logger.Logger
	defaults detector.Params
}

// NewDetectionService creates a new detection service. The defaults are
// applied by callers to requests that omit tuning parameters.
func NewDetectionService(repo detection.Repository, log *logger.Logger, defaults detector.Params) detection.Service {
	return &DetectionService{
		repo:     repo,
		logger:   log,
		defaults: defaults,
	}
}

// Defaults returns the parameters applied when a request omits them
func (s *DetectionService) Defaults() detector.Params {
	return s.defaults
}

// Detect scores the input series and appends a history record. Invalid
// input surfaces as-is; any other failure is wrapped so the caller sees a
// generic message while the cause stays in the logs.
func (s *DetectionService) Detect(ctx context.Context, input detection.Input) (*detector.Result, error) {
	result, err := detector.Detect(input.Series, input.Params)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, err
		}
		s.logger.ErrorWithErr(err, "Detection pass failed")
		return nil, errors.ComputationFailure(err)
	}

	anomalyCount := 0
	for _, p := range result.Points {
		if p.IsAnomaly {
			anomalyCount++
		}
	}

	run := &detection.Run{
		Source:          input.Source,
		AlertName:       input.AlertName,
		Severity:        input.Severity,
		Labels:          input.Labels,
		PointCount:      len(result.Points),
		AnomalyCount:    anomalyCount,
		AnomalyRatio:    result.Verdict.AnomalyRatio,
		MaxStreak:       result.Verdict.MaxConsecutiveAnomaly,
		SegmentAnomaly:  result.Verdict.IsSegmentAnomaly,
		Contamination:   input.Params.Contamination,
		Seed:            input.Params.Seed,
		RatioThreshold:  input.Params.RatioThreshold,
		StreakThreshold: input.Params.StreakThreshold,
		Intervals:       result.Intervals,
		DurationMs:      result.Duration.Milliseconds(),
	}

	// History is best effort; a write failure does not fail the detection
	if _, err := s.repo.Create(ctx, run); err != nil {
		s.logger.WithError(err).Warn("Failed to record detection run")
	}

	metrics.RecordDetection(input.Source, result.Verdict.IsSegmentAnomaly, len(result.Points), result.Duration)

	s.logger.WithFields(map[string]interface{}{
		"source":          input.Source,
		"alert_name":      input.AlertName,
		"points":          len(result.Points),
		"anomalies":       anomalyCount,
		"segment_anomaly": result.Verdict.IsSegmentAnomaly,
		"intervals":       len(result.Intervals),
		"duration_ms":     result.Duration.Milliseconds(),
	}).Info("Detection completed")

	return result, nil
}

// GetRun retrieves one recorded run
func (s *DetectionService) GetRun(ctx context.Context, id int64) (*detection.Run, error) {
	return s.repo.GetByID(ctx, id)
}

// ListRuns retrieves recorded runs newest-first
func (s *DetectionService) ListRuns(ctx context.Context, filter detection.Filter, limit, offset int) ([]*detection.Run, int64, error) {
	return s.repo.List(ctx, filter, limit, offset)
}
