package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/metricops/anomalyd/internal/detector"
	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/errors"
	"github.com/metricops/anomalyd/internal/pkg/logger"
	"github.com/metricops/anomalyd/internal/testutil"
)

func testSeries(n int, outliers ...int) []detector.Observation {
	isOutlier := make(map[int]bool, len(outliers))
	for _, i := range outliers {
		isOutlier[i] = true
	}

	series := make([]detector.Observation, n)
	for i := 0; i < n; i++ {
		value := 10.0 + 0.01*float64(i%7)
		if isOutlier[i] {
			value = 500.0
		}
		series[i] = detector.Observation{
			Timestamp: fmt.Sprintf("2024-01-01T00:%02d:00Z", i),
			Value:     value,
		}
	}
	return series
}

func newTestService(repo detection.Repository) detection.Service {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewDetectionService(repo, log, detector.DefaultParams())
}

func TestDetectionService_Detect(t *testing.T) {
	mockRepo := testutil.NewMockDetectionRepository()
	service := newTestService(mockRepo)

	input := detection.Input{
		Source:    detection.SourceAPI,
		AlertName: "HighCPU",
		Severity:  detection.SeverityHigh,
		Labels:    map[string]string{"instance": "node-1"},
		Series:    testSeries(30, 12, 13, 14),
		Params: detector.Params{
			Contamination:   0.1,
			Seed:            42,
			RatioThreshold:  0.05,
			StreakThreshold: 3,
		},
	}

	result, err := service.Detect(context.Background(), input)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(result.Points) != 30 {
		t.Errorf("Detect() returned %v points, want 30", len(result.Points))
	}
	if !result.Verdict.IsSegmentAnomaly {
		t.Error("Detect() verdict not anomalous for series with outlier block")
	}
	if len(result.Intervals) != 1 {
		t.Fatalf("Detect() intervals = %v, want one", result.Intervals)
	}

	// A history record was appended
	if len(mockRepo.Runs) != 1 {
		t.Fatalf("Detect() recorded %v runs, want 1", len(mockRepo.Runs))
	}
	run := mockRepo.Runs[1]
	if run.Source != detection.SourceAPI {
		t.Errorf("run.Source = %v, want %v", run.Source, detection.SourceAPI)
	}
	if run.AlertName != "HighCPU" {
		t.Errorf("run.AlertName = %v, want HighCPU", run.AlertName)
	}
	if run.PointCount != 30 {
		t.Errorf("run.PointCount = %v, want 30", run.PointCount)
	}
	if run.AnomalyCount != 3 {
		t.Errorf("run.AnomalyCount = %v, want 3", run.AnomalyCount)
	}
	if !run.SegmentAnomaly {
		t.Error("run.SegmentAnomaly = false, want true")
	}
	if len(run.Intervals) != 1 {
		t.Errorf("run.Intervals = %v, want one", run.Intervals)
	}
}

func TestDetectionService_DetectInvalidInput(t *testing.T) {
	mockRepo := testutil.NewMockDetectionRepository()
	service := newTestService(mockRepo)

	tests := []struct {
		name   string
		series []detector.Observation
		params detector.Params
	}{
		{
			name:   "single point",
			series: testSeries(1),
			params: detector.DefaultParams(),
		},
		{
			name:   "bad contamination",
			series: testSeries(30),
			params: detector.Params{Contamination: 0.9, Seed: 42, RatioThreshold: 0.2, StreakThreshold: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Detect(context.Background(), detection.Input{
				Source: detection.SourceAPI,
				Series: tt.series,
				Params: tt.params,
			})
			if err == nil {
				t.Fatal("Detect() expected error")
			}

			appErr, ok := err.(*errors.AppError)
			if !ok {
				t.Fatalf("Detect() error type = %T, want *errors.AppError", err)
			}
			if appErr.Code != errors.ErrCodeInvalidInput {
				t.Errorf("Detect() error code = %v, want %v", appErr.Code, errors.ErrCodeInvalidInput)
			}
		})
	}

	if len(mockRepo.Runs) != 0 {
		t.Errorf("Detect() recorded %v runs for invalid input, want 0", len(mockRepo.Runs))
	}
}

func TestDetectionService_DetectEmptySeries(t *testing.T) {
	mockRepo := testutil.NewMockDetectionRepository()
	service := newTestService(mockRepo)

	result, err := service.Detect(context.Background(), detection.Input{
		Source: detection.SourceAPI,
		Series: nil,
		Params: detector.DefaultParams(),
	})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(result.Points) != 0 {
		t.Errorf("Detect() points = %v, want none", result.Points)
	}
	if result.Verdict.IsSegmentAnomaly {
		t.Error("Detect() empty series verdict is anomalous")
	}
	if result.Verdict.Reason != detector.ReasonEmpty {
		t.Errorf("Detect() reason = %q, want %q", result.Verdict.Reason, detector.ReasonEmpty)
	}
}

func TestDetectionService_DetectHistoryWriteFailure(t *testing.T) {
	mockRepo := testutil.NewMockDetectionRepository()
	mockRepo.CreateError = errors.DatabaseError("Failed to create detection run", nil)
	service := newTestService(mockRepo)

	// The detection result is still returned when history cannot be written
	result, err := service.Detect(context.Background(), detection.Input{
		Source: detection.SourceAPI,
		Series: testSeries(30, 15),
		Params: detector.DefaultParams(),
	})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(result.Points) != 30 {
		t.Errorf("Detect() returned %v points, want 30", len(result.Points))
	}
}

func TestDetectionService_Defaults(t *testing.T) {
	mockRepo := testutil.NewMockDetectionRepository()
	log := logger.New(logger.Config{Level: "error", Format: "json"})

	defaults := detector.Params{
		Contamination:   0.1,
		Seed:            7,
		RatioThreshold:  0.3,
		StreakThreshold: 5,
	}
	service := NewDetectionService(mockRepo, log, defaults)

	if got := service.Defaults(); got != defaults {
		t.Errorf("Defaults() = %+v, want %+v", got, defaults)
	}
}

func TestDetectionService_GetRun(t *testing.T) {
	mockRepo := testutil.NewMockDetectionRepository()
	service := newTestService(mockRepo)
	ctx := context.Background()

	if _, err := service.Detect(ctx, detection.Input{
		Source: detection.SourceAPI,
		Series: testSeries(30, 5),
		Params: detector.DefaultParams(),
	}); err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	run, err := service.GetRun(ctx, 1)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.PointCount != 30 {
		t.Errorf("GetRun() PointCount = %v, want 30", run.PointCount)
	}

	if _, err := service.GetRun(ctx, 999); err == nil {
		t.Error("GetRun() expected error for missing run")
	}
}

func TestDetectionService_ListRuns(t *testing.T) {
	mockRepo := testutil.NewMockDetectionRepository()
	service := newTestService(mockRepo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := service.Detect(ctx, detection.Input{
			Source: detection.SourceMonitor,
			Series: testSeries(30),
			Params: detector.DefaultParams(),
		}); err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
	}

	runs, total, err := service.ListRuns(ctx, detection.Filter{Source: detection.SourceMonitor}, 10, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if total != 3 {
		t.Errorf("ListRuns() total = %v, want 3", total)
	}
	if len(runs) != 3 {
		t.Errorf("ListRuns() returned %v runs, want 3", len(runs))
	}
}
