// Package monitor periodically pulls metric series from Prometheus and runs
// them through the detection service, turning dashboards into scheduled
// anomaly sweeps.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/metricops/anomalyd/internal/config"
	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/logger"
	"github.com/metricops/anomalyd/internal/pkg/metrics"
)

// Minimum number of samples worth scoring; shorter series are skipped
// instead of being reported as failures.
const minSamples = 2

// Monitor schedules detection sweeps over configured PromQL queries.
type Monitor struct {
	querier Querier
	service detection.Service
	queries []QueryConfig
	logger  *logger.Logger

	schedule string
	step     time.Duration
	window   time.Duration

	scheduler    *cron.Cron
	isRunning    bool
	runningMutex sync.RWMutex
}

// New creates a monitor; call Start to begin sweeping.
func New(querier Querier, service detection.Service, queries []QueryConfig, cfg config.MonitorConfig, log *logger.Logger) *Monitor {
	return &Monitor{
		querier:  querier,
		service:  service,
		queries:  queries,
		logger:   log,
		schedule: cfg.Schedule,
		step:     cfg.QueryStep,
		window:   cfg.QueryRange,
	}
}

// Start validates the schedule, runs one immediate sweep, and begins the
// periodic schedule.
func (m *Monitor) Start(ctx context.Context) error {
	m.runningMutex.Lock()
	defer m.runningMutex.Unlock()

	if m.isRunning {
		return fmt.Errorf("monitor is already running")
	}

	if _, err := cron.ParseStandard(m.schedule); err != nil {
		return fmt.Errorf("invalid monitor schedule: %w", err)
	}

	m.scheduler = cron.New()
	if _, err := m.scheduler.AddFunc(m.schedule, func() {
		m.Sweep(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule monitor: %w", err)
	}

	m.scheduler.Start()
	m.isRunning = true

	// First sweep runs right away so operators get signal without waiting
	// a full interval.
	go m.Sweep(ctx)

	m.logger.WithFields(map[string]interface{}{
		"queries":  len(m.queries),
		"schedule": m.schedule,
	}).Info("Monitor started")

	return nil
}

// Stop halts the periodic schedule.
func (m *Monitor) Stop() {
	m.runningMutex.Lock()
	defer m.runningMutex.Unlock()

	if !m.isRunning {
		return
	}

	m.scheduler.Stop()
	m.isRunning = false

	m.logger.Info("Monitor stopped")
}

// IsRunning returns whether the monitor is currently scheduled.
func (m *Monitor) IsRunning() bool {
	m.runningMutex.RLock()
	defer m.runningMutex.RUnlock()
	return m.isRunning
}

// Sweep runs every configured query once.
func (m *Monitor) Sweep(ctx context.Context) {
	for _, q := range m.queries {
		if err := m.runQuery(ctx, q); err != nil {
			m.logger.WithFields(map[string]interface{}{
				"query": q.Name,
			}).ErrorWithErr(err, "Monitor query failed")
		}
	}
}

func (m *Monitor) runQuery(ctx context.Context, q QueryConfig) error {
	start := time.Now()
	end := start.UTC()

	series, err := m.querier.QueryRange(ctx, q.PromQL, end.Add(-m.window), end, m.step)
	if err != nil {
		metrics.RecordMonitorQuery(q.Name, "error", time.Since(start))
		return err
	}

	if len(series) < minSamples {
		metrics.RecordMonitorQuery(q.Name, "skipped", time.Since(start))
		m.logger.WithFields(map[string]interface{}{
			"query":   q.Name,
			"samples": len(series),
		}).Debug("Not enough samples, skipping query")
		return nil
	}

	result, err := m.service.Detect(ctx, detection.Input{
		Source:    detection.SourceMonitor,
		AlertName: q.Name,
		Severity:  q.Severity,
		Labels:    q.Labels,
		Series:    series,
		Params:    q.Params(m.service.Defaults()),
	})
	if err != nil {
		metrics.RecordMonitorQuery(q.Name, "error", time.Since(start))
		return err
	}

	status := "ok"
	if result.Verdict.IsSegmentAnomaly {
		status = "anomaly"
	}
	metrics.RecordMonitorQuery(q.Name, status, time.Since(start))

	if result.Verdict.IsSegmentAnomaly {
		m.logger.WithFields(map[string]interface{}{
			"query":      q.Name,
			"severity":   q.Severity,
			"samples":    len(series),
			"ratio":      result.Verdict.AnomalyRatio,
			"max_streak": result.Verdict.MaxConsecutiveAnomaly,
			"intervals":  len(result.Intervals),
		}).Warn("Anomaly detected")
		return nil
	}

	m.logger.WithFields(map[string]interface{}{
		"query":   q.Name,
		"samples": len(series),
	}).Debug("Query healthy")

	return nil
}
