package worker

import (
	"context"
	"time"

	"github.com/metricops/anomalyd/internal/archive"
	"github.com/metricops/anomalyd/internal/config"
	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/logger"
	"github.com/metricops/anomalyd/internal/pkg/metrics"
)

// RetentionSweeper prunes detection runs past the retention window,
// optionally archiving each batch before it is deleted.
type RetentionSweeper struct {
	repo     detection.Repository
	archiver archive.Archiver
	days     int
	interval time.Duration
	batch    int
	logger   *logger.Logger
}

// NewRetentionSweeper creates a retention worker. A nil archiver disables
// archiving; expired runs are then deleted outright.
func NewRetentionSweeper(
	repo detection.Repository,
	archiver archive.Archiver,
	cfg config.RetentionConfig,
	log *logger.Logger,
) *RetentionSweeper {
	return &RetentionSweeper{
		repo:     repo,
		archiver: archiver,
		days:     cfg.Days,
		interval: cfg.SweepInterval,
		batch:    cfg.BatchSize,
		logger:   log,
	}
}

// Start begins the periodic retention sweeps and blocks until ctx is done.
func (s *RetentionSweeper) Start(ctx context.Context) {
	s.logger.WithFields(map[string]interface{}{
		"days":     s.days,
		"interval": s.interval.String(),
		"archive":  s.archiver != nil,
	}).Info("Starting retention sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run initial sweep
	s.Sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			s.logger.Info("Retention sweeper stopped")
			return
		}
	}
}

// Sweep drains expired runs batch by batch. Each batch is archived before
// its delete, so an upload failure never loses history; the batch is simply
// retried on the next sweep.
func (s *RetentionSweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.days)

	var pruned int64
	for {
		runs, err := s.repo.ListOlderThan(ctx, cutoff, s.batch)
		if err != nil {
			s.logger.ErrorWithErr(err, "Failed to list expired runs")
			return
		}
		if len(runs) == 0 {
			break
		}

		if s.archiver != nil {
			key, err := s.archiver.Archive(ctx, runs)
			if err != nil {
				s.logger.ErrorWithErr(err, "Failed to archive expired runs")
				return
			}
			metrics.RecordRunsArchived(len(runs))
			s.logger.WithFields(map[string]interface{}{
				"runs": len(runs),
				"key":  key,
			}).Info("Expired runs archived")
		}

		// ListOlderThan and DeleteOlderThan share their ordering, so this
		// deletes exactly the batch that was just archived
		deleted, err := s.repo.DeleteOlderThan(ctx, cutoff, len(runs))
		if err != nil {
			s.logger.ErrorWithErr(err, "Failed to prune expired runs")
			return
		}
		pruned += deleted
		metrics.RecordRunsPruned(int(deleted))

		if len(runs) < s.batch {
			break
		}
	}

	if pruned > 0 {
		s.logger.WithFields(map[string]interface{}{
			"pruned": pruned,
			"cutoff": cutoff.Format(time.RFC3339),
		}).Info("Retention sweep completed")
	}
}
