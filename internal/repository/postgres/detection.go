package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/errors"
	"github.com/metricops/anomalyd/internal/pkg/metrics"
)

// DetectionRepository implements detection.Repository using database/sql
type DetectionRepository struct {
	db *sql.DB
}

// NewDetectionRepository creates a new detection run repository
func NewDetectionRepository(db *sql.DB) detection.Repository {
	return &DetectionRepository{db: db}
}

const runColumns = `id, source, alert_name, severity, labels, point_count, anomaly_count,
	anomaly_ratio, max_streak, segment_anomaly, contamination, seed,
	ratio_threshold, streak_threshold, intervals, duration_ms, created_at`

func (r *DetectionRepository) Create(ctx context.Context, run *detection.Run) (int64, error) {
	start := time.Now()

	labels, err := json.Marshal(run.Labels)
	if err != nil {
		return 0, errors.DatabaseError("Failed to encode run labels", err)
	}
	intervals, err := json.Marshal(run.Intervals)
	if err != nil {
		return 0, errors.DatabaseError("Failed to encode run intervals", err)
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO detection_runs (
			source, alert_name, severity, labels, point_count, anomaly_count,
			anomaly_ratio, max_streak, segment_anomaly, contamination, seed,
			ratio_threshold, streak_threshold, intervals, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		run.Source, run.AlertName, run.Severity, string(labels),
		run.PointCount, run.AnomalyCount, run.AnomalyRatio, run.MaxStreak,
		run.SegmentAnomaly, run.Contamination, run.Seed,
		run.RatioThreshold, run.StreakThreshold, string(intervals),
		run.DurationMs, run.CreatedAt.UTC().Format(time.RFC3339),
	).Scan(&id)
	if err != nil {
		return 0, errors.DatabaseError("Failed to create detection run", err)
	}

	run.ID = id
	metrics.RecordDBQuery("insert", "detection_runs", time.Since(start))
	return id, nil
}

func (r *DetectionRepository) GetByID(ctx context.Context, id int64) (*detection.Run, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM detection_runs WHERE id = $1`, runColumns)

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Detection run")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get detection run", err)
	}

	metrics.RecordDBQuery("select", "detection_runs", time.Since(start))
	return run, nil
}

func (r *DetectionRepository) List(ctx context.Context, filter detection.Filter, limit, offset int) ([]*detection.Run, int64, error) {
	start := time.Now()

	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Source != "" {
		where = append(where, fmt.Sprintf("source = $%d", len(args)+1))
		args = append(args, filter.Source)
	}
	if filter.AlertName != "" {
		where = append(where, fmt.Sprintf("alert_name = $%d", len(args)+1))
		args = append(args, filter.AlertName)
	}
	if filter.Anomalous != nil {
		where = append(where, fmt.Sprintf("segment_anomaly = $%d", len(args)+1))
		args = append(args, *filter.Anomalous)
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM detection_runs WHERE %s", whereClause), args...).Scan(&total)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to count detection runs", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM detection_runs WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		runColumns, whereClause, len(args)+1, len(args)+2)

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list detection runs", err)
	}
	defer rows.Close()

	// Pre-allocate slice with expected capacity
	runs := make([]*detection.Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan detection run", err)
		}
		runs = append(runs, run)
	}

	metrics.RecordDBQuery("select", "detection_runs", time.Since(start))
	return runs, total, rows.Err()
}

func (r *DetectionRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*detection.Run, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM detection_runs WHERE created_at < $1 ORDER BY id ASC LIMIT $2`, runColumns)

	rows, err := r.db.QueryContext(ctx, query, cutoff.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list expired detection runs", err)
	}
	defer rows.Close()

	runs := make([]*detection.Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan detection run", err)
		}
		runs = append(runs, run)
	}

	metrics.RecordDBQuery("select", "detection_runs", time.Since(start))
	return runs, rows.Err()
}

func (r *DetectionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	start := time.Now()

	// Subquery keeps the batched delete portable across sqlite and postgres;
	// id ASC matches the ordering ListOlderThan returns
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM detection_runs WHERE id IN (
			SELECT id FROM detection_runs WHERE created_at < $1 ORDER BY id ASC LIMIT $2
		)`,
		cutoff.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return 0, errors.DatabaseError("Failed to delete expired detection runs", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to read deleted run count", err)
	}

	metrics.RecordDBQuery("delete", "detection_runs", time.Since(start))
	return deleted, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*detection.Run, error) {
	var run detection.Run
	var labels, intervals, createdAt string

	err := s.Scan(
		&run.ID, &run.Source, &run.AlertName, &run.Severity, &labels,
		&run.PointCount, &run.AnomalyCount, &run.AnomalyRatio, &run.MaxStreak,
		&run.SegmentAnomaly, &run.Contamination, &run.Seed,
		&run.RatioThreshold, &run.StreakThreshold, &intervals,
		&run.DurationMs, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if labels != "" && labels != "null" {
		if err := json.Unmarshal([]byte(labels), &run.Labels); err != nil {
			return nil, fmt.Errorf("decode labels: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(intervals), &run.Intervals); err != nil {
		return nil, fmt.Errorf("decode intervals: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &run, nil
}
