package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/errors"
)

// MockDetectionRepository is a mock implementation of detection.Repository
type MockDetectionRepository struct {
	mu          sync.Mutex
	Runs        map[int64]*detection.Run
	NextID      int64
	CreateError error
	GetError    error
	ListError   error
	DeleteError error
}

func NewMockDetectionRepository() *MockDetectionRepository {
	return &MockDetectionRepository{
		Runs:   make(map[int64]*detection.Run),
		NextID: 1,
	}
}

func (m *MockDetectionRepository) Create(ctx context.Context, run *detection.Run) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	run.ID = m.NextID
	m.NextID++
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	m.Runs[run.ID] = run
	return run.ID, nil
}

func (m *MockDetectionRepository) GetByID(ctx context.Context, id int64) (*detection.Run, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.Runs[id]
	if !ok {
		return nil, errors.NotFound("Detection run")
	}
	return run, nil
}

func (m *MockDetectionRepository) List(ctx context.Context, filter detection.Filter, limit, offset int) ([]*detection.Run, int64, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*detection.Run, 0, len(m.Runs))
	for _, run := range m.Runs {
		if filter.Source != "" && run.Source != filter.Source {
			continue
		}
		if filter.AlertName != "" && run.AlertName != filter.AlertName {
			continue
		}
		if filter.Anomalous != nil && run.SegmentAnomaly != *filter.Anomalous {
			continue
		}
		matched = append(matched, run)
	}
	// Newest first, matching the real repository
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*detection.Run{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *MockDetectionRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*detection.Run, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*detection.Run, 0, len(m.Runs))
	for _, run := range m.Runs {
		if run.CreatedAt.Before(cutoff) {
			matched = append(matched, run)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MockDetectionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := make([]int64, 0, len(m.Runs))
	for id, run := range m.Runs {
		if run.CreatedAt.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	// Oldest first, matching the real repository
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	if len(expired) > limit {
		expired = expired[:limit]
	}

	for _, id := range expired {
		delete(m.Runs, id)
	}
	return int64(len(expired)), nil
}
