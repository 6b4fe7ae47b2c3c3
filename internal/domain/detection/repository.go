package detection

import (
	"context"
	"time"
)

// Repository defines the interface for detection run persistence
type Repository interface {
	// Create appends a run record and returns its ID
	Create(ctx context.Context, run *Run) (int64, error)

	// GetByID retrieves a run by ID
	GetByID(ctx context.Context, id int64) (*Run, error)

	// List retrieves runs newest-first with filters and pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Run, int64, error)

	// ListOlderThan retrieves up to limit runs created before cutoff,
	// oldest first
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*Run, error)

	// DeleteOlderThan removes up to limit of the oldest runs created before
	// cutoff and returns the number deleted
	DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
