package detection

import (
	"context"

	"github.com/metricops/anomalyd/internal/detector"
)

// Service defines the interface for detection business logic
type Service interface {
	// Detect runs the scoring pipeline over the input series. The result is
	// computed entirely from the request; a history record is appended as a
	// side effect and its failure does not fail the detection.
	Detect(ctx context.Context, input Input) (*detector.Result, error)

	// Defaults returns the parameters applied when a request omits them
	Defaults() detector.Params

	// GetRun retrieves one recorded run
	GetRun(ctx context.Context, id int64) (*Run, error)

	// ListRuns retrieves recorded runs newest-first
	ListRuns(ctx context.Context, filter Filter, limit, offset int) ([]*Run, int64, error)
}
