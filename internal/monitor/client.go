package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/metricops/anomalyd/internal/detector"
	"github.com/metricops/anomalyd/internal/pkg/logger"
)

// Querier fetches a range of samples for a PromQL expression.
type Querier interface {
	QueryRange(ctx context.Context, promql string, start, end time.Time, step time.Duration) ([]detector.Observation, error)
}

// PrometheusClient implements Querier against a Prometheus server.
type PrometheusClient struct {
	api    promv1.API
	logger *logger.Logger
}

// NewPrometheusClient creates a range-query client for the given address.
func NewPrometheusClient(address string, log *logger.Logger) (*PrometheusClient, error) {
	client, err := api.NewClient(api.Config{
		Address: address,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}

	return &PrometheusClient{
		api:    promv1.NewAPI(client),
		logger: log,
	}, nil
}

// QueryRange runs a range query and flattens the result into a series.
func (c *PrometheusClient) QueryRange(ctx context.Context, promql string, start, end time.Time, step time.Duration) ([]detector.Observation, error) {
	result, warnings, err := c.api.QueryRange(ctx, promql, promv1.Range{
		Start: start,
		End:   end,
		Step:  step,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query prometheus: %w", err)
	}
	if len(warnings) > 0 {
		c.logger.WithFields(map[string]interface{}{
			"warnings": warnings,
		}).Warn("Prometheus returned warnings")
	}

	matrix, ok := result.(model.Matrix)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: %T", result)
	}

	return MatrixToObservations(matrix), nil
}

// MatrixToObservations flattens a range query result into an ordered series.
// Streams are concatenated; monitor queries are expected to aggregate down
// to a single series.
func MatrixToObservations(matrix model.Matrix) []detector.Observation {
	var obs []detector.Observation
	for _, stream := range matrix {
		for _, pair := range stream.Values {
			obs = append(obs, detector.Observation{
				Timestamp: pair.Timestamp.Time().UTC().Format(time.RFC3339),
				Value:     float64(pair.Value),
			})
		}
	}
	return obs
}
