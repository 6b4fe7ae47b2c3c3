package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// Health checks the liveness of the API
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	return c.probe(ctx, "/healthz")
}

// Ready checks whether the API can reach its database
func (c *Client) Ready(ctx context.Context) (*HealthResponse, error) {
	return c.probe(ctx, "/readyz")
}

// Ping is a simple connectivity test
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

func (c *Client) probe(ctx context.Context, path string) (*HealthResponse, error) {
	var envelope successEnvelope
	if err := c.doRequest(ctx, "GET", c.baseURL, path, nil, &envelope); err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := json.Unmarshal(envelope.Data, &health); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &health, nil
}
