package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// DetectionService handles detection-related API calls
type DetectionService struct {
	client *Client
}

// Detect scores a series and returns the anomaly intervals
func (s *DetectionService) Detect(ctx context.Context, req DetectRequest) (*DetectResponse, error) {
	var resp DetectResponse
	if err := s.client.doRequest(ctx, "POST", s.client.baseURL, "/api/v1/detect", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DetectVerbose scores a series and returns every point score, the segment
// verdict, and the anomaly intervals
func (s *DetectionService) DetectVerbose(ctx context.Context, req DetectRequest) (*DetectVerboseResponse, error) {
	var resp DetectVerboseResponse
	if err := s.client.doRequest(ctx, "POST", s.client.baseURL, "/api/v1/detect/verbose", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List retrieves recorded detection runs, newest first, along with the
// total number of matching runs
func (s *DetectionService) List(ctx context.Context, opts *RunListOptions) ([]Run, int64, error) {
	query := url.Values{}

	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.Source != nil {
			query.Set("source", *opts.Source)
		}
		if opts.AlertName != nil {
			query.Set("alert_name", *opts.AlertName)
		}
		if opts.Anomalous != nil {
			query.Set("anomalous", strconv.FormatBool(*opts.Anomalous))
		}
	}

	path := "/api/v1/runs"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var envelope successEnvelope
	if err := s.client.doRequest(ctx, "GET", s.client.baseURL, path, nil, &envelope); err != nil {
		return nil, 0, err
	}

	var page paginatedRuns
	if err := json.Unmarshal(envelope.Data, &page); err != nil {
		return nil, 0, fmt.Errorf("failed to parse runs page: %w", err)
	}

	return page.Data, page.TotalItems, nil
}

// Get retrieves a single detection run by ID
func (s *DetectionService) Get(ctx context.Context, id int64) (*Run, error) {
	path := fmt.Sprintf("/api/v1/runs/%d", id)

	var envelope successEnvelope
	if err := s.client.doRequest(ctx, "GET", s.client.baseURL, path, nil, &envelope); err != nil {
		return nil, err
	}

	var run Run
	if err := json.Unmarshal(envelope.Data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}

	return &run, nil
}
