// Package client is the Go SDK for the anomalyd detection API and its
// webhook relay.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the anomalyd API client
type Client struct {
	baseURL    string
	relayURL   string
	httpClient *http.Client
}

// Config holds the client configuration
type Config struct {
	BaseURL    string        // Detection API base URL (e.g., "http://localhost:8080")
	RelayURL   string        // Optional relay base URL (e.g., "http://localhost:8081")
	Timeout    time.Duration // HTTP client timeout (default: 30s)
	HTTPClient *http.Client  // Optional custom HTTP client
}

// NewClient creates a new anomalyd API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		relayURL:   strings.TrimRight(cfg.RelayURL, "/"),
		httpClient: httpClient,
	}
}

// doRequest performs an HTTP request against the given base URL with proper
// error handling
func (c *Client) doRequest(ctx context.Context, method, baseURL, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	url := baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// parseAPIError extracts a typed error from an error response body. The
// API wraps errors in {"error": {...}}, the relay returns a flat
// {"status","message"} object; anything else falls back to the raw body.
func parseAPIError(statusCode int, body []byte) error {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		envelope.Error.StatusCode = statusCode
		return envelope.Error
	}

	var flat APIError
	if err := json.Unmarshal(body, &flat); err == nil && flat.Message != "" {
		flat.StatusCode = statusCode
		return &flat
	}

	return &APIError{
		StatusCode: statusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

// Detections returns the detection service
func (c *Client) Detections() *DetectionService {
	return &DetectionService{client: c}
}

// Alerts returns the relay alert service. It requires RelayURL to be set.
func (c *Client) Alerts() *AlertService {
	return &AlertService{client: c}
}
