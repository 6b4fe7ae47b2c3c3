package client

import (
	"context"
	"fmt"
)

// AlertService reads the alerts stored by the webhook relay
type AlertService struct {
	client *Client
}

// List retrieves the relay's stored alerts, oldest first
func (s *AlertService) List(ctx context.Context) ([]AlertRecord, error) {
	if s.client.relayURL == "" {
		return nil, fmt.Errorf("relay URL is not configured")
	}

	var records []AlertRecord
	if err := s.client.doRequest(ctx, "GET", s.client.relayURL, "/alerts", nil, &records); err != nil {
		return nil, err
	}

	return records, nil
}
