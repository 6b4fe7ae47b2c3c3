package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/detect" {
			t.Errorf("expected path /api/v1/detect, got %s", r.URL.Path)
		}

		var req DetectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Data) != 3 {
			t.Errorf("expected 3 data points, got %d", len(req.Data))
		}
		if req.Contamination == nil || *req.Contamination != 0.1 {
			t.Errorf("expected contamination 0.1, got %v", req.Contamination)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DetectResponse{
			Metadata:  req.Metadata,
			Anomalies: []Interval{{Start: "2024-01-01T00:01:00Z", End: "2024-01-01T00:01:00Z"}},
		})
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	contamination := 0.1

	resp, err := c.Detections().Detect(context.Background(), DetectRequest{
		Metadata: &AlertMetadata{AlertName: "HighCPU"},
		Data: []DataPoint{
			{Timestamp: "2024-01-01T00:00:00Z", Value: 10.0},
			{Timestamp: "2024-01-01T00:01:00Z", Value: 500.0},
			{Timestamp: "2024-01-01T00:02:00Z", Value: 10.2},
		},
		Contamination: &contamination,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Metadata == nil || resp.Metadata.AlertName != "HighCPU" {
		t.Errorf("expected metadata echoed back, got %+v", resp.Metadata)
	}
	if len(resp.Anomalies) != 1 {
		t.Errorf("expected 1 interval, got %d", len(resp.Anomalies))
	}
}

func TestDetectInvalidInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":{"code":"INVALID_INPUT","message":"Series must contain at least 2 points"}}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	_, err := c.Detections().Detect(context.Background(), DetectRequest{
		Data: []DataPoint{{Timestamp: "2024-01-01T00:00:00Z", Value: 1}},
	})
	if err == nil {
		t.Fatal("expected an error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Code != "INVALID_INPUT" {
		t.Errorf("expected code INVALID_INPUT, got %q", apiErr.Code)
	}
	if !apiErr.IsInvalidInput() {
		t.Error("expected IsInvalidInput to be true")
	}
	if apiErr.Message != "Series must contain at least 2 points" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestListRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/runs" {
			t.Errorf("expected path /api/v1/runs, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("source") != "monitor" || q.Get("anomalous") != "true" || q.Get("page") != "2" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"data":[{"id":7,"source":"monitor","alert_name":"HighCPU","segment_anomaly":true,"intervals":[]},{"id":5,"source":"monitor","segment_anomaly":true,"intervals":[]}],"total_items":5,"page":2,"page_size":2,"total_pages":3}}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	source := "monitor"
	anomalous := true

	runs, total, err := c.Detections().List(context.Background(), &RunListOptions{
		ListOptions: ListOptions{Page: 2, PageSize: 2},
		Source:      &source,
		Anomalous:   &anomalous,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(runs) != 2 || runs[0].ID != 7 {
		t.Errorf("unexpected runs %+v", runs)
	}
}

func TestGetRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/runs/7" {
			t.Errorf("expected path /api/v1/runs/7, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"id":7,"source":"api","alert_name":"HighCPU","intervals":[{"start":"2024-01-01T00:12:00Z","end":"2024-01-01T00:14:00Z"}]}}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	run, err := c.Detections().Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID != 7 || run.AlertName != "HighCPU" {
		t.Errorf("unexpected run %+v", run)
	}
	if len(run.Intervals) != 1 || run.Intervals[0].End != "2024-01-01T00:14:00Z" {
		t.Errorf("unexpected intervals %+v", run.Intervals)
	}
}

func TestGetRunNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"Detection run not found"}}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	_, err := c.Detections().Get(context.Background(), 999)
	if err == nil {
		t.Fatal("expected an error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if !apiErr.IsNotFound() {
		t.Errorf("expected IsNotFound, got status %d", apiErr.StatusCode)
	}
}

func TestAlertsList(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alerts" {
			t.Errorf("expected path /alerts, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"timestamp":"2024-01-01T00:00:00Z","data":{"status":"firing"}},{"timestamp":"2024-01-01T00:05:00Z","data":{"status":"resolved"}}]`))
	}))
	defer relay.Close()

	c := NewClient(Config{BaseURL: "http://localhost:8080", RelayURL: relay.URL})
	records, err := c.Alerts().List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Timestamp != "2024-01-01T00:00:00Z" {
		t.Errorf("expected oldest record first, got %q", records[0].Timestamp)
	}
}

func TestAlertsListWithoutRelayURL(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost:8080"})
	if _, err := c.Alerts().List(context.Background()); err == nil {
		t.Fatal("expected an error when the relay URL is not configured")
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			t.Errorf("expected path /healthz, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"status":"ok"}}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("expected status ok, got %q", health.Status)
	}
}

func TestParseAPIErrorFlatShape(t *testing.T) {
	err := parseAPIError(400, []byte(`{"status":"error","message":"Invalid JSON payload"}`))
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "Invalid JSON payload" {
		t.Errorf("expected relay message extracted, got %q", apiErr.Message)
	}
}

func TestParseAPIErrorRawBody(t *testing.T) {
	err := parseAPIError(404, []byte("Not Found"))
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "Not Found" || apiErr.StatusCode != 404 {
		t.Errorf("unexpected error %+v", apiErr)
	}
}
