package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/metricops/anomalyd/internal/api/dto"
	"github.com/metricops/anomalyd/internal/api/handlers"
	"github.com/metricops/anomalyd/internal/api/router"
	"github.com/metricops/anomalyd/internal/config"
	"github.com/metricops/anomalyd/internal/detector"
	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/logger"
	"github.com/metricops/anomalyd/internal/pkg/validator"
	"github.com/metricops/anomalyd/internal/repository/postgres"
	"github.com/metricops/anomalyd/internal/services"
	"github.com/metricops/anomalyd/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type runsPage struct {
	Data       []detection.Run `json:"data"`
	TotalItems int64           `json:"total_items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// steadySeries builds a low-variance series with extreme outliers at the
// given indices.
func steadySeries(n int, outliers ...int) []dto.DataPoint {
	extreme := make(map[int]bool, len(outliers))
	for _, i := range outliers {
		extreme[i] = true
	}

	points := make([]dto.DataPoint, 0, n)
	for i := 0; i < n; i++ {
		v := 10 + 0.01*float64(i%7)
		if extreme[i] {
			v = 500.0
		}
		value := v
		points = append(points, dto.DataPoint{
			Timestamp: fmt.Sprintf("2024-01-01T00:%02d:00Z", i),
			Value:     &value,
		})
	}
	return points
}

func doJSON(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// TestDetectionFlow drives the full HTTP surface against a real migrated
// database: detect, list, filter, fetch, and reject.
func TestDetectionFlow(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	log := logger.New(logger.Config{Level: "error", Format: "json"})
	service := services.NewDetectionService(postgres.NewDetectionRepository(db), log, detector.DefaultParams())

	cfg := &config.Config{}
	cfg.Server.FrontendURL = "http://localhost:5173"

	h := &router.Handlers{
		Health: handlers.NewHealthHandler(db, log),
		Detect: handlers.NewDetectHandler(service, log, validator.New()),
		Runs:   handlers.NewRunsHandler(service, log),
	}
	r := router.New(cfg, log, h)

	contamination := 0.1
	ratioThreshold := 0.05
	var anomalousRunID int64

	t.Run("Detect Anomalous Series", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/v1/detect", dto.DetectRequest{
			Metadata:       &dto.AlertMetadata{AlertName: "HighCPU", Severity: "high"},
			Data:           steadySeries(30, 12, 13, 14),
			Contamination:  &contamination,
			RatioThreshold: &ratioThreshold,
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("detect failed with status %d, body: %s", rr.Code, rr.Body.String())
		}

		var resp dto.DetectResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Metadata == nil || resp.Metadata.AlertName != "HighCPU" {
			t.Errorf("expected metadata echoed back, got %+v", resp.Metadata)
		}
		if len(resp.Anomalies) != 1 {
			t.Fatalf("expected 1 interval, got %d: %+v", len(resp.Anomalies), resp.Anomalies)
		}
		if resp.Anomalies[0].Start != "2024-01-01T00:12:00Z" || resp.Anomalies[0].End != "2024-01-01T00:14:00Z" {
			t.Errorf("unexpected interval %+v", resp.Anomalies[0])
		}
	})

	t.Run("Detect Clean Series", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/v1/detect", dto.DetectRequest{
			Data: steadySeries(30),
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("detect failed with status %d, body: %s", rr.Code, rr.Body.String())
		}

		var resp dto.DetectResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Anomalies) != 0 {
			t.Errorf("expected no intervals, got %+v", resp.Anomalies)
		}
	})

	t.Run("List Runs", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/v1/runs", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("list failed with status %d, body: %s", rr.Code, rr.Body.String())
		}

		var env envelope
		if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		var page runsPage
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("failed to decode page: %v", err)
		}

		if page.TotalItems != 2 {
			t.Fatalf("expected 2 runs, got %d", page.TotalItems)
		}

		// Newest first
		clean, anomalous := page.Data[0], page.Data[1]
		if clean.SegmentAnomaly {
			t.Errorf("expected newest run to be clean, got %+v", clean)
		}
		if !anomalous.SegmentAnomaly || anomalous.AlertName != "HighCPU" {
			t.Errorf("unexpected anomalous run %+v", anomalous)
		}
		if anomalous.Source != detection.SourceAPI {
			t.Errorf("expected source api, got %q", anomalous.Source)
		}
		if anomalous.PointCount != 30 || anomalous.AnomalyCount != 3 {
			t.Errorf("expected 3 of 30 points flagged, got %d of %d", anomalous.AnomalyCount, anomalous.PointCount)
		}

		anomalousRunID = anomalous.ID
	})

	t.Run("Filter Anomalous Runs", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/v1/runs?anomalous=true", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("list failed with status %d", rr.Code)
		}

		var env envelope
		if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		var page runsPage
		if err := json.Unmarshal(env.Data, &page); err != nil {
			t.Fatalf("failed to decode page: %v", err)
		}

		if page.TotalItems != 1 || len(page.Data) != 1 {
			t.Fatalf("expected 1 anomalous run, got %d", page.TotalItems)
		}
		if page.Data[0].AlertName != "HighCPU" {
			t.Errorf("unexpected run %+v", page.Data[0])
		}
	})

	t.Run("Get Run", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/runs/%d", anomalousRunID), nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("get failed with status %d, body: %s", rr.Code, rr.Body.String())
		}

		var env envelope
		if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		var run detection.Run
		if err := json.Unmarshal(env.Data, &run); err != nil {
			t.Fatalf("failed to decode run: %v", err)
		}

		if run.ID != anomalousRunID {
			t.Errorf("expected run %d, got %d", anomalousRunID, run.ID)
		}
		if len(run.Intervals) != 1 || run.Intervals[0].Start != "2024-01-01T00:12:00Z" {
			t.Errorf("unexpected intervals %+v", run.Intervals)
		}
		if run.Contamination != contamination || run.RatioThreshold != ratioThreshold {
			t.Errorf("expected request params recorded, got %+v", run)
		}
	})

	t.Run("Get Unknown Run", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/v1/runs/99999", nil)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}

		var env envelope
		if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		if env.Error == nil || env.Error.Code != "NOT_FOUND" {
			t.Errorf("unexpected error %+v", env.Error)
		}
	})

	t.Run("Reject Short Series", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/v1/detect", dto.DetectRequest{
			Data: steadySeries(1),
		})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d, body: %s", rr.Code, rr.Body.String())
		}

		var env envelope
		if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		if env.Error == nil || env.Error.Code != "INVALID_INPUT" {
			t.Errorf("unexpected error %+v", env.Error)
		}

		// Failed requests never leave a run behind
		rr = doJSON(t, r, http.MethodGet, "/api/v1/runs", nil)
		var listEnv envelope
		if err := json.NewDecoder(rr.Body).Decode(&listEnv); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		var page runsPage
		if err := json.Unmarshal(listEnv.Data, &page); err != nil {
			t.Fatalf("failed to decode page: %v", err)
		}
		if page.TotalItems != 2 {
			t.Errorf("expected run count unchanged at 2, got %d", page.TotalItems)
		}
	})

	t.Run("Health", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/healthz", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
		rr = doJSON(t, r, http.MethodGet, "/readyz", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
	})
}
