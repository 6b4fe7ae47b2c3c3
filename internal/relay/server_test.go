package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/metricops/anomalyd/internal/pkg/logger"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewServer(NewBuffer(100), log).Router()
}

func postWebhook(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getAlerts(t *testing.T, router *gin.Engine) []Record {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /alerts: expected status 200, got %d", w.Code)
	}
	var records []Record
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("failed to decode alerts response: %v", err)
	}
	return records
}

func TestWebhookStoresAlert(t *testing.T) {
	router := newTestRouter()

	payload := `{"status":"firing","alerts":[{"status":"firing","labels":{"alertname":"HighCPU","severity":"critical"}}]}`
	w := postWebhook(router, payload)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "success" {
		t.Errorf("expected status success, got %q", resp["status"])
	}
	if resp["message"] != "Alert received" {
		t.Errorf("expected message 'Alert received', got %q", resp["message"])
	}

	records := getAlerts(t, router)
	if len(records) != 1 {
		t.Fatalf("expected 1 stored alert, got %d", len(records))
	}
	if records[0].Timestamp == "" {
		t.Error("expected a received-at timestamp")
	}

	var stored struct {
		Alerts []struct {
			Labels map[string]string `json:"labels"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(records[0].Data, &stored); err != nil {
		t.Fatalf("stored payload does not round-trip: %v", err)
	}
	if stored.Alerts[0].Labels["alertname"] != "HighCPU" {
		t.Errorf("expected stored alertname HighCPU, got %q", stored.Alerts[0].Labels["alertname"])
	}
}

func TestWebhookMalformedJSON(t *testing.T) {
	router := newTestRouter()

	w := postWebhook(router, `{"alerts": [`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "error" {
		t.Errorf("expected status error, got %q", resp["status"])
	}
	if resp["message"] != "Invalid JSON payload" {
		t.Errorf("expected message 'Invalid JSON payload', got %q", resp["message"])
	}

	// The relay keeps serving after a bad payload
	if w := postWebhook(router, `{"status":"resolved"}`); w.Code != http.StatusOK {
		t.Fatalf("expected status 200 after malformed payload, got %d", w.Code)
	}
	if records := getAlerts(t, router); len(records) != 1 {
		t.Errorf("expected only the valid alert stored, got %d", len(records))
	}
}

func TestAlertsReturnedOldestFirst(t *testing.T) {
	router := newTestRouter()

	for i := 1; i <= 3; i++ {
		w := postWebhook(router, string(seqPayload(i)))
		if w.Code != http.StatusOK {
			t.Fatalf("post %d: expected status 200, got %d", i, w.Code)
		}
	}

	records := getAlerts(t, router)
	if len(records) != 3 {
		t.Fatalf("expected 3 stored alerts, got %d", len(records))
	}
	for i, rec := range records {
		if got := seqOf(t, rec); got != i+1 {
			t.Errorf("position %d: expected seq %d, got %d", i, i+1, got)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("expected body OK, got %q", w.Body.String())
	}
}

func TestIndexPage(t *testing.T) {
	router := newTestRouter()
	postWebhook(router, `{"status":"firing"}`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, WebhookPath) {
		t.Error("expected index page to mention the webhook endpoint")
	}
	if !strings.Contains(body, "Alerts received: 1") {
		t.Errorf("expected index page to show the stored count, got: %s", body)
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if w.Body.String() != "Not Found" {
		t.Errorf("expected body 'Not Found', got %q", w.Body.String())
	}
}
