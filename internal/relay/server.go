package relay

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metricops/anomalyd/internal/pkg/logger"
)

// WebhookPath is where Alertmanager style webhook posts are accepted.
const WebhookPath = "/v1/integrations/alertmanager/webhook"

const indexPage = `<!DOCTYPE html>
<html>
<head><title>anomalyd relay</title></head>
<body>
    <h1>anomalyd webhook relay</h1>
    <p>Webhook endpoint: POST /v1/integrations/alertmanager/webhook</p>
    <p>View alerts: <a href="/alerts">GET /alerts</a></p>
    <p>Health check: <a href="/health">GET /health</a></p>
    <hr>
    <p>Alerts received: %d</p>
</body>
</html>
`

// Server is the webhook relay. It accepts alert payloads, keeps the most
// recent ones in an in-memory buffer, and exposes them for inspection.
// It has no connection to the detection service.
type Server struct {
	buffer *Buffer
	logger *logger.Logger
}

// NewServer creates a relay server around the given buffer.
func NewServer(buffer *Buffer, log *logger.Logger) *Server {
	return &Server{
		buffer: buffer,
		logger: log,
	}
}

// Router builds the gin engine with all relay routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST(WebhookPath, s.handleWebhook)
	r.GET("/alerts", s.handleAlerts)
	r.GET("/health", s.handleHealth)
	r.GET("/", s.handleIndex)
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})

	return r
}

func (s *Server) handleWebhook(c *gin.Context) {
	// The payload is kept verbatim, so any valid JSON value is accepted.
	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid JSON payload"})
		return
	}

	rec := s.buffer.Add(payload)
	s.logSummary(rec, payload)

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Alert received"})
}

// logSummary logs one line per alert when the payload looks like an
// Alertmanager webhook envelope, otherwise a single generic line.
func (s *Server) logSummary(rec Record, payload json.RawMessage) {
	var envelope struct {
		Status string `json:"status"`
		Alerts []struct {
			Status string            `json:"status"`
			Labels map[string]string `json:"labels"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && len(envelope.Alerts) > 0 {
		for _, a := range envelope.Alerts {
			s.logger.WithFields(map[string]interface{}{
				"received_at": rec.Timestamp,
				"alertname":   a.Labels["alertname"],
				"severity":    a.Labels["severity"],
				"status":      a.Status,
			}).Info("Alert received")
		}
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"received_at": rec.Timestamp,
		"bytes":       len(payload),
		"stored":      s.buffer.Len(),
	}).Info("Alert received")
}

func (s *Server) handleAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, s.buffer.List())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleIndex(c *gin.Context) {
	page := fmt.Sprintf(indexPage, s.buffer.Len())
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
