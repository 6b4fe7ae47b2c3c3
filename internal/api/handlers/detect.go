package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/metricops/anomalyd/internal/api/dto"
	"github.com/metricops/anomalyd/internal/detector"
	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/errors"
	"github.com/metricops/anomalyd/internal/pkg/logger"
	"github.com/metricops/anomalyd/internal/pkg/utils"
	"github.com/metricops/anomalyd/internal/pkg/validator"
)

type DetectHandler struct {
	service   detection.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewDetectHandler(service detection.Service, log *logger.Logger, val *validator.Validator) *DetectHandler {
	return &DetectHandler{service: service, logger: log, validator: val}
}

// Detect scores a series and returns its anomaly intervals
// @Summary Detect anomalies in a series
// @Description Score a univariate time series and return the contiguous anomalous timestamp ranges. Anomalies is empty when the series as a whole is not judged anomalous.
// @Tags Detection
// @Accept json
// @Produce json
// @Param request body dto.DetectRequest true "Series and tuning parameters"
// @Success 200 {object} dto.DetectResponse "Detection result"
// @Failure 400 {object} utils.ErrorResponse "Invalid input"
// @Failure 500 {object} utils.ErrorResponse "Detection failed"
// @Router /detect [post]
func (h *DetectHandler) Detect(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Detect(r.Context(), buildInput(req, h.service.Defaults()))
	if err != nil {
		writeDetectionError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.DetectResponse{
		Metadata:  req.Metadata,
		Anomalies: result.Intervals,
	})
}

// DetectVerbose scores a series and returns per-point scores alongside the
// segment verdict and intervals
// @Summary Detect anomalies with full scoring output
// @Description Score a univariate time series and return every point score, the segment verdict, and the anomaly intervals.
// @Tags Detection
// @Accept json
// @Produce json
// @Param request body dto.DetectRequest true "Series and tuning parameters"
// @Success 200 {object} dto.DetectVerboseResponse "Detection result with point scores"
// @Failure 400 {object} utils.ErrorResponse "Invalid input"
// @Failure 500 {object} utils.ErrorResponse "Detection failed"
// @Router /detect/verbose [post]
func (h *DetectHandler) DetectVerbose(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Detect(r.Context(), buildInput(req, h.service.Defaults()))
	if err != nil {
		writeDetectionError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.DetectVerboseResponse{
		Metadata:   req.Metadata,
		Points:     result.Points,
		Segment:    result.Verdict,
		Anomalies:  result.Intervals,
		DurationMs: result.Duration.Milliseconds(),
	})
}

func (h *DetectHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*dto.DetectRequest, bool) {
	var req dto.DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.InvalidInputf("Invalid request body: %v", err))
		return nil, false
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.InvalidInput("Validation failed").WithDetails(errs))
		return nil, false
	}

	return &req, true
}

func buildInput(req *dto.DetectRequest, defaults detector.Params) detection.Input {
	input := detection.Input{
		Source: detection.SourceAPI,
		Series: req.Series(),
		Params: req.Params(defaults),
	}
	if req.Metadata != nil {
		input.AlertName = req.Metadata.AlertName
		input.Severity = req.Metadata.Severity
		input.Labels = req.Metadata.Labels
	}
	return input
}

// writeDetectionError maps a detection failure onto the wire. Client
// errors pass through; anything else becomes a generic server error.
func writeDetectionError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.ComputationFailure(err))
}
