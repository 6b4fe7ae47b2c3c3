package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/metricops/anomalyd/internal/domain/detection"
	"github.com/metricops/anomalyd/internal/pkg/errors"
	"github.com/metricops/anomalyd/internal/pkg/logger"
	"github.com/metricops/anomalyd/internal/pkg/utils"
)

type RunsHandler struct {
	service detection.Service
	logger  *logger.Logger
}

func NewRunsHandler(service detection.Service, log *logger.Logger) *RunsHandler {
	return &RunsHandler{service: service, logger: log}
}

// List returns recorded detection runs with pagination and filtering
// @Summary List detection runs
// @Description Get a paginated list of recorded detection runs, newest first
// @Tags Runs
// @Produce json
// @Param source query string false "Filter by run source (api or monitor)"
// @Param alert_name query string false "Filter by alert name"
// @Param anomalous query bool false "Filter by segment verdict"
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.SuccessResponse{data=utils.PaginatedResponse} "List of runs"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /runs [get]
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	params := utils.ParsePaginationParams(r)

	filter := detection.Filter{
		Source:    r.URL.Query().Get("source"),
		AlertName: r.URL.Query().Get("alert_name"),
	}
	if raw := r.URL.Query().Get("anomalous"); raw != "" {
		anomalous, err := strconv.ParseBool(raw)
		if err != nil {
			utils.WriteError(w, errors.BadRequest("anomalous must be true or false"))
			return
		}
		filter.Anomalous = &anomalous
	}

	runs, total, err := h.service.ListRuns(r.Context(), filter, params.PageSize, params.Offset)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.WriteError(w, appErr)
		} else {
			utils.WriteError(w, errors.Internal("Failed to list detection runs", err))
		}
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(runs, params.Page, params.PageSize, total))
}

// Get returns a single detection run by ID
// @Summary Get detection run by ID
// @Description Get one recorded detection run including its intervals
// @Tags Runs
// @Produce json
// @Param id path int true "Run ID"
// @Success 200 {object} utils.SuccessResponse "Run details"
// @Failure 404 {object} utils.ErrorResponse "Run not found"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /runs/{id} [get]
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid run ID"))
		return
	}

	run, err := h.service.GetRun(r.Context(), id)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.WriteError(w, appErr)
		} else {
			utils.WriteError(w, errors.Internal("Failed to get detection run", err))
		}
		return
	}

	utils.WriteSuccess(w, http.StatusOK, run)
}
