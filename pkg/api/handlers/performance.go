package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mnemo/mnemo/pkg/api/models"
	"github.com/mnemo/mnemo/pkg/api/response"
	"github.com/mnemo/mnemo/pkg/logger"
	"github.com/mnemo/mnemo/pkg/retrieval"
)

// PerformanceHandler handles retrieval performance report endpoints.
type PerformanceHandler struct {
	engine *retrieval.Engine
	logger logger.Logger
}

// NewPerformanceHandler creates a new performance handler.
func NewPerformanceHandler(eng *retrieval.Engine, log logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{engine: eng, logger: log}
}

// User handles GET /api/v1/performance/{userID}
// @Summary Get a user's performance report
// @Description Aggregate a user's query metrics over a trailing window
// @Tags performance
// @Produce json
// @Param userID path string true "User ID"
// @Param window query string false "Trailing window as a Go duration" default(24h)
// @Success 200 {object} models.PerformanceResponse "Performance report"
// @Failure 400 {object} response.ErrorResponse "Missing user ID or bad window"
// @Router /api/v1/performance/{userID} [get]
func (h *PerformanceHandler) User(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	report, err := h.engine.Perf.UserReport(ctx, userID, window)
	if err != nil {
		if isRetrievalInputError(err) {
			response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, err.Error(), getRequestID(ctx))
			return
		}
		h.logger.Error("performance report failed", "user_id", userID, "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to build report", getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, reportToResponse(report))
}

// System handles GET /api/v1/performance
// @Summary Get the system performance report
// @Description Aggregate all users' query metrics over a trailing window
// @Tags performance
// @Produce json
// @Param window query string false "Trailing window as a Go duration" default(24h)
// @Success 200 {object} models.PerformanceResponse "Performance report"
// @Failure 400 {object} response.ErrorResponse "Bad window"
// @Router /api/v1/performance [get]
func (h *PerformanceHandler) System(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	report, err := h.engine.Perf.SystemReport(ctx, window)
	if err != nil {
		h.logger.Error("system performance report failed", "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to build report", getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, reportToResponse(report))
}

// parseWindow reads the optional window query parameter. A zero window
// selects the recorder's default.
func parseWindow(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return 0, true
	}
	window, err := time.ParseDuration(raw)
	if err != nil || window <= 0 {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid window duration", getRequestID(r.Context()))
		return 0, false
	}
	return window, true
}

func reportToResponse(report *retrieval.PerformanceReport) models.PerformanceResponse {
	return models.PerformanceResponse{
		UserID:        report.UserID,
		WindowSeconds: int64(report.Window.Seconds()),
		QueryCount:    report.QueryCount,
		AvgConfidence: report.AvgConfidence,
		AvgFusedScore: report.AvgFusedScore,
		AvgResponseMs: report.AvgResponseMs,
		QualityCounts: report.QualityCounts,
		GeneratedAt:   report.GeneratedAt,
	}
}
