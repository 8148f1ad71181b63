// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mnemo/mnemo/pkg/api/events"
	"github.com/mnemo/mnemo/pkg/api/models"
	"github.com/mnemo/mnemo/pkg/api/response"
	"github.com/mnemo/mnemo/pkg/logger"
	"github.com/mnemo/mnemo/pkg/retrieval"
)

// SearchHandler handles hybrid search endpoints.
type SearchHandler struct {
	engine    *retrieval.Engine
	logger    logger.Logger
	validator *validator.Validate
	events    *events.Broadcaster
}

// NewSearchHandler creates a new search handler. bus may be nil to
// disable event broadcasting.
func NewSearchHandler(eng *retrieval.Engine, log logger.Logger, bus *events.Broadcaster) *SearchHandler {
	return &SearchHandler{
		engine:    eng,
		logger:    log,
		validator: validator.New(),
		events:    bus,
	}
}

// Search handles POST /api/v1/search
// @Summary Run a hybrid search
// @Description Fuse context-weighted memories with cached or live external results
// @Tags search
// @Accept json
// @Produce json
// @Param search body models.SearchRequest true "Search request"
// @Success 200 {object} models.SearchResponse "Fused results"
// @Failure 400 {object} response.ErrorResponse "Invalid request body or validation error"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/search [post]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}

	start := time.Now()
	results, err := h.engine.Fusion.Search(ctx, req.Query, req.UserID, req.SessionID, req.Limit)
	if err != nil {
		if isRetrievalInputError(err) {
			response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
			return
		}
		h.logger.Error("search failed", "user_id", req.UserID, "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Search failed", getRequestID(ctx))
		return
	}

	elapsed := time.Since(start)
	if h.events != nil {
		h.events.BroadcastSearchCompleted(req.UserID, req.Query, len(results), elapsed)
	}

	resp := models.SearchResponse{
		Query:     req.Query,
		Results:   make([]models.SearchResult, 0, len(results)),
		Count:     len(results),
		ElapsedMs: elapsed.Milliseconds(),
	}
	for _, result := range results {
		resp.Results = append(resp.Results, models.SearchResult{
			ID:         result.ID,
			Content:    result.Content,
			Source:     result.Source,
			Title:      result.Title,
			URL:        result.URL,
			Confidence: result.Confidence,
			FusedScore: result.FusedScore,
		})
	}

	response.JSON(w, http.StatusOK, resp)
}

// isRetrievalInputError reports whether err is a caller mistake rather
// than a server-side failure.
func isRetrievalInputError(err error) bool {
	return errors.Is(err, retrieval.ErrInvalidQuery) ||
		errors.Is(err, retrieval.ErrInvalidUserID) ||
		errors.Is(err, retrieval.ErrInvalidMemoryID) ||
		errors.Is(err, retrieval.ErrInvalidSatisfaction)
}

func getRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value("request_id").(string); ok {
		return reqID
	}
	return "unknown"
}
