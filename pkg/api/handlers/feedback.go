package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mnemo/mnemo/pkg/api/events"
	"github.com/mnemo/mnemo/pkg/api/models"
	"github.com/mnemo/mnemo/pkg/api/response"
	"github.com/mnemo/mnemo/pkg/logger"
	"github.com/mnemo/mnemo/pkg/retrieval"
)

// FeedbackHandler handles satisfaction feedback endpoints.
type FeedbackHandler struct {
	engine *retrieval.Engine
	logger logger.Logger
	events *events.Broadcaster
}

// NewFeedbackHandler creates a new feedback handler. bus may be nil to
// disable event broadcasting.
func NewFeedbackHandler(eng *retrieval.Engine, log logger.Logger, bus *events.Broadcaster) *FeedbackHandler {
	return &FeedbackHandler{engine: eng, logger: log, events: bus}
}

// Submit handles POST /api/v1/feedback
// @Summary Submit search feedback
// @Description Record a satisfaction score and apply it to the user's learning state
// @Tags feedback
// @Accept json
// @Produce json
// @Param feedback body models.FeedbackRequest true "Feedback"
// @Success 201 {object} models.FeedbackResponse "Feedback recorded"
// @Failure 400 {object} response.ErrorResponse "Invalid request body or validation error"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/feedback [post]
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}

	event, err := h.engine.Feedback.Submit(ctx, &retrieval.FeedbackInput{
		Query:        req.Query,
		UserID:       req.UserID,
		ResultIDs:    req.ResultIDs,
		Satisfaction: req.Satisfaction,
		Feedback:     req.Feedback,
	})
	if err != nil {
		if isRetrievalInputError(err) {
			response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
			return
		}
		h.logger.Error("feedback submission failed", "user_id", req.UserID, "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to record feedback", getRequestID(ctx))
		return
	}

	if h.events != nil {
		h.events.BroadcastFeedbackRecorded(req.UserID, event.ID, event.Satisfaction, event.Timestamp)
		if state, err := h.engine.Learner.GetState(ctx, req.UserID); err == nil {
			h.events.BroadcastWeightsUpdated(req.UserID, state.InternalWeight, state.ExternalWeight, state.Strategy)
		}
	}

	response.JSON(w, http.StatusCreated, models.FeedbackResponse{
		ID:           event.ID,
		Satisfaction: event.Satisfaction,
		Timestamp:    event.Timestamp,
		Message:      "Feedback recorded",
	})
}
