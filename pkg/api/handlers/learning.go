package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mnemo/mnemo/pkg/api/models"
	"github.com/mnemo/mnemo/pkg/api/response"
	"github.com/mnemo/mnemo/pkg/logger"
	"github.com/mnemo/mnemo/pkg/retrieval"
)

// LearningHandler handles meta-learning state endpoints.
type LearningHandler struct {
	engine *retrieval.Engine
	logger logger.Logger
}

// NewLearningHandler creates a new learning handler.
func NewLearningHandler(eng *retrieval.Engine, log logger.Logger) *LearningHandler {
	return &LearningHandler{engine: eng, logger: log}
}

// GetState handles GET /api/v1/learning/{userID}
// @Summary Get learning state
// @Description Get a user's adaptive fusion weights and learning statistics
// @Tags learning
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} models.LearningStateResponse "Learning state"
// @Failure 400 {object} response.ErrorResponse "Missing user ID"
// @Router /api/v1/learning/{userID} [get]
func (h *LearningHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	state, err := h.engine.Learner.GetState(ctx, userID)
	if err != nil {
		if isRetrievalInputError(err) {
			response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, err.Error(), getRequestID(ctx))
			return
		}
		h.logger.Error("learning state lookup failed", "user_id", userID, "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to get learning state", getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.LearningStateResponse{
		UserID:          state.UserID,
		InternalWeight:  state.InternalWeight,
		ExternalWeight:  state.ExternalWeight,
		LearningRate:    state.LearningRate,
		TotalQueries:    state.TotalQueries,
		AvgSatisfaction: state.AvgSatisfaction,
		Strategy:        state.Strategy,
		LastUpdated:     state.LastUpdated,
	})
}

// GetWeights handles GET /api/v1/learning/{userID}/weights
// @Summary Get adaptive weights
// @Description Get the fusion weight pair search would use for a user, with confidence and provenance
// @Tags learning
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} models.AdaptiveWeightsResponse "Adaptive weights"
// @Failure 400 {object} response.ErrorResponse "Missing user ID"
// @Router /api/v1/learning/{userID}/weights [get]
func (h *LearningHandler) GetWeights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "User ID is required", getRequestID(ctx))
		return
	}

	weights := h.engine.Learner.AdaptiveWeights(ctx, userID)
	response.JSON(w, http.StatusOK, models.AdaptiveWeightsResponse{
		Internal:   weights.Internal,
		External:   weights.External,
		Confidence: weights.Confidence,
		Source:     weights.Source,
	})
}

// Reset handles POST /api/v1/learning/{userID}/reset
// @Summary Reset learning state
// @Description Reset a user's weights, learning rate and satisfaction average to defaults
// @Tags learning
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} models.LearningStateResponse "Reset learning state"
// @Failure 400 {object} response.ErrorResponse "Missing user ID"
// @Router /api/v1/learning/{userID}/reset [post]
func (h *LearningHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	if err := h.engine.Learner.Reset(ctx, userID); err != nil {
		if isRetrievalInputError(err) {
			response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, err.Error(), getRequestID(ctx))
			return
		}
		h.logger.Error("learning state reset failed", "user_id", userID, "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to reset learning state", getRequestID(ctx))
		return
	}

	h.GetState(w, r)
}
