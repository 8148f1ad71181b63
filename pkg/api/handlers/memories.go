package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mnemo/mnemo/pkg/api/models"
	"github.com/mnemo/mnemo/pkg/api/response"
	"github.com/mnemo/mnemo/pkg/logger"
	"github.com/mnemo/mnemo/pkg/retrieval"
	"github.com/mnemo/mnemo/pkg/store"
)

// MemoriesHandler handles memory ingestion and management endpoints.
type MemoriesHandler struct {
	engine    *retrieval.Engine
	logger    logger.Logger
	validator *validator.Validate
}

// NewMemoriesHandler creates a new memories handler.
func NewMemoriesHandler(eng *retrieval.Engine, log logger.Logger) *MemoriesHandler {
	return &MemoriesHandler{
		engine:    eng,
		logger:    log,
		validator: validator.New(),
	}
}

// Create handles POST /api/v1/memories
// @Summary Store a memory
// @Description Embed and persist a new memory for a user
// @Tags memories
// @Accept json
// @Produce json
// @Param memory body models.MemoryRequest true "Memory content"
// @Success 201 {object} models.MemoryResponse "Memory stored"
// @Failure 400 {object} response.ErrorResponse "Invalid request body or validation error"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/memories [post]
func (h *MemoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.MemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}

	record, err := h.engine.Memories.Add(ctx, req.UserID, req.Content, req.Importance, req.Metadata)
	if err != nil {
		if isRetrievalInputError(err) {
			response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
			return
		}
		h.logger.Error("memory ingestion failed", "user_id", req.UserID, "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to store memory", getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusCreated, memoryToResponse(record))
}

// Get handles GET /api/v1/memories/{id}
// @Summary Get a memory
// @Description Retrieve one of a user's memories by ID
// @Tags memories
// @Produce json
// @Param id path string true "Memory ID"
// @Param user_id query string true "Memory owner"
// @Success 200 {object} models.MemoryResponse "Memory"
// @Failure 400 {object} response.ErrorResponse "Missing memory or user ID"
// @Failure 404 {object} response.ErrorResponse "Memory not found"
// @Router /api/v1/memories/{id} [get]
func (h *MemoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memoryID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")

	record, err := h.engine.Memories.Get(ctx, userID, memoryID)
	if err != nil {
		if store.IsNotFound(err) {
			response.Error(w, http.StatusNotFound, response.ErrCodeNotFound, "Memory not found", getRequestID(ctx))
			return
		}
		if isRetrievalInputError(err) {
			response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, err.Error(), getRequestID(ctx))
			return
		}
		h.logger.Error("memory lookup failed", "memory_id", memoryID, "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to get memory", getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, memoryToResponse(record))
}

// List handles GET /api/v1/memories
// @Summary List memories
// @Description List all of a user's memories
// @Tags memories
// @Produce json
// @Param user_id query string true "Memory owner"
// @Success 200 {object} models.MemoryListResponse "Memories"
// @Failure 400 {object} response.ErrorResponse "Missing user ID"
// @Router /api/v1/memories [get]
func (h *MemoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.URL.Query().Get("user_id")

	records, err := h.engine.Memories.List(ctx, userID)
	if err != nil {
		if isRetrievalInputError(err) {
			response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, err.Error(), getRequestID(ctx))
			return
		}
		h.logger.Error("memory listing failed", "user_id", userID, "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to list memories", getRequestID(ctx))
		return
	}

	resp := models.MemoryListResponse{
		Memories: make([]models.MemoryResponse, 0, len(records)),
		Count:    len(records),
	}
	for _, record := range records {
		resp.Memories = append(resp.Memories, memoryToResponse(record))
	}

	response.JSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/v1/memories/{id}
// @Summary Delete a memory
// @Description Remove one of a user's memories and its index entry
// @Tags memories
// @Produce json
// @Param id path string true "Memory ID"
// @Param user_id query string true "Memory owner"
// @Success 204 "Memory deleted"
// @Failure 400 {object} response.ErrorResponse "Missing memory or user ID"
// @Failure 404 {object} response.ErrorResponse "Memory not found"
// @Router /api/v1/memories/{id} [delete]
func (h *MemoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memoryID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")

	if err := h.engine.Memories.Delete(ctx, userID, memoryID); err != nil {
		if store.IsNotFound(err) {
			response.Error(w, http.StatusNotFound, response.ErrCodeNotFound, "Memory not found", getRequestID(ctx))
			return
		}
		if isRetrievalInputError(err) {
			response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, err.Error(), getRequestID(ctx))
			return
		}
		h.logger.Error("memory deletion failed", "memory_id", memoryID, "error", err)
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, "Failed to delete memory", getRequestID(ctx))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func memoryToResponse(record *retrieval.MemoryRecord) models.MemoryResponse {
	return models.MemoryResponse{
		ID:         record.ID,
		UserID:     record.UserID,
		Content:    record.Content,
		Importance: record.Importance,
		Metadata:   record.Metadata,
		CreatedAt:  record.CreatedAt,
	}
}
