package handler

import (
	"net/http"

	"taskboard/internal/cache"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type SubtaskHandler struct {
	subtaskRepo repository.SubtaskRepositoryInterface
	cache       *cache.BoardCache
}

func NewSubtaskHandler(subtaskRepo repository.SubtaskRepositoryInterface, cache *cache.BoardCache) *SubtaskHandler {
	return &SubtaskHandler{
		subtaskRepo: subtaskRepo,
		cache:       cache,
	}
}

type SetCompletedRequest struct {
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}

// SetCompleted godoc
// @Summary  Check or uncheck a subtask
// @Tags     Subtasks
// @Accept   json
// @Produce  json
// @Param    id path int true "Subtask ID"
// @Param    subtask body SetCompletedRequest true "Completion"
// @Success  200 {object} model.Subtask
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /subtasks/{id} [put]
func (h *SubtaskHandler) SetCompleted(c *gin.Context) {
	subtaskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SetCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask, err := h.subtaskRepo.SetCompleted(c.Request.Context(), subtaskID, *req.IsCompleted)
	if err != nil {
		respondError(c, err, "Failed to update subtask")
		return
	}
	if boardID, err := h.subtaskRepo.BoardIDOf(c.Request.Context(), subtaskID); err == nil {
		h.cache.Invalidate(c.Request.Context(), boardID)
	} else {
		h.cache.InvalidateAll(c.Request.Context())
	}

	c.JSON(http.StatusOK, subtask)
}
