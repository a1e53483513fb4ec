package handler

import (
	"net/http"

	"taskboard/internal/cache"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type ColumnHandler struct {
	columnRepo repository.ColumnRepositoryInterface
	cache      *cache.BoardCache
}

func NewColumnHandler(columnRepo repository.ColumnRepositoryInterface, cache *cache.BoardCache) *ColumnHandler {
	return &ColumnHandler{
		columnRepo: columnRepo,
		cache:      cache,
	}
}

type ReorderColumnRequest struct {
	ColumnID uint `json:"id_column" binding:"required"`
	Position *int `json:"position" binding:"required"`
}

// GetByBoard godoc
// @Summary  List a board's columns with their tasks
// @Tags     Columns
// @Produce  json
// @Param    boardId path int true "Board ID"
// @Success  200 {array} model.Column
// @Router   /columns/{boardId} [get]
func (h *ColumnHandler) GetByBoard(c *gin.Context) {
	boardID, ok := parseID(c, "boardId")
	if !ok {
		return
	}

	columns, err := h.cache.Columns(c.Request.Context(), boardID, h.columnRepo)
	if err != nil {
		respondError(c, err, "Failed to retrieve columns")
		return
	}
	c.JSON(http.StatusOK, columns)
}

// Reorder godoc
// @Summary      Move a column to a new position
// @Description  A negative or too large position moves the column to the end.
// @Tags         Columns
// @Accept       json
// @Produce      json
// @Param        id path int true "Board ID"
// @Param        column body ReorderColumnRequest true "Column and target position"
// @Success      200 {array} model.Column
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /boards/{id}/columns/reorder [post]
func (h *ColumnHandler) Reorder(c *gin.Context) {
	boardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReorderColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	columns, err := h.columnRepo.ReorderColumns(c.Request.Context(), boardID, req.ColumnID, *req.Position)
	if err != nil {
		respondError(c, err, "Failed to reorder columns")
		return
	}
	h.cache.Invalidate(c.Request.Context(), boardID)

	c.JSON(http.StatusOK, columns)
}
