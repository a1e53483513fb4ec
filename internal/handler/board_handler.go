package handler

import (
	"net/http"

	"taskboard/internal/cache"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boardRepo repository.BoardRepositoryInterface
	cache     *cache.BoardCache
}

func NewBoardHandler(boardRepo repository.BoardRepositoryInterface, cache *cache.BoardCache) *BoardHandler {
	return &BoardHandler{
		boardRepo: boardRepo,
		cache:     cache,
	}
}

type ColumnRequest struct {
	ID    uint   `json:"id_column"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CreateBoardRequest struct {
	Name    string          `json:"name" binding:"required"`
	Columns []ColumnRequest `json:"columns"`
}

type UpdateBoardRequest struct {
	ID      uint            `json:"id_board" binding:"required"`
	Name    string          `json:"name" binding:"required"`
	Columns []ColumnRequest `json:"columns"`
}

func (r ColumnRequest) toModel() model.Column {
	return model.Column{ID: r.ID, Name: r.Name, Color: r.Color}
}

func columnsFromRequest(reqs []ColumnRequest) []model.Column {
	columns := make([]model.Column, len(reqs))
	for i, r := range reqs {
		columns[i] = r.toModel()
	}
	return columns
}

// GetAll godoc
// @Summary  List boards
// @Tags     Boards
// @Produce  json
// @Success  200 {array} model.Board
// @Router   /boards [get]
func (h *BoardHandler) GetAll(c *gin.Context) {
	boards, err := h.boardRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve boards")
		return
	}
	c.JSON(http.StatusOK, boards)
}

// Create godoc
// @Summary  Create a board with its initial columns
// @Tags     Boards
// @Accept   json
// @Produce  json
// @Param    board body CreateBoardRequest true "Board"
// @Success  201 {object} model.Board
// @Failure  400 {object} ErrorResponse
// @Router   /boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board := &model.Board{
		Name:    req.Name,
		Columns: columnsFromRequest(req.Columns),
	}
	for i := range board.Columns {
		board.Columns[i].ID = 0
	}
	if err := model.ValidateBoard(*board); err != nil {
		respondError(c, err, "Invalid board")
		return
	}

	if err := h.boardRepo.Create(c.Request.Context(), board); err != nil {
		respondError(c, err, "Failed to create board")
		return
	}

	c.JSON(http.StatusCreated, board)
}

// Update godoc
// @Summary      Rename a board and replace its columns
// @Description  Columns with id_column are kept, columns without one are created and missing columns are deleted with their tasks.
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Param        board body UpdateBoardRequest true "Board"
// @Success      200 {object} model.Board
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /boards [put]
func (h *BoardHandler) Update(c *gin.Context) {
	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board := &model.Board{
		ID:      req.ID,
		Name:    req.Name,
		Columns: columnsFromRequest(req.Columns),
	}
	if err := model.ValidateBoard(*board); err != nil {
		respondError(c, err, "Invalid board")
		return
	}

	updated, err := h.boardRepo.Update(c.Request.Context(), board)
	if err != nil {
		respondError(c, err, "Failed to update board")
		return
	}
	h.cache.Invalidate(c.Request.Context(), updated.ID)

	c.JSON(http.StatusOK, updated)
}

// Clear godoc
// @Summary  Remove every column and task of a board
// @Tags     Boards
// @Produce  json
// @Param    id path int true "Board ID"
// @Success  200 {object} model.Board
// @Failure  404 {object} ErrorResponse
// @Router   /boards/{id} [put]
func (h *BoardHandler) Clear(c *gin.Context) {
	boardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	board, err := h.boardRepo.Clear(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err, "Failed to clear board")
		return
	}
	h.cache.Invalidate(c.Request.Context(), boardID)

	c.JSON(http.StatusOK, board)
}

// Delete godoc
// @Summary  Delete a board
// @Tags     Boards
// @Produce  json
// @Param    id path int true "Board ID"
// @Success  200 {object} model.Board
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "last board"
// @Router   /boards/delete/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	boardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	board, err := h.boardRepo.Delete(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err, "Failed to delete board")
		return
	}
	h.cache.Invalidate(c.Request.Context(), boardID)

	c.JSON(http.StatusOK, board)
}

// Reset godoc
// @Summary  Delete every board and seed the default one
// @Tags     Boards
// @Produce  json
// @Success  200 {array} model.Board
// @Router   /boards/reset [delete]
func (h *BoardHandler) Reset(c *gin.Context) {
	boards, err := h.boardRepo.Reset(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to reset boards")
		return
	}
	h.cache.InvalidateAll(c.Request.Context())

	c.JSON(http.StatusOK, boards)
}
