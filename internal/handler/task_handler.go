package handler

import (
	"context"
	"net/http"

	"taskboard/internal/cache"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskRepo   repository.TaskRepositoryInterface
	columnRepo repository.ColumnRepositoryInterface
	cache      *cache.BoardCache
}

func NewTaskHandler(
	taskRepo repository.TaskRepositoryInterface,
	columnRepo repository.ColumnRepositoryInterface,
	cache *cache.BoardCache,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:   taskRepo,
		columnRepo: columnRepo,
		cache:      cache,
	}
}

type SubtaskRequest struct {
	ID          uint   `json:"id_subtask"`
	Title       string `json:"title" binding:"required"`
	IsCompleted bool   `json:"isCompleted"`
}

type CreateTaskRequest struct {
	ColumnID    uint             `json:"id_column" binding:"required"`
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Subtasks    []SubtaskRequest `json:"subtasks" binding:"dive"`
}

type UpdateTaskRequest struct {
	ID          uint             `json:"id_task" binding:"required"`
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Subtasks    []SubtaskRequest `json:"subtasks" binding:"dive"`
}

// TaskPlacementRequest is one entry of a change-order batch. Extra task
// fields sent by clients are ignored.
type TaskPlacementRequest struct {
	ID       uint `json:"id_task" binding:"required"`
	ColumnID uint `json:"id_column" binding:"required"`
	Order    *int `json:"order" binding:"required,min=0"`
}

type ChangeOrderRequest struct {
	Tasks []TaskPlacementRequest `json:"tasks" binding:"required,dive"`
}

type ChangeColumnRequest struct {
	ColumnID uint `json:"id_column" binding:"required"`
}

func subtasksFromRequest(reqs []SubtaskRequest) []model.Subtask {
	subtasks := make([]model.Subtask, len(reqs))
	for i, r := range reqs {
		subtasks[i] = model.Subtask{ID: r.ID, Title: r.Title, IsCompleted: r.IsCompleted}
	}
	return subtasks
}

// GetByBoard godoc
// @Summary  List every task of a board
// @Tags     Tasks
// @Produce  json
// @Param    boardId path int true "Board ID"
// @Success  200 {array} model.Task
// @Router   /tasks/{boardId} [get]
func (h *TaskHandler) GetByBoard(c *gin.Context) {
	boardID, ok := parseID(c, "boardId")
	if !ok {
		return
	}

	tasks, err := h.cache.Tasks(c.Request.Context(), boardID, h.taskRepo)
	if err != nil {
		respondError(c, err, "Failed to retrieve tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Create godoc
// @Summary  Add a task to the end of a column
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Param    task body CreateTaskRequest true "Task"
// @Success  201 {object} model.Task
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task := &model.Task{
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		Subtasks:    subtasksFromRequest(req.Subtasks),
	}
	if err := model.ValidateTask(*task); err != nil {
		respondError(c, err, "Invalid task")
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), req.ColumnID)
	if err != nil {
		respondError(c, err, "Failed to create task")
		return
	}
	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		respondError(c, err, "Failed to create task")
		return
	}
	h.cache.Invalidate(c.Request.Context(), column.BoardID)

	c.JSON(http.StatusCreated, task)
}

// Update godoc
// @Summary  Edit a task's title, description and subtasks
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Param    task body UpdateTaskRequest true "Task"
// @Success  200 {object} model.Task
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /tasks [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task := &model.Task{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Subtasks:    subtasksFromRequest(req.Subtasks),
	}
	if err := model.ValidateTask(*task); err != nil {
		respondError(c, err, "Invalid task")
		return
	}

	updated, err := h.taskRepo.Update(c.Request.Context(), task)
	if err != nil {
		respondError(c, err, "Failed to update task")
		return
	}
	h.invalidateColumnBoard(c.Request.Context(), updated.ColumnID)

	c.JSON(http.StatusOK, updated)
}

// ChangeOrder godoc
// @Summary      Persist new column and order values for a batch of tasks
// @Description  The batch is applied atomically. Every affected column must end up numbered 0..n-1.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        tasks body ChangeOrderRequest true "Placements"
// @Success      200 {array} model.Task
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /tasks/change-order [put]
func (h *TaskHandler) ChangeOrder(c *gin.Context) {
	var req ChangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make([]model.Task, len(req.Tasks))
	for i, p := range req.Tasks {
		updates[i] = model.Task{ID: p.ID, ColumnID: p.ColumnID, Order: *p.Order}
	}

	tasks, err := h.taskRepo.ChangeOrder(c.Request.Context(), updates)
	if err != nil {
		respondError(c, err, "Failed to change task order")
		return
	}
	if len(tasks) > 0 {
		h.invalidateColumnBoard(c.Request.Context(), tasks[0].ColumnID)
	}

	c.JSON(http.StatusOK, tasks)
}

// ChangeColumn godoc
// @Summary  Move a task to the end of another column
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Param    id path int true "Task ID"
// @Param    column body ChangeColumnRequest true "Target column"
// @Success  200 {object} model.Task
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /tasks/{id} [put]
func (h *TaskHandler) ChangeColumn(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ChangeColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.taskRepo.ChangeColumn(c.Request.Context(), taskID, req.ColumnID)
	if err != nil {
		respondError(c, err, "Failed to move task")
		return
	}
	h.invalidateColumnBoard(c.Request.Context(), task.ColumnID)

	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary  Delete a task
// @Tags     Tasks
// @Produce  json
// @Param    id path int true "Task ID"
// @Success  200 {object} model.Task
// @Failure  404 {object} ErrorResponse
// @Router   /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskRepo.Delete(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err, "Failed to delete task")
		return
	}
	h.invalidateColumnBoard(c.Request.Context(), task.ColumnID)

	c.JSON(http.StatusOK, task)
}

// invalidateColumnBoard drops the cache of the board owning columnID. When the
// column can't be resolved every board is dropped instead.
func (h *TaskHandler) invalidateColumnBoard(ctx context.Context, columnID uint) {
	column, err := h.columnRepo.GetByID(ctx, columnID)
	if err != nil {
		h.cache.InvalidateAll(ctx)
		return
	}
	h.cache.Invalidate(ctx, column.BoardID)
}
