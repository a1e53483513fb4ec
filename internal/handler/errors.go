package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/ordering"
	"taskboard/internal/repository"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps repository and validation errors to HTTP statuses.
// Anything unknown is logged and reported as failed.
func respondError(c *gin.Context, err error, failure string) {
	switch {
	case errors.Is(err, repository.ErrBoardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
	case errors.Is(err, repository.ErrColumnNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
	case errors.Is(err, repository.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, repository.ErrSubtaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
	case errors.Is(err, repository.ErrLastBoard):
		c.JSON(http.StatusConflict, gin.H{"error": "At least one board must remain"})
	case errors.Is(err, repository.ErrColumnOutsideBoard):
		c.JSON(http.StatusBadRequest, gin.H{"error": "All columns must belong to the same board"})
	case errors.Is(err, ordering.ErrOrderGap):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task order must be contiguous within each column"})
	case errors.Is(err, model.ErrDuplicateColumnName), errors.Is(err, model.ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).WithField("request_id", c.GetString(middleware.RequestIDKey)).Error(failure)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}
