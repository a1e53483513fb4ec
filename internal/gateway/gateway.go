// Package gateway holds the persistence contract the client store talks to,
// with a remote HTTP implementation, a local Redis snapshot implementation
// and a retry decorator.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid request")
)

// Gateway is the durable side of the board. Every call returns the canonical
// entity as stored, which callers must prefer over their own copy.
// ChangeOrder must be idempotent: sending the same placements twice leaves
// the same state.
type Gateway interface {
	ListBoards(ctx context.Context) ([]model.Board, error)
	CreateBoard(ctx context.Context, board model.Board) (*model.Board, error)
	UpdateBoard(ctx context.Context, board model.Board) (*model.Board, error)
	ClearBoard(ctx context.Context, boardID uint) (*model.Board, error)
	DeleteBoard(ctx context.Context, boardID uint) (*model.Board, error)
	ResetBoards(ctx context.Context) ([]model.Board, error)

	ListColumns(ctx context.Context, boardID uint) ([]model.Column, error)
	ReorderColumn(ctx context.Context, boardID, columnID uint, index int) ([]model.Column, error)

	ListTasks(ctx context.Context, boardID uint) ([]model.Task, error)
	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) (*model.Task, error)
	ChangeTaskColumn(ctx context.Context, taskID, columnID uint) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID uint) (*model.Task, error)
	ChangeOrder(ctx context.Context, tasks []model.Task) ([]model.Task, error)

	SetSubtaskCompleted(ctx context.Context, subtaskID uint, completed bool) (*model.Subtask, error)
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Code)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Code, e.Message)
}

// Is lets callers test StatusErrors against ErrNotFound, ErrConflict and
// ErrInvalid.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == 404
	case ErrConflict:
		return e.Code == 409
	case ErrInvalid:
		return e.Code == 400
	}
	return false
}

// Temporary reports whether repeating the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == 429
}
