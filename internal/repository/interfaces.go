package repository

import (
	"context"

	"taskboard/internal/model"
)

type BoardRepositoryInterface interface {
	Create(ctx context.Context, board *model.Board) error
	List(ctx context.Context) ([]model.Board, error)
	GetByID(ctx context.Context, id uint) (*model.Board, error)
	Update(ctx context.Context, board *model.Board) (*model.Board, error)
	Clear(ctx context.Context, id uint) (*model.Board, error)
	Delete(ctx context.Context, id uint) (*model.Board, error)
	Reset(ctx context.Context) ([]model.Board, error)
}

type ColumnRepositoryInterface interface {
	GetByID(ctx context.Context, id uint) (*model.Column, error)
	GetByBoardID(ctx context.Context, boardID uint) ([]model.Column, error)
	ReorderColumns(ctx context.Context, boardID, columnID uint, index int) ([]model.Column, error)
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	GetByBoardID(ctx context.Context, boardID uint) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) (*model.Task, error)
	Delete(ctx context.Context, id uint) (*model.Task, error)
	ChangeColumn(ctx context.Context, taskID, columnID uint) (*model.Task, error)
	ChangeOrder(ctx context.Context, updates []model.Task) ([]model.Task, error)
}

type SubtaskRepositoryInterface interface {
	SetCompleted(ctx context.Context, id uint, completed bool) (*model.Subtask, error)
	BoardIDOf(ctx context.Context, id uint) (uint, error)
}

var (
	_ BoardRepositoryInterface   = (*BoardRepository)(nil)
	_ ColumnRepositoryInterface  = (*ColumnRepository)(nil)
	_ TaskRepositoryInterface    = (*TaskRepository)(nil)
	_ SubtaskRepositoryInterface = (*SubtaskRepository)(nil)
)
