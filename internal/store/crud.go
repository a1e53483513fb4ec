package store

import (
	"context"
	"fmt"

	"taskboard/internal/model"
)

// CreateBoard stores a new board and makes it the active one.
func (s *Store) CreateBoard(ctx context.Context, board model.Board) (*model.Board, error) {
	created, err := s.gw.CreateBoard(ctx, board)
	if err != nil {
		return nil, s.failed("create-board", err)
	}
	if err := s.LoadBoards(ctx); err != nil {
		return created, err
	}
	return created, s.SelectBoard(ctx, created.ID)
}

// EditBoard renames the board and replaces its column list.
func (s *Store) EditBoard(ctx context.Context, board model.Board) (*model.Board, error) {
	updated, err := s.gw.UpdateBoard(ctx, board)
	if err != nil {
		return nil, s.failed("update-board", err)
	}
	return updated, s.LoadBoards(ctx)
}

// ClearBoard removes every column and task of the active board.
func (s *Store) ClearBoard(ctx context.Context) error {
	boardID := s.BoardID()
	if boardID == 0 {
		return ErrNoBoard
	}
	if _, err := s.gw.ClearBoard(ctx, boardID); err != nil {
		return s.failed("clear-board", err)
	}
	return s.LoadBoards(ctx)
}

// DeleteBoard deletes a board. The gateway refuses to delete the last one.
func (s *Store) DeleteBoard(ctx context.Context, boardID uint) error {
	if _, err := s.gw.DeleteBoard(ctx, boardID); err != nil {
		return s.failed("delete-board", err)
	}
	return s.LoadBoards(ctx)
}

// ResetBoards replaces everything with the default board.
func (s *Store) ResetBoards(ctx context.Context) error {
	if _, err := s.gw.ResetBoards(ctx); err != nil {
		return s.failed("reset-boards", err)
	}
	return s.LoadBoards(ctx)
}

// AddTask appends a task to its column.
func (s *Store) AddTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if s.BoardID() == 0 {
		return nil, ErrNoBoard
	}
	created, err := s.gw.CreateTask(ctx, task)
	if err != nil {
		return nil, s.failed("create-task", err)
	}
	return created, s.Refresh(ctx)
}

// EditTask changes title, description and subtasks.
func (s *Store) EditTask(ctx context.Context, task model.Task) (*model.Task, error) {
	updated, err := s.gw.UpdateTask(ctx, task)
	if err != nil {
		return nil, s.failed("update-task", err)
	}
	return updated, s.Refresh(ctx)
}

func (s *Store) DeleteTask(ctx context.Context, taskID uint) error {
	if _, err := s.gw.DeleteTask(ctx, taskID); err != nil {
		return s.failed("delete-task", err)
	}
	return s.Refresh(ctx)
}

// ToggleSubtask flips a subtask of a task on the active board.
func (s *Store) ToggleSubtask(ctx context.Context, subtaskID uint) (*model.Subtask, error) {
	current, ok := s.subtask(subtaskID)
	if !ok {
		return nil, fmt.Errorf("subtask %d is not on the active board", subtaskID)
	}
	updated, err := s.gw.SetSubtaskCompleted(ctx, subtaskID, !current.IsCompleted)
	if err != nil {
		return nil, s.failed("toggle-subtask", err)
	}
	return updated, s.Refresh(ctx)
}

func (s *Store) subtask(id uint) (model.Subtask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.current.tasks {
		for _, sub := range t.Subtasks {
			if sub.ID == id {
				return sub, true
			}
		}
	}
	return model.Subtask{}, false
}
