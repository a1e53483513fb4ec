package store

import (
	"slices"

	"taskboard/internal/model"
	"taskboard/internal/ordering"
)

func (s *Store) Boards() []model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.boards)
}

// BoardID is the active board, 0 when there is none.
func (s *Store) BoardID() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boardID
}

// Columns returns the active board's columns in order, each holding its
// tasks as currently known (optimistic changes included).
func (s *Store) Columns() []model.Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := s.tasksLocked()
	columns := slices.Clone(s.current.columns)
	for i := range columns {
		columns[i].Tasks = ordering.ColumnTasks(tasks, columns[i].ID)
	}
	return columns
}

func (s *Store) TasksInColumn(columnID uint) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ordering.ColumnTasks(s.tasksLocked(), columnID)
}

func (s *Store) Task(taskID uint) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.current.tasks[taskID]
	return t, ok
}

// Synced is false while optimistic changes wait for a re-fetch.
func (s *Store) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synced
}

func (s *Store) tasksLocked() []model.Task {
	tasks := make([]model.Task, 0, len(s.current.tasks))
	for _, t := range s.current.tasks {
		tasks = append(tasks, t)
	}
	return tasks
}
