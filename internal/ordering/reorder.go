// Package ordering computes task and column placement after a move.
//
// Every function here is pure: inputs are never mutated and no I/O happens.
// Callers apply the returned placements optimistically and persist the
// Changed set.
package ordering

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"taskboard/internal/model"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrOrderGap       = errors.New("column order is not contiguous")
)

// End appends the moved task after the last task of the destination column.
const End = -1

// Move describes where a task was dropped. Either ColumnID (column-level
// drop, optionally with Index) or OverTaskID (dropped onto another task) is
// set; OverTaskID wins when both are.
type Move struct {
	TaskID     uint
	ColumnID   uint
	OverTaskID uint
	Index      int
}

func ToColumn(taskID, columnID uint) Move {
	return Move{TaskID: taskID, ColumnID: columnID, Index: End}
}

func ToIndex(taskID, columnID uint, index int) Move {
	return Move{TaskID: taskID, ColumnID: columnID, Index: index}
}

func OntoTask(taskID, overTaskID uint) Move {
	return Move{TaskID: taskID, OverTaskID: overTaskID, Index: End}
}

type Result struct {
	// Tasks is the full task set after the move.
	Tasks []model.Task
	// Changed holds only the tasks whose column or order differ from the input.
	Changed []model.Task
}

func (r Result) Noop() bool {
	return len(r.Changed) == 0
}

// ComputeReorder moves one task and renumbers the source and destination
// columns. Tasks in other columns are returned untouched and never appear in
// Changed. When the move resolves to the task's current position, or a
// referenced task is missing, the input is returned as is.
func ComputeReorder(tasks []model.Task, move Move) (Result, error) {
	unchanged := Result{Tasks: tasks}

	moved, ok := find(tasks, move.TaskID)
	if !ok {
		return unchanged, fmt.Errorf("moved task %d: %w", move.TaskID, ErrTaskNotFound)
	}

	from := moved.ColumnID
	to := move.ColumnID
	if move.OverTaskID != 0 {
		over, ok := find(tasks, move.OverTaskID)
		if !ok {
			return unchanged, fmt.Errorf("target task %d: %w", move.OverTaskID, ErrTaskNotFound)
		}
		to = over.ColumnID
	}
	if to == 0 {
		return unchanged, fmt.Errorf("move of task %d has no destination: %w", move.TaskID, ErrColumnNotFound)
	}

	dest := columnTasks(tasks, to)
	current := indexOf(dest, moved.ID)
	rest := without(dest, moved.ID)

	index := len(rest)
	switch {
	case move.OverTaskID != 0:
		// The moved task takes the slot the target occupies right now.
		index = indexOf(dest, move.OverTaskID)
	case move.Index >= 0 && move.Index < len(rest):
		index = move.Index
	}

	if from == to && index == current {
		return unchanged, nil
	}

	placed := moved
	placed.ColumnID = to
	destNew := slices.Insert(rest, index, placed)
	renumber(destNew)

	var srcNew []model.Task
	if from != to {
		srcNew = without(columnTasks(tasks, from), moved.ID)
		renumber(srcNew)
	}

	before := placements(tasks)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ColumnID != from && t.ColumnID != to {
			out = append(out, t)
		}
	}

	var changed []model.Task
	for _, list := range [][]model.Task{destNew, srcNew} {
		for _, t := range list {
			out = append(out, t)
			if before[t.ID] != t.Placement() {
				changed = append(changed, t)
			}
		}
	}

	return Result{Tasks: out, Changed: changed}, nil
}

// ColumnTasks returns the tasks of one column sorted by order.
func ColumnTasks(tasks []model.Task, columnID uint) []model.Task {
	return columnTasks(tasks, columnID)
}

func columnTasks(tasks []model.Task, columnID uint) []model.Task {
	var list []model.Task
	for _, t := range tasks {
		if t.ColumnID == columnID {
			list = append(list, t)
		}
	}
	slices.SortStableFunc(list, func(a, b model.Task) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return list
}

func find(tasks []model.Task, id uint) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func indexOf(tasks []model.Task, id uint) int {
	return slices.IndexFunc(tasks, func(t model.Task) bool { return t.ID == id })
}

func without(tasks []model.Task, id uint) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func renumber(tasks []model.Task) {
	for i := range tasks {
		tasks[i].Order = i
	}
}

func placements(tasks []model.Task) map[uint]model.Placement {
	m := make(map[uint]model.Placement, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t.Placement()
	}
	return m
}
