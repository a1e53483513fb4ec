package ordering

import (
	"fmt"
	"slices"

	"taskboard/internal/model"
)

// Normalize renumbers every column to 0..n-1, keeping relative order.
// The returned slice keeps the input's element order.
func Normalize(tasks []model.Task) []model.Task {
	out := slices.Clone(tasks)
	pos := make(map[uint]int, len(out))
	for i, t := range out {
		pos[t.ID] = i
	}
	for _, columnID := range columnIDs(out) {
		for i, t := range columnTasks(out, columnID) {
			out[pos[t.ID]].Order = i
		}
	}
	return out
}

// Validate reports the first column whose order values are not 0..n-1.
func Validate(tasks []model.Task) error {
	for _, columnID := range columnIDs(tasks) {
		for i, t := range columnTasks(tasks, columnID) {
			if t.Order != i {
				return fmt.Errorf("column %d: task %d has order %d, want %d: %w",
					columnID, t.ID, t.Order, i, ErrOrderGap)
			}
		}
	}
	return nil
}

// Apply overlays the placement of each updated task onto tasks, matching by
// id. Updated tasks that are not present in tasks are ignored.
func Apply(tasks []model.Task, updated []model.Task) []model.Task {
	byID := make(map[uint]model.Placement, len(updated))
	for _, u := range updated {
		byID[u.ID] = u.Placement()
	}
	out := slices.Clone(tasks)
	for i := range out {
		if p, ok := byID[out[i].ID]; ok {
			out[i].ColumnID = p.ColumnID
			out[i].Order = p.Order
		}
	}
	return out
}

// Remove drops a task and renumbers the rest of its column.
func Remove(tasks []model.Task, taskID uint) (Result, error) {
	removed, ok := find(tasks, taskID)
	if !ok {
		return Result{Tasks: tasks}, fmt.Errorf("removed task %d: %w", taskID, ErrTaskNotFound)
	}

	before := placements(tasks)
	rest := without(columnTasks(tasks, removed.ColumnID), taskID)
	renumber(rest)

	out := make([]model.Task, 0, len(tasks)-1)
	for _, t := range tasks {
		if t.ColumnID != removed.ColumnID {
			out = append(out, t)
		}
	}
	var changed []model.Task
	for _, t := range rest {
		out = append(out, t)
		if before[t.ID] != t.Placement() {
			changed = append(changed, t)
		}
	}
	return Result{Tasks: out, Changed: changed}, nil
}

// NextOrder is the order a task appended to columnID receives.
func NextOrder(tasks []model.Task, columnID uint) int {
	n := 0
	for _, t := range tasks {
		if t.ColumnID == columnID {
			n++
		}
	}
	return n
}

func columnIDs(tasks []model.Task) []uint {
	var ids []uint
	seen := make(map[uint]bool)
	for _, t := range tasks {
		if !seen[t.ColumnID] {
			seen[t.ColumnID] = true
			ids = append(ids, t.ColumnID)
		}
	}
	return ids
}
