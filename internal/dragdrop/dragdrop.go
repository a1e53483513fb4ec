// Package dragdrop turns terminal drop events into ordering moves.
package dragdrop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"taskboard/internal/ordering"
)

const (
	taskPrefix   = "task-"
	columnPrefix = "column-"
)

var (
	// ErrNoop means the drop needs no reorder (nothing under the pointer, or
	// the task was dropped onto itself).
	ErrNoop      = errors.New("drop does not move anything")
	ErrInvalidID = errors.New("invalid drop target id")
)

// DropEvent is the single terminal event a drag gesture reports.
// Active is always a task id; Over is a task id, a column id or empty.
type DropEvent struct {
	Active string
	Over   string
}

func TaskID(id uint) string {
	return taskPrefix + strconv.FormatUint(uint64(id), 10)
}

func ColumnID(id uint) string {
	return columnPrefix + strconv.FormatUint(uint64(id), 10)
}

func Translate(ev DropEvent) (ordering.Move, error) {
	if ev.Over == "" || ev.Active == ev.Over {
		return ordering.Move{}, ErrNoop
	}

	taskID, err := parse(ev.Active, taskPrefix)
	if err != nil {
		return ordering.Move{}, err
	}

	switch {
	case strings.HasPrefix(ev.Over, columnPrefix):
		columnID, err := parse(ev.Over, columnPrefix)
		if err != nil {
			return ordering.Move{}, err
		}
		return ordering.ToColumn(taskID, columnID), nil
	case strings.HasPrefix(ev.Over, taskPrefix):
		overID, err := parse(ev.Over, taskPrefix)
		if err != nil {
			return ordering.Move{}, err
		}
		return ordering.OntoTask(taskID, overID), nil
	}
	return ordering.Move{}, fmt.Errorf("%q: %w", ev.Over, ErrInvalidID)
}

func parse(raw, prefix string) (uint, error) {
	digits, ok := strings.CutPrefix(raw, prefix)
	if !ok {
		return 0, fmt.Errorf("%q: %w", raw, ErrInvalidID)
	}
	id, err := strconv.ParseUint(digits, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%q: %w", raw, ErrInvalidID)
	}
	return uint(id), nil
}
