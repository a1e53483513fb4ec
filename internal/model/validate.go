package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrDuplicateColumnName = errors.New("column names must be unique within a board")
)

// ValidateBoard checks the board form: a name, and non-empty column names
// that are unique ignoring case and surrounding spaces.
func ValidateBoard(b Board) error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("board: %w", ErrEmptyName)
	}
	seen := make(map[string]bool, len(b.Columns))
	for i, c := range b.Columns {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			return fmt.Errorf("column %d: %w", i, ErrEmptyName)
		}
		if seen[key] {
			return fmt.Errorf("%q: %w", c.Name, ErrDuplicateColumnName)
		}
		seen[key] = true
	}
	return nil
}

// ValidateTask checks the task form.
func ValidateTask(t Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task: %w", ErrEmptyName)
	}
	for i, s := range t.Subtasks {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("subtask %d: %w", i, ErrEmptyName)
		}
	}
	return nil
}
