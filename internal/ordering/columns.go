package ordering

import (
	"cmp"
	"fmt"
	"slices"

	"taskboard/internal/model"
)

// MoveColumn places a column at index among its board's columns and
// renumbers Position for all of them. A negative or out of range index moves
// the column to the end.
func MoveColumn(columns []model.Column, columnID uint, index int) ([]model.Column, error) {
	sorted := SortColumns(columns)

	current := slices.IndexFunc(sorted, func(c model.Column) bool { return c.ID == columnID })
	if current < 0 {
		return columns, fmt.Errorf("column %d: %w", columnID, ErrColumnNotFound)
	}

	moved := sorted[current]
	rest := slices.Delete(sorted, current, current+1)
	if index < 0 || index > len(rest) {
		index = len(rest)
	}
	out := slices.Insert(rest, index, moved)
	for i := range out {
		out[i].Position = i
	}
	return out, nil
}

// SortColumns returns a copy of columns ordered by Position.
func SortColumns(columns []model.Column) []model.Column {
	sorted := slices.Clone(columns)
	slices.SortStableFunc(sorted, func(a, b model.Column) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return sorted
}
