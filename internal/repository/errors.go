package repository

import "errors"

// Common repository errors
var (
	// ErrBoardNotFound is returned when a board is not found
	ErrBoardNotFound = errors.New("board not found")

	// ErrColumnNotFound is returned when a column is not found
	ErrColumnNotFound = errors.New("column not found")

	ErrSubtaskNotFound = errors.New("subtask not found")

	// ErrLastBoard is returned when deleting would leave no board at all
	ErrLastBoard = errors.New("at least one board must remain")

	// ErrColumnOutsideBoard is returned when a request mixes columns of different boards
	ErrColumnOutsideBoard = errors.New("column does not belong to the board")
)
