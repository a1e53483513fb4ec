package repository_test

import (
	"context"
	"testing"

	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func expectLoadBoard(mock sqlmock.Sqlmock, id int) {
	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id_board = `).
		WillReturnRows(sqlmock.NewRows([]string{"id_board", "name"}).AddRow(id, "Platform Launch"))
	mock.ExpectQuery(`SELECT \* FROM "board_columns" WHERE "board_columns"."id_board" = `).
		WillReturnRows(columnRows().AddRow(1, id, "Todo", "#49C4E5", 0))
}

func TestBoardRepository_Delete_RefusesLastBoard(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectBegin()
	expectLoadBoard(mock, 1)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	// Act
	board, err := boardRepo.Delete(context.Background(), 1)

	// Assert
	assert.ErrorIs(t, err, repository.ErrLastBoard)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Delete(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectBegin()
	expectLoadBoard(mock, 2)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`DELETE FROM "boards" WHERE id_board = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	board, err := boardRepo.Delete(context.Background(), 2)

	assert.NoError(t, err)
	assert.Equal(t, uint(2), board.ID)
	assert.Len(t, board.Columns, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id_board = `).
		WillReturnRows(sqlmock.NewRows([]string{"id_board", "name"}))

	board, err := boardRepo.GetByID(context.Background(), 9)

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}
