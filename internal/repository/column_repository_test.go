package repository_test

import (
	"context"
	"testing"

	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnRepository_ReorderColumns(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	columnRepo := repository.NewColumnRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "board_columns" WHERE id_board = .* ORDER BY position`).
		WillReturnRows(columnRows().
			AddRow(1, 1, "Todo", "#49C4E5", 0).
			AddRow(2, 1, "Doing", "#8471F2", 1).
			AddRow(3, 1, "Done", "#67E2AE", 2))
	for i := 0; i < 3; i++ {
		mock.ExpectExec(`UPDATE "board_columns" SET "position"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	columns, err := columnRepo.ReorderColumns(context.Background(), 1, 3, 0)

	require.NoError(t, err)
	require.Len(t, columns, 3)
	assert.Equal(t, []uint{3, 1, 2}, []uint{columns[0].ID, columns[1].ID, columns[2].ID})
	for i, c := range columns {
		assert.Equal(t, i, c.Position)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnRepository_ReorderColumns_UnknownColumn(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	columnRepo := repository.NewColumnRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "board_columns" WHERE id_board = `).
		WillReturnRows(columnRows().AddRow(1, 1, "Todo", "#49C4E5", 0))
	mock.ExpectRollback()

	_, err := columnRepo.ReorderColumns(context.Background(), 1, 9, 0)

	assert.ErrorIs(t, err, repository.ErrColumnNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
