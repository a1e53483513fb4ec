package repository_test

import (
	"context"
	"testing"

	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestSubtaskRepository_SetCompleted(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	subtaskRepo := repository.NewSubtaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subtasks" SET "is_completed"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "subtasks" WHERE id_subtask = `).
		WillReturnRows(sqlmock.NewRows([]string{"id_subtask", "id_task", "title", "is_completed"}).
			AddRow(5, 1, "Outline", true))

	subtask, err := subtaskRepo.SetCompleted(context.Background(), 5, true)

	assert.NoError(t, err)
	assert.True(t, subtask.IsCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubtaskRepository_SetCompleted_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	subtaskRepo := repository.NewSubtaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subtasks" SET "is_completed"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	subtask, err := subtaskRepo.SetCompleted(context.Background(), 5, true)

	assert.ErrorIs(t, err, repository.ErrSubtaskNotFound)
	assert.Nil(t, subtask)
	assert.NoError(t, mock.ExpectationsWereMet())
}
