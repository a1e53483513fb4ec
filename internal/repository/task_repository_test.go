package repository_test

import (
	"context"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/ordering"
	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRepository_Create_AppendsToColumn(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "board_columns" WHERE id_column = `).
		WillReturnRows(columnRows().AddRow(10, 1, "Todo", "#49C4E5", 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE id_column = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_task"}).AddRow(7))
	mock.ExpectCommit()

	task := &model.Task{ID: 99, ColumnID: 10, Title: "Write tests"}
	err := taskRepo.Create(context.Background(), task)

	assert.NoError(t, err)
	assert.Equal(t, uint(7), task.ID)
	assert.Equal(t, 2, task.Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Create_UnknownColumn(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "board_columns" WHERE id_column = `).
		WillReturnRows(columnRows())
	mock.ExpectRollback()

	err := taskRepo.Create(context.Background(), &model.Task{ColumnID: 10, Title: "x"})

	assert.ErrorIs(t, err, repository.ErrColumnNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ChangeOrder_CrossColumn(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	// Task 1 leaves column 10 for empty column 20; task 2 closes the gap.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id_task IN`).
		WillReturnRows(taskRows().
			AddRow(1, 10, "a", "", 0).
			AddRow(2, 10, "b", "", 1))
	mock.ExpectQuery(`SELECT \* FROM "board_columns" WHERE id_column IN`).
		WillReturnRows(columnRows().
			AddRow(10, 1, "Todo", "#49C4E5", 0).
			AddRow(20, 1, "Doing", "#8471F2", 1))
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id_column IN .* ORDER BY position`).
		WillReturnRows(taskRows().
			AddRow(1, 10, "a", "", 0).
			AddRow(2, 10, "b", "", 1))
	mock.ExpectExec(`UPDATE "tasks" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tasks" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tasks, err := taskRepo.ChangeOrder(context.Background(), []model.Task{
		{ID: 1, ColumnID: 20, Order: 0},
		{ID: 2, ColumnID: 10, Order: 0},
	})

	require.NoError(t, err)
	assert.NoError(t, ordering.Validate(tasks))
	assert.Len(t, tasks, 2)
	for _, task := range tasks {
		switch task.ID {
		case 1:
			assert.Equal(t, model.Placement{ColumnID: 20, Order: 0}, task.Placement())
		case 2:
			assert.Equal(t, model.Placement{ColumnID: 10, Order: 0}, task.Placement())
		}
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ChangeOrder_RejectsGap(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	// Only task 1 is sent, so task 2 would be left at order 1 alone.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id_task IN`).
		WillReturnRows(taskRows().AddRow(1, 10, "a", "", 0))
	mock.ExpectQuery(`SELECT \* FROM "board_columns" WHERE id_column IN`).
		WillReturnRows(columnRows().
			AddRow(10, 1, "Todo", "#49C4E5", 0).
			AddRow(20, 1, "Doing", "#8471F2", 1))
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id_column IN .* ORDER BY position`).
		WillReturnRows(taskRows().
			AddRow(1, 10, "a", "", 0).
			AddRow(2, 10, "b", "", 1))
	mock.ExpectRollback()

	_, err := taskRepo.ChangeOrder(context.Background(), []model.Task{{ID: 1, ColumnID: 20, Order: 0}})

	assert.ErrorIs(t, err, ordering.ErrOrderGap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ChangeOrder_ColumnsOfDifferentBoards(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id_task IN`).
		WillReturnRows(taskRows().AddRow(1, 10, "a", "", 0))
	mock.ExpectQuery(`SELECT \* FROM "board_columns" WHERE id_column IN`).
		WillReturnRows(columnRows().
			AddRow(10, 1, "Todo", "#49C4E5", 0).
			AddRow(30, 2, "Todo", "#49C4E5", 0))
	mock.ExpectRollback()

	_, err := taskRepo.ChangeOrder(context.Background(), []model.Task{{ID: 1, ColumnID: 30, Order: 0}})

	assert.ErrorIs(t, err, repository.ErrColumnOutsideBoard)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ChangeOrder_UnknownTask(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id_task IN`).
		WillReturnRows(taskRows().AddRow(1, 10, "a", "", 0))
	mock.ExpectRollback()

	_, err := taskRepo.ChangeOrder(context.Background(), []model.Task{
		{ID: 1, ColumnID: 10, Order: 0},
		{ID: 404, ColumnID: 10, Order: 1},
	})

	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ChangeOrder_Empty(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	tasks, err := taskRepo.ChangeOrder(context.Background(), nil)

	assert.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
