package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/ordering"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create appends a new task (and its subtasks) to the end of its column
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadColumn(tx, task.ColumnID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Task{}).Where("id_column = ?", task.ColumnID).Count(&count).Error; err != nil {
			return err
		}
		task.ID = 0
		task.Order = int(count)
		for i := range task.Subtasks {
			task.Subtasks[i].ID = 0
		}
		return tx.Create(task).Error
	})
}

// GetByID retrieves a task with its subtasks
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	return loadTask(r.db.WithContext(ctx), id)
}

// GetByBoardID retrieves every task of a board, grouped by column and in order
func (r *TaskRepository) GetByBoardID(ctx context.Context, boardID uint) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Preload("Subtasks", orderBySubtaskID).
		Where("id_column IN (?)", boardColumnIDs(r.db.WithContext(ctx), boardID)).
		Order("id_column").
		Order("position").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Update edits title, description and the subtask list of a task. Subtasks
// with an id are updated, new ones are created, missing ones are deleted.
// The column and order are left alone; those change through ChangeColumn and
// ChangeOrder only.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	var updated *model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := loadTask(tx, task.ID)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Task{}).Where("id_task = ?", task.ID).
			Updates(map[string]interface{}{"title": task.Title, "description": task.Description}).Error; err != nil {
			return err
		}

		current := make(map[uint]bool, len(existing.Subtasks))
		for _, s := range existing.Subtasks {
			current[s.ID] = true
		}

		kept := make(map[uint]bool, len(task.Subtasks))
		for _, s := range task.Subtasks {
			if s.ID != 0 && current[s.ID] {
				kept[s.ID] = true
				if err := tx.Model(&model.Subtask{}).Where("id_subtask = ?", s.ID).
					Updates(map[string]interface{}{"title": s.Title, "is_completed": s.IsCompleted}).Error; err != nil {
					return err
				}
				continue
			}
			subtask := model.Subtask{TaskID: task.ID, Title: s.Title, IsCompleted: s.IsCompleted}
			if err := tx.Create(&subtask).Error; err != nil {
				return err
			}
		}

		for id := range current {
			if kept[id] {
				continue
			}
			if err := tx.Delete(&model.Subtask{}, "id_subtask = ?", id).Error; err != nil {
				return err
			}
		}

		updated, err = loadTask(tx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a task and closes the gap it leaves in its column
func (r *TaskRepository) Delete(ctx context.Context, id uint) (*model.Task, error) {
	var deleted *model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, id)
		if err != nil {
			return err
		}

		var siblings []model.Task
		if err := tx.Where("id_column = ?", task.ColumnID).Find(&siblings).Error; err != nil {
			return err
		}
		res, err := ordering.Remove(siblings, id)
		if err != nil {
			return err
		}

		if err := tx.Delete(&model.Task{}, "id_task = ?", id).Error; err != nil {
			return err
		}
		if err := savePlacements(tx, res.Changed); err != nil {
			return err
		}
		deleted = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ChangeColumn moves a task to the end of another column of the same board
func (r *TaskRepository) ChangeColumn(ctx context.Context, taskID, columnID uint) (*model.Task, error) {
	var moved *model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		from, err := loadColumn(tx, task.ColumnID)
		if err != nil {
			return err
		}
		to, err := loadColumn(tx, columnID)
		if err != nil {
			return err
		}
		if from.BoardID != to.BoardID {
			return ErrColumnOutsideBoard
		}

		var tasks []model.Task
		if err := tx.Where("id_column IN ?", []uint{from.ID, to.ID}).Find(&tasks).Error; err != nil {
			return err
		}
		res, err := ordering.ComputeReorder(tasks, ordering.ToColumn(taskID, columnID))
		if err != nil {
			return err
		}
		if err := savePlacements(tx, res.Changed); err != nil {
			return err
		}

		moved, err = loadTask(tx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// ChangeOrder applies the column and order of every given task in one
// transaction. The resulting columns must stay contiguous and belong to one
// board. Applying the same assignment twice gives the same result. It
// returns every task of the affected columns.
func (r *TaskRepository) ChangeOrder(ctx context.Context, updates []model.Task) ([]model.Task, error) {
	if len(updates) == 0 {
		return []model.Task{}, nil
	}

	var result []model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(updates))
		seen := make(map[uint]bool, len(updates))
		for _, u := range updates {
			if !seen[u.ID] {
				seen[u.ID] = true
				ids = append(ids, u.ID)
			}
		}

		var current []model.Task
		if err := tx.Where("id_task IN ?", ids).Find(&current).Error; err != nil {
			return err
		}
		if len(current) != len(ids) {
			return ErrTaskNotFound
		}

		columnIDs := distinctColumns(current, updates)
		var columns []model.Column
		if err := tx.Where("id_column IN ?", columnIDs).Find(&columns).Error; err != nil {
			return err
		}
		if len(columns) != len(columnIDs) {
			return ErrColumnNotFound
		}
		for _, c := range columns[1:] {
			if c.BoardID != columns[0].BoardID {
				return ErrColumnOutsideBoard
			}
		}

		var affected []model.Task
		if err := tx.Where("id_column IN ?", columnIDs).Order("position").Find(&affected).Error; err != nil {
			return err
		}
		next := ordering.Apply(affected, updates)
		if err := ordering.Validate(next); err != nil {
			return err
		}

		if err := savePlacements(tx, updates); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func savePlacements(tx *gorm.DB, tasks []model.Task) error {
	for _, t := range tasks {
		if err := tx.Model(&model.Task{}).Where("id_task = ?", t.ID).
			Updates(map[string]interface{}{"id_column": t.ColumnID, "position": t.Order}).Error; err != nil {
			return err
		}
	}
	return nil
}

func distinctColumns(current, updates []model.Task) []uint {
	var ids []uint
	seen := make(map[uint]bool)
	for _, list := range [][]model.Task{current, updates} {
		for _, t := range list {
			if !seen[t.ColumnID] {
				seen[t.ColumnID] = true
				ids = append(ids, t.ColumnID)
			}
		}
	}
	return ids
}

func boardColumnIDs(db *gorm.DB, boardID uint) *gorm.DB {
	return db.Model(&model.Column{}).Select("id_column").Where("id_board = ?", boardID)
}

func loadTask(db *gorm.DB, id uint) (*model.Task, error) {
	var task model.Task
	err := db.Preload("Subtasks", orderBySubtaskID).Where("id_task = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func loadColumn(db *gorm.DB, id uint) (*model.Column, error) {
	var column model.Column
	if err := db.Where("id_column = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}
	return &column, nil
}
