package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

// SetCompleted toggles a subtask's checkbox
func (r *SubtaskRepository) SetCompleted(ctx context.Context, id uint, completed bool) (*model.Subtask, error) {
	result := r.db.WithContext(ctx).Model(&model.Subtask{}).
		Where("id_subtask = ?", id).
		Update("is_completed", completed)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrSubtaskNotFound
	}

	var subtask model.Subtask
	if err := r.db.WithContext(ctx).Where("id_subtask = ?", id).First(&subtask).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, err
	}
	return &subtask, nil
}

// BoardIDOf resolves which board a subtask belongs to
func (r *SubtaskRepository) BoardIDOf(ctx context.Context, id uint) (uint, error) {
	var boardID uint
	err := r.db.WithContext(ctx).
		Table("subtasks").
		Select("board_columns.id_board").
		Joins("JOIN tasks ON tasks.id_task = subtasks.id_task").
		Joins("JOIN board_columns ON board_columns.id_column = tasks.id_column").
		Where("subtasks.id_subtask = ?", id).
		Scan(&boardID).Error
	if err != nil {
		return 0, err
	}
	if boardID == 0 {
		return 0, ErrSubtaskNotFound
	}
	return boardID, nil
}
