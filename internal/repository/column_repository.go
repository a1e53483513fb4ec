package repository

import (
	"context"
	"errors"
	"taskboard/internal/model"
	"taskboard/internal/ordering"

	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uint) (*model.Column, error) {
	var column model.Column
	if err := r.db.WithContext(ctx).Where("id_column = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}
	return &column, nil
}

// GetByBoardID returns the board's columns in position order, each with its
// tasks (in order) and their subtasks.
func (r *ColumnRepository) GetByBoardID(ctx context.Context, boardID uint) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).
		Preload("Tasks", orderByPosition).
		Preload("Tasks.Subtasks", orderBySubtaskID).
		Where("id_board = ?", boardID).
		Order("position").
		Find(&columns).Error
	return columns, err
}

// ReorderColumns moves one column to index and renumbers the board's columns.
func (r *ColumnRepository) ReorderColumns(ctx context.Context, boardID, columnID uint, index int) ([]model.Column, error) {
	var reordered []model.Column
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var columns []model.Column
		if err := tx.Where("id_board = ?", boardID).Order("position").Find(&columns).Error; err != nil {
			return err
		}

		next, err := ordering.MoveColumn(columns, columnID, index)
		if err != nil {
			if errors.Is(err, ordering.ErrColumnNotFound) {
				return ErrColumnNotFound
			}
			return err
		}

		for _, column := range next {
			if err := tx.Model(&model.Column{}).Where("id_column = ?", column.ID).
				Update("position", column.Position).Error; err != nil {
				return err
			}
		}
		reordered = next
		return nil
	})
	return reordered, err
}

func orderBySubtaskID(db *gorm.DB) *gorm.DB {
	return db.Order("id_subtask")
}
