package repository

import (
	"context"
	"errors"
	"taskboard/internal/model"

	"gorm.io/gorm"
)

// DefaultBoard is what a reset leaves behind.
var DefaultBoard = model.Board{
	Name: "Platform Launch",
	Columns: []model.Column{
		{Name: "Todo"},
		{Name: "Doing"},
		{Name: "Done"},
	},
}

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// Create stores a board together with its initial columns.
func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	prepareColumns(board.Columns)
	return r.db.WithContext(ctx).Create(board).Error
}

// List returns all boards with their columns in position order.
func (r *BoardRepository) List(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Preload("Columns", orderByPosition).
		Order("id_board").
		Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) GetByID(ctx context.Context, id uint) (*model.Board, error) {
	return loadBoard(r.db.WithContext(ctx), id)
}

// Update renames the board and replaces its column list. Columns with an id
// are kept (renamed, recolored, repositioned), columns without one are
// created, and columns missing from the list are deleted with their tasks.
func (r *BoardRepository) Update(ctx context.Context, board *model.Board) (*model.Board, error) {
	var updated *model.Board
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := loadBoard(tx, board.ID)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Board{}).Where("id_board = ?", board.ID).
			Update("name", board.Name).Error; err != nil {
			return err
		}

		current := make(map[uint]model.Column, len(existing.Columns))
		for _, c := range existing.Columns {
			current[c.ID] = c
		}

		kept := make(map[uint]bool, len(board.Columns))
		for i, c := range board.Columns {
			if c.ID == 0 {
				column := model.Column{BoardID: board.ID, Name: c.Name, Color: c.Color, Position: i}
				if column.Color == "" {
					column.Color = model.RandomColumnColor()
				}
				if err := tx.Omit("Tasks").Create(&column).Error; err != nil {
					return err
				}
				continue
			}

			old, ok := current[c.ID]
			if !ok {
				return ErrColumnOutsideBoard
			}
			kept[c.ID] = true
			color := c.Color
			if color == "" {
				color = old.Color
			}
			if err := tx.Model(&model.Column{}).Where("id_column = ?", c.ID).
				Updates(map[string]interface{}{"name": c.Name, "color": color, "position": i}).Error; err != nil {
				return err
			}
		}

		for id := range current {
			if kept[id] {
				continue
			}
			if err := tx.Delete(&model.Column{}, "id_column = ?", id).Error; err != nil {
				return err
			}
		}

		updated, err = loadBoard(tx, board.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Clear removes every column (and so every task) of the board.
func (r *BoardRepository) Clear(ctx context.Context, id uint) (*model.Board, error) {
	var cleared *model.Board
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadBoard(tx, id); err != nil {
			return err
		}
		if err := tx.Delete(&model.Column{}, "id_board = ?", id).Error; err != nil {
			return err
		}
		var err error
		cleared, err = loadBoard(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cleared, nil
}

// Delete removes a board unless it is the last one.
func (r *BoardRepository) Delete(ctx context.Context, id uint) (*model.Board, error) {
	var deleted *model.Board
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		board, err := loadBoard(tx, id)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Board{}).Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastBoard
		}

		if err := tx.Delete(&model.Board{}, "id_board = ?", id).Error; err != nil {
			return err
		}
		deleted = board
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Reset deletes every board and seeds DefaultBoard.
func (r *BoardRepository) Reset(ctx context.Context) ([]model.Board, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&model.Board{}).Error; err != nil {
			return err
		}
		board := DefaultBoard
		board.Columns = append([]model.Column(nil), DefaultBoard.Columns...)
		prepareColumns(board.Columns)
		return tx.Create(&board).Error
	})
	if err != nil {
		return nil, err
	}
	return r.List(ctx)
}

func loadBoard(db *gorm.DB, id uint) (*model.Board, error) {
	var board model.Board
	err := db.Preload("Columns", orderByPosition).Where("id_board = ?", id).First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

func prepareColumns(columns []model.Column) {
	for i := range columns {
		columns[i].Position = i
		if columns[i].Color == "" {
			columns[i].Color = model.RandomColumnColor()
		}
	}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
