package model

import (
	"time"
)

type Board struct {
	ID        uint      `gorm:"column:id_board;primaryKey" json:"id_board"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"-"`

	Columns []Column `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"columns"`
}
