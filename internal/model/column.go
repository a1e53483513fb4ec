package model

type Column struct {
	ID       uint   `gorm:"column:id_column;primaryKey" json:"id_column"`
	BoardID  uint   `gorm:"column:id_board;not null;index" json:"id_board"`
	Name     string `gorm:"not null" json:"name"`
	Color    string `gorm:"not null" json:"color"`
	Position int    `gorm:"not null" json:"position"`

	Tasks []Task `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"tasks"`
}

func (Column) TableName() string {
	return "board_columns"
}
