package model

type Task struct {
	ID          uint   `gorm:"column:id_task;primaryKey" json:"id_task"`
	ColumnID    uint   `gorm:"column:id_column;not null;index" json:"id_column"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `gorm:"column:position;not null" json:"order"`

	Subtasks []Subtask `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"subtasks"`
}

// Placement is the part of a task the ordering engine is allowed to change.
type Placement struct {
	ColumnID uint
	Order    int
}

func (t Task) Placement() Placement {
	return Placement{ColumnID: t.ColumnID, Order: t.Order}
}
