package model

type Subtask struct {
	ID          uint   `gorm:"column:id_subtask;primaryKey" json:"id_subtask"`
	TaskID      uint   `gorm:"column:id_task;not null;index" json:"id_task"`
	Title       string `gorm:"not null" json:"title"`
	IsCompleted bool   `gorm:"not null;default:false" json:"isCompleted"`
}
