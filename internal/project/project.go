package project

import (
	"time"
)

// Project groups tasks. The task list is kept as an id array on the project
// so the dashboard can render either side of the relationship without joins.
type Project struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	TaskIDs     []int64   `json:"task_ids" gorm:"column:task_ids;serializer:json"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Project) TableName() string {
	return "projects"
}
