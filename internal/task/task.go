package task

import (
	"time"

	"github.com/workpulse/workpulse/internal/core/idset"
)

// Task belongs to exactly one project and carries the employee side of the
// assignment relationship as an id array. The mirror array lives on each
// employee record; every mutation must keep both sides consistent.
type Task struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	ProjectID   int64      `json:"project_id" gorm:"column:project_id;not null;index"`
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description"`
	EmployeeIDs []int64    `json:"employee_ids" gorm:"column:employee_ids;serializer:json"`
	IsCompleted bool       `json:"is_completed" gorm:"column:is_completed;default:false"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	CompletedBy *int64     `json:"completed_by,omitempty" gorm:"column:completed_by"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// WorkedOnBy reports whether the employee is in the task's assigned set,
// which is what gates completion.
func (t *Task) WorkedOnBy(employeeID int64) bool {
	return idset.Contains(t.EmployeeIDs, employeeID)
}

func (t *Task) Complete(employeeID int64) {
	now := time.Now()
	t.IsCompleted = true
	t.CompletedAt = &now
	t.CompletedBy = &employeeID
	t.UpdatedAt = now
}

func (t *Task) Uncomplete() {
	t.IsCompleted = false
	t.CompletedAt = nil
	t.CompletedBy = nil
	t.UpdatedAt = time.Now()
}
