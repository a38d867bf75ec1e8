package employee

import (
	"time"

	"github.com/workpulse/workpulse/internal/core/idset"
)

// Employee is the directory record for a staff member. Employees are never
// hard-deleted; admins toggle the active flag instead.
type Employee struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	FirstName     string     `json:"first_name" gorm:"column:first_name;not null"`
	LastName      string     `json:"last_name" gorm:"column:last_name"`
	Email         string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string     `json:"-" gorm:"column:password_hash"`
	IsAdmin       bool       `json:"is_admin" gorm:"column:is_admin;default:false"`
	IsActive      bool       `json:"is_active" gorm:"column:is_active;default:true"`
	EmailVerified bool       `json:"email_verified" gorm:"column:email_verified;default:false"`
	LastKnownIP   string     `json:"last_known_ip,omitempty" gorm:"column:last_known_ip"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty" gorm:"column:last_login_at"`
	TaskIDs       []int64    `json:"task_ids" gorm:"column:task_ids;serializer:json"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

func (e *Employee) HasTask(taskID int64) bool {
	return idset.Contains(e.TaskIDs, taskID)
}

func (e *Employee) AddTask(taskID int64) {
	e.TaskIDs = idset.Add(e.TaskIDs, taskID)
}

func (e *Employee) RemoveTask(taskID int64) {
	e.TaskIDs = idset.Remove(e.TaskIDs, taskID)
}
