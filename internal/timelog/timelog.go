package timelog

import (
	"time"
)

// TimeLog is a single clock-in/clock-out session for one employee. A log
// with a nil ClockOut is open: the employee is currently working.
type TimeLog struct {
	ID            int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID    int64      `json:"employee_id" gorm:"not null;index"`
	ClockIn       time.Time  `json:"clock_in" gorm:"not null"`
	ClockOut      *time.Time `json:"clock_out"`
	TaskIDs       []int64    `json:"task_ids" gorm:"serializer:json"`
	ScreenshotIDs []int64    `json:"screenshot_ids" gorm:"serializer:json"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (TimeLog) TableName() string {
	return "time_logs"
}

func (t *TimeLog) IsOpen() bool {
	return t.ClockOut == nil
}

// Duration reports the worked time of a closed log, or the time elapsed
// since clock-in for an open one.
func (t *TimeLog) Duration() time.Duration {
	if t.ClockOut != nil {
		return t.ClockOut.Sub(t.ClockIn)
	}
	return time.Since(t.ClockIn)
}
