package timelog

import (
	"github.com/workpulse/workpulse/internal"
)

// ClockInDTO starts a new time log. EmployeeID is optional; when zero the
// authenticated employee is used.
type ClockInDTO struct {
	EmployeeID int64   `json:"employee_id"`
	TaskIDs    []int64 `json:"task_ids"`
}

func (d ClockInDTO) Validate() error {
	if d.EmployeeID < 0 {
		return internal.NewValidationError("employee_id must be positive", internal.ErrCodeValidationFailed)
	}
	return nil
}
