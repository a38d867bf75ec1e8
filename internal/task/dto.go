package task

import (
	"github.com/workpulse/workpulse/internal"
)

type CreateTaskDTO struct {
	ProjectID   int64   `json:"project_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	EmployeeIDs []int64 `json:"employee_ids"`
}

func (dto CreateTaskDTO) Validate() error {
	if dto.ProjectID == 0 {
		return internal.NewValidationFieldError("project_id", "project_id is required", internal.ErrCodeValidationFailed)
	}
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Name) > 200 {
		return internal.NewValidationFieldError("name", "name must be less than 200 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateTaskDTO updates task fields. A non-nil EmployeeIDs replaces the
// assigned set and triggers the bidirectional sync.
type UpdateTaskDTO struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	EmployeeIDs *[]int64 `json:"employee_ids,omitempty"`
}

func (dto UpdateTaskDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return internal.NewValidationFieldError("name", "name cannot be empty", internal.ErrCodeValidationFailed)
	}
	return nil
}

type AssignEmployeesDTO struct {
	EmployeeIDs []int64 `json:"employee_ids"`
}
