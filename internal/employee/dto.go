package employee

import (
	"net/mail"

	"github.com/workpulse/workpulse/internal"
)

// CreateEmployeeDTO is the admin-facing create payload. Accounts created this
// way start unverified; the invitation flow in the auth package is the usual
// path for onboarding.
type CreateEmployeeDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	IsAdmin   bool   `json:"is_admin"`
}

func (dto CreateEmployeeDTO) Validate() error {
	if dto.FirstName == "" {
		return internal.NewValidationFieldError("first_name", "first name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Email == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if _, err := mail.ParseAddress(dto.Email); err != nil {
		return internal.NewValidationFieldError("email", "email is not a valid address", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateEmployeeDTO carries profile updates. Nil fields are left untouched.
type UpdateEmployeeDTO struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
}

func (dto UpdateEmployeeDTO) Validate() error {
	if dto.FirstName != nil && *dto.FirstName == "" {
		return internal.NewValidationFieldError("first_name", "first name cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Email != nil {
		if _, err := mail.ParseAddress(*dto.Email); err != nil {
			return internal.NewValidationFieldError("email", "email is not a valid address", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

// WorkingStatus maps employee id to whether they currently have an open
// time log.
type WorkingStatus map[int64]bool
