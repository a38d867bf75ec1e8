package auth

import (
	"net/mail"
	"strings"

	"github.com/workpulse/workpulse/internal"
)

type SignUpDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (dto SignUpDTO) Validate() error {
	if dto.FirstName == "" {
		return internal.NewValidationFieldError("first_name", "first name is required", internal.ErrCodeValidationFailed)
	}
	if err := validateEmail(dto.Email); err != nil {
		return err
	}
	return validatePassword(dto.Password)
}

type SignInDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto SignInDTO) Validate() error {
	if err := validateEmail(dto.Email); err != nil {
		return err
	}
	if dto.Password == "" {
		return internal.NewValidationFieldError("password", "password is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (dto RefreshTokenDTO) Validate() error {
	if dto.RefreshToken == "" {
		return internal.NewValidationFieldError("refresh_token", "refresh token is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

func (dto ForgotPasswordDTO) Validate() error {
	return validateEmail(dto.Email)
}

type ResetPasswordDTO struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (dto ResetPasswordDTO) Validate() error {
	if err := validatePassword(dto.Password); err != nil {
		return err
	}
	if dto.Password != dto.ConfirmPassword {
		return internal.NewValidationFieldError("confirm_password", "passwords do not match", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SendActivationDTO struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (dto SendActivationDTO) Validate() error {
	if err := validateEmail(dto.Email); err != nil {
		return err
	}
	if strings.TrimSpace(dto.FullName) == "" {
		return internal.NewValidationFieldError("full_name", "full name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ActivateAccountDTO finishes an invitation. The invitee confirms their full
// name (prefilled from the invitation) and chooses a password.
type ActivateAccountDTO struct {
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (dto ActivateAccountDTO) Validate() error {
	if err := validatePassword(dto.Password); err != nil {
		return err
	}
	if strings.TrimSpace(dto.FullName) == "" {
		return internal.NewValidationFieldError("full_name", "full name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return internal.NewValidationFieldError("email", "email is not a valid address", internal.ErrCodeValidationFailed)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}
