package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnavailable  ErrorType = "UNAVAILABLE"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeEmployeeNotFound ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeProjectNotFound  ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeTaskNotFound     ErrorCode = "TASK_NOT_FOUND"
	ErrCodeTimeLogNotFound  ErrorCode = "TIMELOG_NOT_FOUND"
	ErrCodeEmailTaken       ErrorCode = "EMAIL_TAKEN"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailNotVerified   ErrorCode = "EMAIL_NOT_VERIFIED"
	ErrCodeAccountInactive    ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeNotTaskWorker  ErrorCode = "NOT_TASK_WORKER"
	ErrCodeNotTaskFinisher ErrorCode = "NOT_TASK_FINISHER"
	ErrCodeTimeLogOpen    ErrorCode = "TIMELOG_ALREADY_OPEN"
	ErrCodeTimeLogClosed  ErrorCode = "TIMELOG_ALREADY_CLOSED"

	ErrCodeAddressUnavailable ErrorCode = "ADDRESS_UNAVAILABLE"
	ErrCodeAgentNotRunning    ErrorCode = "AGENT_NOT_RUNNING"
	ErrCodeAgentOffline       ErrorCode = "AGENT_OFFLINE"
	ErrCodeAgentTimeout       ErrorCode = "AGENT_TIMEOUT"
	ErrCodeEmployeeMismatch   ErrorCode = "EMPLOYEE_MISMATCH"
	ErrCodeNoActiveSession    ErrorCode = "NO_ACTIVE_SESSION"
	ErrCodeCaptureDenied      ErrorCode = "CAPTURE_PERMISSION_DENIED"
	ErrCodeUploadFailed       ErrorCode = "UPLOAD_FAILED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches clones produced by WithCause and WithDetails back to the
// sentinel they came from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewUnavailableError covers relay failures where the remote desktop agent
// could not be reached or refused the capture.
func NewUnavailableError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrEmployeeNotFound = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)
	ErrProjectNotFound  = NewNotFoundError("Project not found", ErrCodeProjectNotFound)
	ErrTaskNotFound     = NewNotFoundError("Task not found", ErrCodeTaskNotFound)
	ErrTimeLogNotFound  = NewNotFoundError("Time log not found", ErrCodeTimeLogNotFound)
	ErrEmailTaken       = NewConflictError("An employee with this email already exists", ErrCodeEmailTaken)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrEmailNotVerified   = NewForbiddenError("Email address has not been verified", ErrCodeEmailNotVerified)
	ErrAccountInactive    = NewForbiddenError("Employee account is deactivated", ErrCodeAccountInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrNotTaskWorker   = NewForbiddenError("Only an employee who worked on this task may complete it", ErrCodeNotTaskWorker)
	ErrNotTaskFinisher = NewForbiddenError("Only the employee who completed this task may reopen it", ErrCodeNotTaskFinisher)
	ErrTimeLogOpen     = NewConflictError("Employee already has an open time log", ErrCodeTimeLogOpen)
	ErrTimeLogClosed   = NewConflictError("Time log is already clocked out", ErrCodeTimeLogClosed)

	ErrAddressUnavailable = NewNotFoundError("No known address for this employee; they must sign in again", ErrCodeAddressUnavailable)
	ErrAgentNotRunning    = NewUnavailableError("Desktop app is not running on the employee's machine", ErrCodeAgentNotRunning)
	ErrAgentOffline       = NewUnavailableError("Employee's machine is offline or unreachable", ErrCodeAgentOffline)
	ErrAgentTimeout       = NewUnavailableError("Screenshot request to the desktop app timed out", ErrCodeAgentTimeout)
	ErrEmployeeMismatch   = NewForbiddenError("A different employee is signed in on that machine", ErrCodeEmployeeMismatch)
	ErrNoActiveSession    = NewUnavailableError("No employee is signed in on that machine", ErrCodeNoActiveSession)
	ErrCaptureDenied      = NewForbiddenError("Screen capture permission denied by the operating system", ErrCodeCaptureDenied)
	ErrUploadFailed       = &AppError{Type: ErrorTypeExternal, Code: ErrCodeUploadFailed, Message: "Screenshot captured but upload to storage failed", StatusCode: http.StatusBadGateway}
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
