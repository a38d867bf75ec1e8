package employee

import (
	"log/slog"
	"time"

	"github.com/workpulse/workpulse/internal"
)

// Repository defines the data access methods for employees.
type Repository interface {
	Create(emp *Employee) error
	GetByID(id int64) (*Employee, error)
	GetByEmail(email string) (*Employee, error)
	GetAll() ([]*Employee, error)
	Update(emp *Employee) error
	UpdateTaskIDs(id int64, taskIDs []int64) error
}

// OpenLogSource reports which employees currently have an open time log.
// Implemented by the timelog repository.
type OpenLogSource interface {
	OpenEmployeeIDs() ([]int64, error)
}

// TaskChecker validates task ids before they are attached to an employee.
// Implemented by the task repository.
type TaskChecker interface {
	TaskExists(id int64) (bool, error)
}

// PasswordHasher hashes plaintext credentials. Implemented by the auth
// service so bcrypt cost lives in one place.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo     Repository
	openLogs OpenLogSource
	tasks    TaskChecker
	hasher   PasswordHasher
	logger   *slog.Logger
}

func NewService(repo Repository, openLogs OpenLogSource, tasks TaskChecker, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		openLogs: openLogs,
		tasks:    tasks,
		hasher:   hasher,
		logger:   logger,
	}
}

func (s *Service) Create(dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, internal.ErrEmailTaken
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to create employee", err)
	}

	now := time.Now()
	emp := &Employee{
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		PasswordHash: hash,
		IsAdmin:      dto.IsAdmin,
		IsActive:     true,
		TaskIDs:      []int64{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(emp); err != nil {
		s.logger.Error("failed to create employee", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("failed to create employee", err)
	}

	s.logger.Info("employee created", "employee_id", emp.ID, "email", emp.Email)
	return emp, nil
}

func (s *Service) GetAll() ([]*Employee, error) {
	return s.repo.GetAll()
}

func (s *Service) GetByID(id int64) (*Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}

func (s *Service) Update(id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}

	if dto.Email != nil && *dto.Email != emp.Email {
		if existing, err := s.repo.GetByEmail(*dto.Email); err == nil && existing != nil {
			return nil, internal.ErrEmailTaken
		}
		emp.Email = *dto.Email
	}
	if dto.FirstName != nil {
		emp.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		emp.LastName = *dto.LastName
	}
	if dto.IsAdmin != nil {
		emp.IsAdmin = *dto.IsAdmin
	}
	emp.UpdatedAt = time.Now()

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, internal.NewInternalError("failed to update employee", err)
	}

	return emp, nil
}

// ToggleStatus flips the active flag. Deactivated employees cannot sign in
// but their records and history remain.
func (s *Service) ToggleStatus(id int64) (*Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}

	emp.IsActive = !emp.IsActive
	emp.UpdatedAt = time.Now()

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to toggle employee status", "error", err, "employee_id", id)
		return nil, internal.NewInternalError("failed to toggle employee status", err)
	}

	s.logger.Info("employee status toggled", "employee_id", id, "is_active", emp.IsActive)
	return emp, nil
}

func (s *Service) AddTask(employeeID, taskID int64) (*Employee, error) {
	emp, err := s.repo.GetByID(employeeID)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}

	exists, err := s.tasks.TaskExists(taskID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up task", err)
	}
	if !exists {
		return nil, internal.ErrTaskNotFound
	}

	emp.AddTask(taskID)
	if err := s.repo.UpdateTaskIDs(employeeID, emp.TaskIDs); err != nil {
		return nil, internal.NewInternalError("failed to update employee tasks", err)
	}
	return emp, nil
}

func (s *Service) RemoveTask(employeeID, taskID int64) (*Employee, error) {
	emp, err := s.repo.GetByID(employeeID)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}

	emp.RemoveTask(taskID)
	if err := s.repo.UpdateTaskIDs(employeeID, emp.TaskIDs); err != nil {
		return nil, internal.NewInternalError("failed to update employee tasks", err)
	}
	return emp, nil
}

// WorkingStatus returns a map of every employee id to whether they have an
// open time log right now.
func (s *Service) WorkingStatus() (WorkingStatus, error) {
	employees, err := s.repo.GetAll()
	if err != nil {
		return nil, internal.NewInternalError("failed to list employees", err)
	}

	openIDs, err := s.openLogs.OpenEmployeeIDs()
	if err != nil {
		return nil, internal.NewInternalError("failed to query open time logs", err)
	}

	open := make(map[int64]bool, len(openIDs))
	for _, id := range openIDs {
		open[id] = true
	}

	status := make(WorkingStatus, len(employees))
	for _, emp := range employees {
		status[emp.ID] = open[emp.ID]
	}
	return status, nil
}
