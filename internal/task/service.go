package task

import (
	"log/slog"
	"time"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/core/idset"
)

// Repository defines the data access methods for tasks.
type Repository interface {
	Create(t *Task) error
	GetByID(id int64) (*Task, error)
	GetAll() ([]*Task, error)
	GetByIDs(ids []int64) ([]*Task, error)
	GetByProject(projectID int64) ([]*Task, error)
	Update(t *Task) error
	Delete(id int64) error
	DeleteByProject(projectID int64) error
}

// EmployeeSync is the employee side of the assignment relationship.
// Implemented by the employee repository.
type EmployeeSync interface {
	GetTaskIDs(employeeID int64) ([]int64, error)
	UpdateTaskIDs(employeeID int64, taskIDs []int64) error
}

// ProjectSync keeps the owning project's task list in step.
// Implemented by the project repository.
type ProjectSync interface {
	GetTaskIDs(projectID int64) ([]int64, error)
	UpdateTaskIDs(projectID int64, taskIDs []int64) error
}

type Service struct {
	repo      Repository
	employees EmployeeSync
	projects  ProjectSync
	logger    *slog.Logger
}

func NewService(repo Repository, employees EmployeeSync, projects ProjectSync, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		projects:  projects,
		logger:    logger,
	}
}

func (s *Service) Create(dto CreateTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	projectTasks, err := s.projects.GetTaskIDs(dto.ProjectID)
	if err != nil {
		return nil, internal.ErrProjectNotFound
	}

	now := time.Now()
	t := &Task{
		ProjectID:   dto.ProjectID,
		Name:        dto.Name,
		Description: dto.Description,
		EmployeeIDs: dto.EmployeeIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.EmployeeIDs == nil {
		t.EmployeeIDs = []int64{}
	}
	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create task", "error", err)
		return nil, internal.NewInternalError("failed to create task", err)
	}

	if err := s.projects.UpdateTaskIDs(dto.ProjectID, idset.Add(projectTasks, t.ID)); err != nil {
		s.logger.Error("failed to attach task to project", "error", err, "task_id", t.ID, "project_id", dto.ProjectID)
	}

	if err := s.syncEmployees(t.ID, nil, t.EmployeeIDs); err != nil {
		s.logger.Error("failed to sync employee task sets", "error", err, "task_id", t.ID)
	}

	s.logger.Info("task created", "task_id", t.ID, "project_id", t.ProjectID)
	return t, nil
}

func (s *Service) GetAll() ([]*Task, error) {
	return s.repo.GetAll()
}

func (s *Service) GetByID(id int64) (*Task, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}
	return t, nil
}

// GetForEmployee resolves the employee's task-id set into task records.
func (s *Service) GetForEmployee(employeeID int64) ([]*Task, error) {
	taskIDs, err := s.employees.GetTaskIDs(employeeID)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}
	if len(taskIDs) == 0 {
		return []*Task{}, nil
	}
	return s.repo.GetByIDs(taskIDs)
}

func (s *Service) Update(id int64, dto UpdateTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}

	if dto.Name != nil {
		t.Name = *dto.Name
	}
	if dto.Description != nil {
		t.Description = *dto.Description
	}

	var prev []int64
	if dto.EmployeeIDs != nil {
		prev = t.EmployeeIDs
		t.EmployeeIDs = *dto.EmployeeIDs
		if t.EmployeeIDs == nil {
			t.EmployeeIDs = []int64{}
		}
	}
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to update task", "error", err, "task_id", id)
		return nil, internal.NewInternalError("failed to update task", err)
	}

	if dto.EmployeeIDs != nil {
		if err := s.syncEmployees(t.ID, prev, t.EmployeeIDs); err != nil {
			s.logger.Error("failed to sync employee task sets", "error", err, "task_id", t.ID)
		}
	}

	return t, nil
}

// AssignEmployees replaces the task's assigned set and mirrors the change
// onto each affected employee's task-id array.
func (s *Service) AssignEmployees(id int64, employeeIDs []int64) (*Task, error) {
	next := employeeIDs
	if next == nil {
		next = []int64{}
	}
	return s.Update(id, UpdateTaskDTO{EmployeeIDs: &next})
}

// Complete marks the task done. Only an employee who worked on the task may
// complete it.
func (s *Service) Complete(id, actingEmployeeID int64) (*Task, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}

	if !t.WorkedOnBy(actingEmployeeID) {
		s.logger.Warn("complete denied: employee did not work on task", "task_id", id, "employee_id", actingEmployeeID)
		return nil, internal.ErrNotTaskWorker
	}
	if t.IsCompleted {
		return t, nil
	}

	t.Complete(actingEmployeeID)
	if err := s.repo.Update(t); err != nil {
		return nil, internal.NewInternalError("failed to complete task", err)
	}

	s.logger.Info("task completed", "task_id", id, "employee_id", actingEmployeeID)
	return t, nil
}

// Uncomplete reopens the task. Only the employee who completed it may undo
// the completion.
func (s *Service) Uncomplete(id, actingEmployeeID int64) (*Task, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}

	if !t.IsCompleted {
		return t, nil
	}
	if t.CompletedBy == nil || *t.CompletedBy != actingEmployeeID {
		s.logger.Warn("uncomplete denied: employee did not complete task", "task_id", id, "employee_id", actingEmployeeID)
		return nil, internal.ErrNotTaskFinisher
	}

	t.Uncomplete()
	if err := s.repo.Update(t); err != nil {
		return nil, internal.NewInternalError("failed to reopen task", err)
	}

	s.logger.Info("task reopened", "task_id", id, "employee_id", actingEmployeeID)
	return t, nil
}

func (s *Service) Delete(id int64) error {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrTaskNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete task", "error", err, "task_id", id)
		return internal.NewInternalError("failed to delete task", err)
	}

	if projectTasks, perr := s.projects.GetTaskIDs(t.ProjectID); perr == nil {
		if err := s.projects.UpdateTaskIDs(t.ProjectID, idset.Remove(projectTasks, id)); err != nil {
			s.logger.Error("failed to detach task from project", "error", err, "task_id", id)
		}
	}

	if err := s.syncEmployees(id, t.EmployeeIDs, nil); err != nil {
		s.logger.Error("failed to sync employee task sets", "error", err, "task_id", id)
	}

	s.logger.Info("task deleted", "task_id", id)
	return nil
}

// CascadeDeleteForProject removes every task owned by the project and scrubs
// their ids from the affected employees. Called by the project service while
// deleting the project itself.
func (s *Service) CascadeDeleteForProject(projectID int64) error {
	tasks, err := s.repo.GetByProject(projectID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByProject(projectID); err != nil {
		return err
	}

	for _, t := range tasks {
		if err := s.syncEmployees(t.ID, t.EmployeeIDs, nil); err != nil {
			s.logger.Error("cascade: failed to sync employee task sets", "error", err, "task_id", t.ID)
		}
	}

	s.logger.Info("cascade deleted tasks", "project_id", projectID, "count", len(tasks))
	return nil
}

// TaskExists is used by the employee service before attaching a task id.
func (s *Service) TaskExists(id int64) (bool, error) {
	_, err := s.repo.GetByID(id)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// syncEmployees applies the symmetric difference between the previous and
// next assigned sets to each affected employee's task-id array. A failed
// employee update is logged and the rest proceed; no transaction wraps the
// batch, so a partial failure leaves that one employee out of step until the
// next assignment touches them.
func (s *Service) syncEmployees(taskID int64, prev, next []int64) error {
	added, removed := idset.Diff(prev, next)

	var firstErr error
	for _, employeeID := range added {
		taskIDs, err := s.employees.GetTaskIDs(employeeID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.employees.UpdateTaskIDs(employeeID, idset.Add(taskIDs, taskID)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, employeeID := range removed {
		taskIDs, err := s.employees.GetTaskIDs(employeeID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.employees.UpdateTaskIDs(employeeID, idset.Remove(taskIDs, taskID)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
