package project

import (
	"log/slog"
	"time"

	"github.com/workpulse/workpulse/internal"
)

// Repository defines the data access methods for projects.
type Repository interface {
	Create(p *Project) error
	GetByID(id int64) (*Project, error)
	GetAll() ([]*Project, error)
	Update(p *Project) error
	Delete(id int64) error
	UpdateTaskIDs(id int64, taskIDs []int64) error
}

// TaskGraph is the slice of the task service the cascade needs: deleting a
// project must drop every task owned by it, including every employee-side
// reference to those tasks. Implemented by the task service.
type TaskGraph interface {
	CascadeDeleteForProject(projectID int64) error
}

type Service struct {
	repo   Repository
	tasks  TaskGraph
	logger *slog.Logger
}

func NewService(repo Repository, tasks TaskGraph, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tasks:  tasks,
		logger: logger,
	}
}

func (s *Service) Create(dto CreateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Project{
		Name:        dto.Name,
		Description: dto.Description,
		TaskIDs:     []int64{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create project", "error", err)
		return nil, internal.NewInternalError("failed to create project", err)
	}

	s.logger.Info("project created", "project_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) GetAll() ([]*Project, error) {
	return s.repo.GetAll()
}

func (s *Service) GetByID(id int64) (*Project, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrProjectNotFound
	}
	return p, nil
}

func (s *Service) Update(id int64, dto UpdateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrProjectNotFound
	}

	if dto.Name != nil {
		p.Name = *dto.Name
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(p); err != nil {
		s.logger.Error("failed to update project", "error", err, "project_id", id)
		return nil, internal.NewInternalError("failed to update project", err)
	}

	return p, nil
}

// Delete removes a project and cascades to its tasks. The task side runs
// first so a failure there leaves the project (and its task list) intact.
func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrProjectNotFound
	}

	if err := s.tasks.CascadeDeleteForProject(id); err != nil {
		s.logger.Error("cascade task deletion failed", "error", err, "project_id", id)
		return internal.NewInternalError("failed to delete project tasks", err)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete project", "error", err, "project_id", id)
		return internal.NewInternalError("failed to delete project", err)
	}

	s.logger.Info("project deleted", "project_id", id)
	return nil
}
