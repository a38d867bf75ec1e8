package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/workpulse/workpulse/internal/task"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(t *task.Task) error {
	if err := r.db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(id int64) (*task.Task, error) {
	var t task.Task
	err := r.db.First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) GetAll() ([]*task.Task, error) {
	var tasks []*task.Task
	if err := r.db.Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByIDs(ids []int64) ([]*task.Task, error) {
	if len(ids) == 0 {
		return []*task.Task{}, nil
	}
	var tasks []*task.Task
	if err := r.db.Where("id IN ?", ids).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks by ids: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByProject(projectID int64) ([]*task.Task, error) {
	var tasks []*task.Task
	if err := r.db.Where("project_id = ?", projectID).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(t *task.Task) error {
	if err := r.db.Save(t).Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(id int64) error {
	if err := r.db.Delete(&task.Task{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) DeleteByProject(projectID int64) error {
	if err := r.db.Where("project_id = ?", projectID).Delete(&task.Task{}).Error; err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}
	return nil
}
