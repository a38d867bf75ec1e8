package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/workpulse/workpulse/internal/project"
)

// ProjectRepository implements the project.Repository interface using GORM
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(p *project.Project) error {
	return r.db.Create(p).Error
}

func (r *ProjectRepository) GetByID(id int64) (*project.Project, error) {
	var p project.Project
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) GetAll() ([]*project.Project, error) {
	var projects []*project.Project
	err := r.db.Order("created_at ASC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(p *project.Project) error {
	p.UpdatedAt = time.Now()
	return r.db.Save(p).Error
}

func (r *ProjectRepository) Delete(id int64) error {
	return r.db.Delete(&project.Project{}, id).Error
}

func (r *ProjectRepository) GetTaskIDs(id int64) ([]int64, error) {
	p, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	return p.TaskIDs, nil
}

func (r *ProjectRepository) UpdateTaskIDs(id int64, taskIDs []int64) error {
	return r.db.Model(&project.Project{ID: id}).
		Select("task_ids", "updated_at").
		Updates(project.Project{TaskIDs: taskIDs, UpdatedAt: time.Now()}).Error
}
