package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/workpulse/workpulse/internal/employee"
)

// EmployeeRepository implements the employee.Repository interface using GORM
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(emp *employee.Employee) error {
	return r.db.Create(emp).Error
}

func (r *EmployeeRepository) GetByID(id int64) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.Where("id = ?", id).First(&emp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) GetByEmail(email string) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.Where("email = ?", email).First(&emp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) GetAll() ([]*employee.Employee, error) {
	var employees []*employee.Employee
	err := r.db.Order("created_at ASC").Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) Update(emp *employee.Employee) error {
	emp.UpdatedAt = time.Now()
	return r.db.Save(emp).Error
}

func (r *EmployeeRepository) GetTaskIDs(id int64) ([]int64, error) {
	emp, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	return emp.TaskIDs, nil
}

func (r *EmployeeRepository) UpdateTaskIDs(id int64, taskIDs []int64) error {
	return r.db.Model(&employee.Employee{ID: id}).
		Select("task_ids", "updated_at").
		Updates(employee.Employee{TaskIDs: taskIDs, UpdatedAt: time.Now()}).Error
}
