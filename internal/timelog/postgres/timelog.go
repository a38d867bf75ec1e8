package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/workpulse/workpulse/internal/timelog"
)

type TimeLogRepository struct {
	db *gorm.DB
}

func NewTimeLogRepository(db *gorm.DB) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

func (r *TimeLogRepository) Create(log *timelog.TimeLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return fmt.Errorf("failed to create time log: %w", err)
	}
	return nil
}

func (r *TimeLogRepository) GetByID(id int64) (*timelog.TimeLog, error) {
	var log timelog.TimeLog
	err := r.db.First(&log, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get time log: %w", err)
	}
	return &log, nil
}

func (r *TimeLogRepository) GetByEmployee(employeeID int64) ([]*timelog.TimeLog, error) {
	var logs []*timelog.TimeLog
	err := r.db.Where("employee_id = ?", employeeID).Order("clock_in DESC").Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list time logs: %w", err)
	}
	return logs, nil
}

func (r *TimeLogRepository) GetOpenByEmployee(employeeID int64) (*timelog.TimeLog, error) {
	var log timelog.TimeLog
	err := r.db.Where("employee_id = ? AND clock_out IS NULL", employeeID).
		Order("clock_in DESC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open time log: %w", err)
	}
	return &log, nil
}

func (r *TimeLogRepository) OpenEmployeeIDs() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&timelog.TimeLog{}).
		Where("clock_out IS NULL").
		Distinct().
		Pluck("employee_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open time log employees: %w", err)
	}
	return ids, nil
}

func (r *TimeLogRepository) Update(log *timelog.TimeLog) error {
	if err := r.db.Save(log).Error; err != nil {
		return fmt.Errorf("failed to update time log: %w", err)
	}
	return nil
}
