package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/workpulse/workpulse/internal/screenshot"
)

type ScreenshotRepository struct {
	db *gorm.DB
}

func NewScreenshotRepository(db *gorm.DB) *ScreenshotRepository {
	return &ScreenshotRepository{db: db}
}

func (r *ScreenshotRepository) Create(s *screenshot.Screenshot) error {
	if err := r.db.Create(s).Error; err != nil {
		return fmt.Errorf("failed to create screenshot record: %w", err)
	}
	return nil
}

func (r *ScreenshotRepository) GetByEmployee(employeeID int64) ([]*screenshot.Screenshot, error) {
	var shots []*screenshot.Screenshot
	err := r.db.Where("employee_id = ?", employeeID).Order("created_at DESC").Find(&shots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list screenshots: %w", err)
	}
	return shots, nil
}
