package screenshot

import (
	"time"
)

// Screenshot is the metadata record of one captured and uploaded screen
// image. Records are written once on successful upload and never mutated.
type Screenshot struct {
	ID                int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID        int64     `json:"employee_id" gorm:"not null;index"`
	TimeLogID         *int64    `json:"time_log_id" gorm:"index"`
	LocalPath         string    `json:"local_path"`
	CloudURL          string    `json:"cloud_url"`
	AssetID           string    `json:"asset_id"`
	FileSize          int64     `json:"file_size"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	Format            string    `json:"format"`
	CompressionRatio  float64   `json:"compression_ratio"`
	PermissionGranted bool      `json:"permission_granted"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Screenshot) TableName() string {
	return "screenshots"
}
