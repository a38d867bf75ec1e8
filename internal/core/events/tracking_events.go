package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeClockedIn          = "timelog.clocked_in"
	EventTypeClockedOut         = "timelog.clocked_out"
	EventTypeScreenshotCaptured = "screenshot.captured"
)

type ClockedInEvent struct {
	BaseEvent
	TimeLogID  int64 `json:"time_log_id"`
	EmployeeID int64 `json:"employee_id"`
}

func NewClockedInEvent(timeLogID, employeeID int64) *ClockedInEvent {
	return &ClockedInEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeClockedIn,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"time_log_id": timeLogID,
				"employee_id": employeeID,
			},
		},
		TimeLogID:  timeLogID,
		EmployeeID: employeeID,
	}
}

type ClockedOutEvent struct {
	BaseEvent
	TimeLogID  int64         `json:"time_log_id"`
	EmployeeID int64         `json:"employee_id"`
	Worked     time.Duration `json:"worked"`
}

func NewClockedOutEvent(timeLogID, employeeID int64, worked time.Duration) *ClockedOutEvent {
	return &ClockedOutEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeClockedOut,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"time_log_id": timeLogID,
				"employee_id": employeeID,
				"worked":      worked.String(),
			},
		},
		TimeLogID:  timeLogID,
		EmployeeID: employeeID,
		Worked:     worked,
	}
}

type ScreenshotCapturedEvent struct {
	BaseEvent
	ScreenshotID int64  `json:"screenshot_id"`
	EmployeeID   int64  `json:"employee_id"`
	TimeLogID    *int64 `json:"time_log_id,omitempty"`
	CloudURL     string `json:"cloud_url"`
}

func NewScreenshotCapturedEvent(screenshotID, employeeID int64, timeLogID *int64, cloudURL string) *ScreenshotCapturedEvent {
	data := map[string]interface{}{
		"screenshot_id": screenshotID,
		"employee_id":   employeeID,
		"cloud_url":     cloudURL,
	}
	if timeLogID != nil {
		data["time_log_id"] = *timeLogID
	}
	return &ScreenshotCapturedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeScreenshotCaptured,
			Timestamp: time.Now(),
			Data:      data,
		},
		ScreenshotID: screenshotID,
		EmployeeID:   employeeID,
		TimeLogID:    timeLogID,
		CloudURL:     cloudURL,
	}
}
