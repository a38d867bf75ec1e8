package timelog

import (
	"context"
	"log/slog"
	"time"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/core/events"
	"github.com/workpulse/workpulse/internal/core/idset"
)

type Repository interface {
	Create(log *TimeLog) error
	GetByID(id int64) (*TimeLog, error)
	GetByEmployee(employeeID int64) ([]*TimeLog, error)
	GetOpenByEmployee(employeeID int64) (*TimeLog, error)
	OpenEmployeeIDs() ([]int64, error)
	Update(log *TimeLog) error
}

// EmployeeChecker verifies an employee exists before a log is attached to it.
type EmployeeChecker interface {
	EmployeeExists(id int64) (bool, error)
}

type Service struct {
	repo      Repository
	employees EmployeeChecker
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(repo Repository, employees EmployeeChecker, bus *events.EventBus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = events.NewEventBus(logger)
	}
	return &Service{
		repo:      repo,
		employees: employees,
		bus:       bus,
		logger:    logger,
	}
}

// ClockIn opens a new time log. An employee may hold at most one open log;
// a second clock-in is rejected as a conflict.
func (s *Service) ClockIn(dto ClockInDTO) (*TimeLog, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.employees.EmployeeExists(dto.EmployeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up employee", err)
	}
	if !exists {
		return nil, internal.ErrEmployeeNotFound
	}

	open, err := s.repo.GetOpenByEmployee(dto.EmployeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check open time logs", err)
	}
	if open != nil {
		return nil, internal.ErrTimeLogOpen
	}

	log := &TimeLog{
		EmployeeID:    dto.EmployeeID,
		ClockIn:       time.Now(),
		TaskIDs:       dto.TaskIDs,
		ScreenshotIDs: []int64{},
	}
	if err := s.repo.Create(log); err != nil {
		return nil, internal.NewInternalError("failed to create time log", err)
	}

	s.logger.Info("employee clocked in", "employee_id", log.EmployeeID, "time_log_id", log.ID)
	s.bus.Publish(context.Background(), events.NewClockedInEvent(log.ID, log.EmployeeID))
	return log, nil
}

// ClockOut closes an open time log. Closing an already-closed log is a
// conflict, not a no-op, so double submissions surface to the caller.
func (s *Service) ClockOut(id int64) (*TimeLog, error) {
	log, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get time log", err)
	}
	if log == nil {
		return nil, internal.ErrTimeLogNotFound
	}
	if !log.IsOpen() {
		return nil, internal.ErrTimeLogClosed
	}

	now := time.Now()
	log.ClockOut = &now
	if err := s.repo.Update(log); err != nil {
		return nil, internal.NewInternalError("failed to close time log", err)
	}

	s.logger.Info("employee clocked out",
		"employee_id", log.EmployeeID,
		"time_log_id", log.ID,
		"duration", log.Duration().Round(time.Second).String(),
	)
	s.bus.Publish(context.Background(), events.NewClockedOutEvent(log.ID, log.EmployeeID, log.Duration()))
	return log, nil
}

func (s *Service) GetByID(id int64) (*TimeLog, error) {
	log, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get time log", err)
	}
	if log == nil {
		return nil, internal.ErrTimeLogNotFound
	}
	return log, nil
}

func (s *Service) GetByEmployee(employeeID int64) ([]*TimeLog, error) {
	logs, err := s.repo.GetByEmployee(employeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list time logs", err)
	}
	return logs, nil
}

// GetOpenByEmployee returns the employee's open log, or nil when they are
// not clocked in.
func (s *Service) GetOpenByEmployee(employeeID int64) (*TimeLog, error) {
	log, err := s.repo.GetOpenByEmployee(employeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get open time log", err)
	}
	return log, nil
}

// OpenEmployeeIDs reports which employees currently hold an open log. It
// backs the working-status endpoint.
func (s *Service) OpenEmployeeIDs() ([]int64, error) {
	ids, err := s.repo.OpenEmployeeIDs()
	if err != nil {
		return nil, internal.NewInternalError("failed to list open time logs", err)
	}
	return ids, nil
}

// AttachScreenshot appends a screenshot id to a log. Missing logs are
// logged and ignored so a capture never fails after the image is stored.
func (s *Service) AttachScreenshot(timeLogID, screenshotID int64) error {
	log, err := s.repo.GetByID(timeLogID)
	if err != nil {
		return internal.NewInternalError("failed to get time log", err)
	}
	if log == nil {
		s.logger.Warn("screenshot captured for unknown time log", "time_log_id", timeLogID, "screenshot_id", screenshotID)
		return nil
	}

	log.ScreenshotIDs = idset.Add(log.ScreenshotIDs, screenshotID)
	if err := s.repo.Update(log); err != nil {
		return internal.NewInternalError("failed to attach screenshot to time log", err)
	}
	return nil
}
