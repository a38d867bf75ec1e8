package screenshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/core/events"
	"github.com/workpulse/workpulse/internal/employee"
	"github.com/workpulse/workpulse/internal/storage"
	"github.com/workpulse/workpulse/internal/timelog"
)

type Repository interface {
	Create(s *Screenshot) error
	GetByEmployee(employeeID int64) ([]*Screenshot, error)
}

// EmployeeDirectory resolves the target employee and their last-known
// network address.
type EmployeeDirectory interface {
	GetByID(id int64) (*employee.Employee, error)
}

// TimeLogLedger links captured screenshots to the employee's open session.
type TimeLogLedger interface {
	GetOpenByEmployee(employeeID int64) (*timelog.TimeLog, error)
	AttachScreenshot(timeLogID, screenshotID int64) error
}

type Service struct {
	repo      Repository
	directory EmployeeDirectory
	ledger    TimeLogLedger
	relay     Relay
	uploader  storage.Uploader
	bus       *events.EventBus
	maxFanOut int
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	directory EmployeeDirectory,
	ledger TimeLogLedger,
	relay Relay,
	uploader storage.Uploader,
	bus *events.EventBus,
	maxFanOut int,
	logger *slog.Logger,
) *Service {
	if maxFanOut <= 0 {
		maxFanOut = internal.DefaultMaxFanOut
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = events.NewEventBus(logger)
	}
	return &Service{
		repo:      repo,
		directory: directory,
		ledger:    ledger,
		relay:     relay,
		uploader:  uploader,
		bus:       bus,
		maxFanOut: maxFanOut,
		logger:    logger,
	}
}

// Capture relays a capture request to one employee's desktop agent and
// records the result. An employee with no stored address fails immediately
// with AddressUnavailable and no network call is made.
func (s *Service) Capture(ctx context.Context, employeeID int64, timeLogID *int64) (*Screenshot, error) {
	emp, err := s.directory.GetByID(employeeID)
	if err != nil {
		return nil, err
	}
	if emp.LastKnownIP == "" {
		return nil, internal.ErrAddressUnavailable
	}

	data, err := s.relay.RequestCapture(ctx, emp.LastKnownIP, employeeID)
	if err != nil {
		s.logger.Warn("screenshot relay failed",
			"employee_id", employeeID,
			"address", emp.LastKnownIP,
			"error", err,
		)
		return nil, err
	}

	return s.store(ctx, employeeID, timeLogID, data)
}

// CaptureMany relays captures to several employees concurrently, bounded by
// the fan-out cap. Every employee gets an outcome; a failure for one never
// aborts the rest.
func (s *Service) CaptureMany(ctx context.Context, employeeIDs []int64, timeLogID *int64) *BatchResult {
	outcomes := make([]CaptureOutcome, len(employeeIDs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxFanOut)
	for i, id := range employeeIDs {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			shot, err := s.Capture(ctx, id, timeLogID)
			if err != nil {
				outcomes[i] = CaptureOutcome{EmployeeID: id, Success: false, Error: outcomeMessage(err)}
				return
			}
			outcomes[i] = CaptureOutcome{EmployeeID: id, Success: true, Screenshot: shot}
		}(i, id)
	}
	wg.Wait()

	result := &BatchResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	s.logger.Info("batch screenshot capture finished",
		"requested", len(employeeIDs),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result
}

// Ingest persists an image the agent captured and uploaded on its own,
// on the automatic capture interval.
func (s *Service) Ingest(ctx context.Context, employeeID int64, timeLogID *int64, data []byte) (*Screenshot, error) {
	if _, err := s.directory.GetByID(employeeID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, internal.NewValidationError("screenshot file is empty", internal.ErrCodeValidationFailed)
	}
	return s.store(ctx, employeeID, timeLogID, data)
}

func (s *Service) GetByEmployee(employeeID int64) ([]*Screenshot, error) {
	if _, err := s.directory.GetByID(employeeID); err != nil {
		return nil, err
	}
	shots, err := s.repo.GetByEmployee(employeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list screenshots", err)
	}
	return shots, nil
}

// store optimizes, uploads, and persists one captured image, then links it
// to the employee's open time log when there is one.
func (s *Service) store(ctx context.Context, employeeID int64, timeLogID *int64, data []byte) (*Screenshot, error) {
	processed, err := Process(data)
	if err != nil {
		return nil, internal.NewInternalError("agent returned an unreadable image", err)
	}

	key := fmt.Sprintf("%d/%s.%s", employeeID, uuid.New().String(), extension(processed.Format))
	uploaded, err := s.uploader.Upload(ctx, key, processed.ContentType, processed.Data)
	if err != nil {
		s.logger.Error("screenshot upload failed", "employee_id", employeeID, "error", err)
		return nil, internal.ErrUploadFailed.WithCause(err)
	}

	if timeLogID == nil {
		open, err := s.ledger.GetOpenByEmployee(employeeID)
		if err == nil && open != nil {
			timeLogID = &open.ID
		}
	}

	shot := &Screenshot{
		EmployeeID:        employeeID,
		TimeLogID:         timeLogID,
		CloudURL:          uploaded.URL,
		AssetID:           uploaded.Key,
		FileSize:          uploaded.Size,
		Width:             processed.Width,
		Height:            processed.Height,
		Format:            processed.Format,
		CompressionRatio:  processed.CompressionRatio,
		PermissionGranted: true,
	}
	if err := s.repo.Create(shot); err != nil {
		return nil, internal.NewInternalError("failed to persist screenshot record", err)
	}

	if timeLogID != nil {
		if err := s.ledger.AttachScreenshot(*timeLogID, shot.ID); err != nil {
			s.logger.Warn("failed to link screenshot to time log",
				"screenshot_id", shot.ID,
				"time_log_id", *timeLogID,
				"error", err,
			)
		}
	}

	s.logger.Info("screenshot stored",
		"employee_id", employeeID,
		"screenshot_id", shot.ID,
		"size", shot.FileSize,
		"format", shot.Format,
	)
	s.bus.Publish(ctx, events.NewScreenshotCapturedEvent(shot.ID, employeeID, timeLogID, shot.CloudURL))
	return shot, nil
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

func outcomeMessage(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
