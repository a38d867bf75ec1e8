package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/workpulse/workpulse/internal"
)

// AgentKeyHeader authenticates the agent's uploads to the backend.
const AgentKeyHeader = "X-Agent-Key"

// AutoCapture periodically captures the screen while an employee session
// is bound and uploads the image to the backend. Upload failures are
// logged and the loop keeps going; captures are best-effort.
type AutoCapture struct {
	session   *Session
	capturer  Capturer
	client    *http.Client
	serverURL string
	apiKey    string
	interval  time.Duration
	logger    *slog.Logger
}

func NewAutoCapture(session *Session, capturer Capturer, cfg internal.AgentConfig, logger *slog.Logger) *AutoCapture {
	interval := cfg.CaptureInterval
	if interval <= 0 {
		interval = internal.DefaultCaptureInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoCapture{
		session:   session,
		capturer:  capturer,
		client:    &http.Client{Timeout: cfg.RelayTimeout},
		serverURL: strings.TrimRight(cfg.ServerURL, "/"),
		apiKey:    cfg.APIKey,
		interval:  interval,
		logger:    logger,
	}
}

// Run blocks until the context is cancelled, capturing on a fixed interval
// whenever a session is bound.
func (a *AutoCapture) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *AutoCapture) tick(ctx context.Context) {
	employeeID, bound := a.session.Current()
	if !bound {
		return
	}

	data, err := a.capturer.Capture()
	if err != nil {
		a.logger.Warn("automatic capture failed", "employee_id", employeeID, "error", err)
		return
	}

	if err := a.upload(ctx, employeeID, a.session.TimeLogID(), data); err != nil {
		a.logger.Warn("automatic capture upload failed", "employee_id", employeeID, "error", err)
		return
	}
	a.logger.Info("automatic capture uploaded", "employee_id", employeeID, "size", len(data))
}

func (a *AutoCapture) upload(ctx context.Context, employeeID int64, timeLogID *int64, data []byte) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("employee_id", strconv.FormatInt(employeeID, 10)); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if timeLogID != nil {
		if err := mw.WriteField("time_log_id", strconv.FormatInt(*timeLogID, 10)); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}

	fw, err := mw.CreateFormFile("screenshot", "capture.png")
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write screenshot data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := a.serverURL + "/api/v1/screenshots"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(AgentKeyHeader, a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("backend rejected upload: status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
