package screenshot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/workpulse/workpulse/internal/transport"
	"github.com/workpulse/workpulse/pkg/logger"
)

// maxUploadBytes caps multipart screenshot uploads at 20 MiB.
const maxUploadBytes = 20 << 20

type ServiceAPI interface {
	Capture(ctx context.Context, employeeID int64, timeLogID *int64) (*Screenshot, error)
	CaptureMany(ctx context.Context, employeeIDs []int64, timeLogID *int64) *BatchResult
	Ingest(ctx context.Context, employeeID int64, timeLogID *int64, data []byte) (*Screenshot, error)
	GetByEmployee(employeeID int64) ([]*Screenshot, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Capture serves POST /screenshots/capture, the admin-initiated relay.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	var dto CaptureRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.EmployeeID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "employee_id is required")
		return
	}

	shot, err := h.Service.Capture(r.Context(), dto.EmployeeID, dto.TimeLogID)
	if err != nil {
		h.Logger.Error("Capture: relay failed", "employee_id", dto.EmployeeID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, shot)
}

// CaptureBatch serves POST /screenshots/capture-batch. The response is
// always 200 with per-employee outcomes; partial failure is data, not an
// HTTP error.
func (h *Handler) CaptureBatch(w http.ResponseWriter, r *http.Request) {
	var dto BatchCaptureRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(dto.EmployeeIDs) == 0 {
		h.WriteError(w, http.StatusBadRequest, "employee_ids is required")
		return
	}

	result := h.Service.CaptureMany(r.Context(), dto.EmployeeIDs, dto.TimeLogID)
	h.WriteJSON(w, http.StatusOK, result)
}

// Upload serves POST /screenshots, the agent's multipart upload path.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	employeeID, err := strconv.ParseInt(r.FormValue("employee_id"), 10, 64)
	if err != nil || employeeID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "employee_id is required")
		return
	}

	var timeLogID *int64
	if raw := r.FormValue("time_log_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid time_log_id")
			return
		}
		timeLogID = &id
	}

	file, _, err := r.FormFile("screenshot")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "screenshot file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "failed to read screenshot file")
		return
	}

	shot, err := h.Service.Ingest(r.Context(), employeeID, timeLogID, data)
	if err != nil {
		h.Logger.Error("Upload: ingest failed", "employee_id", employeeID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, shot)
}

// GetEmployeeScreenshots serves GET /employees/{id}/screenshots.
func (h *Handler) GetEmployeeScreenshots(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}

	shots, err := h.Service.GetByEmployee(employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"screenshots": shots})
}
