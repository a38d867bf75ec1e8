package timelog

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/workpulse/workpulse/internal/auth"
	"github.com/workpulse/workpulse/internal/transport"
	"github.com/workpulse/workpulse/pkg/logger"
)

type ServiceAPI interface {
	ClockIn(dto ClockInDTO) (*TimeLog, error)
	ClockOut(id int64) (*TimeLog, error)
	GetByID(id int64) (*TimeLog, error)
	GetByEmployee(employeeID int64) ([]*TimeLog, error)
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

// ClockIn serves POST /timelogs. Without an explicit employee_id the log is
// opened for the authenticated employee.
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	var dto ClockInDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if dto.EmployeeID == 0 {
		emp, ok := auth.EmployeeFromContext(r.Context())
		if !ok || emp == nil {
			h.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		dto.EmployeeID = emp.ID
	}

	log, err := h.Service.ClockIn(dto)
	if err != nil {
		h.Logger.Error("ClockIn: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, log)
}

// ClockOut serves PATCH /timelogs/{id}/clockout.
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid time log ID")
		return
	}

	log, err := h.Service.ClockOut(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, log)
}
