package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/workpulse/workpulse/internal"
)

// Server is the agent's local HTTP listener. The backend relays admin
// screenshot requests to it; the local UI binds and clears the signed-in
// employee through it.
type Server struct {
	session  *Session
	capturer Capturer
	logger   *slog.Logger
}

func NewServer(session *Session, capturer Capturer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		session:  session,
		capturer: capturer,
		logger:   logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.Health)
	r.Post("/screenshot", s.Screenshot)
	r.Post("/set-employee", s.SetEmployee)
	r.Delete("/set-employee", s.ClearEmployee)
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	_, bound := s.session.Current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"session_active": bound,
	})
}

type screenshotRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

// Screenshot handles an admin-relayed capture request. The target employee
// id must match the one signed in locally.
func (s *Server) Screenshot(w http.ResponseWriter, r *http.Request) {
	var req screenshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAgentError(w, http.StatusBadRequest, internal.ErrCodeValidationFailed, "invalid request body")
		return
	}

	current, bound := s.session.Current()
	if !bound {
		writeAgentError(w, http.StatusConflict, internal.ErrCodeNoActiveSession, "no employee is signed in on this machine")
		return
	}
	if current != req.EmployeeID {
		s.logger.Warn("capture request for wrong employee", "requested", req.EmployeeID, "signed_in", current)
		writeAgentError(w, http.StatusForbidden, internal.ErrCodeEmployeeMismatch, "a different employee is signed in on this machine")
		return
	}

	data, err := s.capturer.Capture()
	if err != nil {
		s.logger.Error("screen capture failed", "error", err)
		writeAgentError(w, http.StatusForbidden, internal.ErrCodeCaptureDenied, "screen capture permission denied by the operating system")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write capture response", "error", err)
	}
}

type setEmployeeRequest struct {
	EmployeeID int64  `json:"employee_id"`
	TimeLogID  *int64 `json:"time_log_id"`
}

func (s *Server) SetEmployee(w http.ResponseWriter, r *http.Request) {
	var req setEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAgentError(w, http.StatusBadRequest, internal.ErrCodeValidationFailed, "invalid request body")
		return
	}
	if req.EmployeeID <= 0 {
		writeAgentError(w, http.StatusBadRequest, internal.ErrCodeValidationFailed, "employee_id is required")
		return
	}

	s.session.Bind(req.EmployeeID, req.TimeLogID)
	s.logger.Info("session bound", "employee_id", req.EmployeeID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "employee bound"})
}

func (s *Server) ClearEmployee(w http.ResponseWriter, r *http.Request) {
	s.session.Clear()
	s.logger.Info("session cleared")
	writeJSON(w, http.StatusOK, map[string]string{"message": "employee cleared"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAgentError(w http.ResponseWriter, status int, code internal.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  string(code),
	})
}
