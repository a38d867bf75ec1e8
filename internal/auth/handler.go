package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/employee"
	"github.com/workpulse/workpulse/internal/transport"
	"github.com/workpulse/workpulse/pkg/logger"
)

type ServiceAPI interface {
	SignUp(ctx context.Context, dto SignUpDTO) (*employee.Employee, error)
	SignIn(dto SignInDTO, remoteIP string) (AuthTokens, *employee.Employee, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	VerifyEmail(token string) error
	RequestPasswordReset(ctx context.Context, dto ForgotPasswordDTO) error
	ResetPassword(token string, dto ResetPasswordDTO) error
	SendActivationEmail(ctx context.Context, dto SendActivationDTO) error
	VerifyActivationToken(token string) ActivationStatus
	ActivateAccount(token string, dto ActivateAccountDTO) (*employee.Employee, error)
	CurrentEmployeeByID(id int64) (*CurrentEmployee, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var dto SignUpDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, err := h.Service.SignUp(r.Context(), dto)
	if err != nil {
		h.Logger.Error("SignUp: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"employee": emp,
		"message":  "account created, please verify your email address",
	})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var dto SignInDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, emp, err := h.Service.SignIn(dto, remoteIP(r))
	if err != nil {
		h.Logger.Warn("SignIn: rejected", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tokens":   tokens,
		"employee": emp,
	})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("RefreshToken: rejected", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.Service.VerifyEmail(token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.RequestPasswordReset(r.Context(), dto); err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeValidation {
			h.HandleServiceError(w, err)
			return
		}
		h.Logger.Error("ForgotPassword: service error", "error", err)
	}

	// same response whether or not the email exists
	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "if that email is registered, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ResetPassword(token, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) SendActivationEmail(w http.ResponseWriter, r *http.Request) {
	var dto SendActivationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.SendActivationEmail(r.Context(), dto); err != nil {
		h.Logger.Error("SendActivationEmail: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "invitation sent"})
}

func (h *Handler) VerifyActivationToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	h.WriteJSON(w, http.StatusOK, h.Service.VerifyActivationToken(token))
}

func (h *Handler) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var dto ActivateAccountDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, err := h.Service.ActivateAccount(token, dto)
	if err != nil {
		h.Logger.Error("ActivateAccount: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"employee": emp,
		"message":  "account activated",
	})
}

// AuthMiddleware validates the bearer token and loads the employee identity
// into the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		current, err := h.Service.CurrentEmployeeByID(claims.EmployeeID)
		if err != nil {
			h.Logger.Warn("auth middleware: employee lookup failed", "employee_id", claims.EmployeeID, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "employee not found or inactive")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithEmployee(r.Context(), current)))
	})
}

// RequireAdmin guards admin-only routes. Must run after AuthMiddleware.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		emp, ok := EmployeeFromContext(r.Context())
		if !ok || emp == nil {
			h.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !emp.IsAdmin {
			h.Logger.Warn("admin route denied", "employee_id", emp.ID, "path", r.URL.Path)
			h.WriteError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// remoteIP extracts the caller's address, preferring the first hop recorded
// by a reverse proxy. The relay later dials this address, so the value must
// be the employee machine's IP rather than the proxy's.
func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
