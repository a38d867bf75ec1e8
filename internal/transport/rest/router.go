package rest

import (
	"crypto/subtle"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/agent"
	"github.com/workpulse/workpulse/internal/auth"
	"github.com/workpulse/workpulse/internal/employee"
	"github.com/workpulse/workpulse/internal/project"
	"github.com/workpulse/workpulse/internal/screenshot"
	"github.com/workpulse/workpulse/internal/task"
	"github.com/workpulse/workpulse/internal/timelog"
	"github.com/workpulse/workpulse/internal/transport/middleware"
	"github.com/workpulse/workpulse/internal/transport/swagger"
)

type Handlers struct {
	Auth       *auth.Handler
	Employee   *employee.Handler
	Project    *project.Handler
	Task       *task.Handler
	TimeLog    *timelog.Handler
	Screenshot *screenshot.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORSWithOrigins(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and swagger UI at root, outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/signup", h.Auth.SignUp)
			sr.Post("/signin", h.Auth.SignIn)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Get("/verify-email/{token}", h.Auth.VerifyEmail)
			sr.Post("/forgot-password", h.Auth.ForgotPassword)
			sr.Post("/reset-password/{token}", h.Auth.ResetPassword)
			sr.Get("/verify-activation-token/{token}", h.Auth.VerifyActivationToken)
			sr.Post("/activate-account/{token}", h.Auth.ActivateAccount)
		})

		// Agent uploads authenticate with a shared key instead of a JWT.
		r.Group(func(ar chi.Router) {
			ar.Use(agentOrJWT(cfg.Security.AgentAPIKey, h.Auth))
			ar.Post("/screenshots", h.Screenshot.Upload)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/employees", func(er chi.Router) {
				er.Get("/", h.Employee.GetAll)
				er.Get("/working-status", h.Employee.WorkingStatus)
				er.Get("/{id}", h.Employee.Get)
				er.Get("/{id}/tasks", h.Task.GetEmployeeTasks)
				er.Get("/{id}/screenshots", h.Screenshot.GetEmployeeScreenshots)

				er.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireAdmin)
					mr.Post("/", h.Employee.Create)
					mr.Put("/{id}", h.Employee.Update)
					mr.Patch("/{id}/toggle-status", h.Employee.ToggleStatus)
					mr.Patch("/{id}/add-task/{taskId}", h.Employee.AddTask)
					mr.Patch("/{id}/remove-task/{taskId}", h.Employee.RemoveTask)
				})
			})

			pr.Route("/projects", func(jr chi.Router) {
				jr.Get("/", h.Project.GetAll)

				jr.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireAdmin)
					mr.Post("/", h.Project.Create)
					mr.Put("/{id}", h.Project.Update)
					mr.Delete("/{id}", h.Project.Delete)
				})
			})

			pr.Route("/tasks", func(tr chi.Router) {
				tr.Get("/", h.Task.GetAll)
				tr.Patch("/{id}/complete", h.Task.Complete)
				tr.Patch("/{id}/uncomplete", h.Task.Uncomplete)

				tr.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireAdmin)
					mr.Post("/", h.Task.Create)
					mr.Put("/{id}", h.Task.Update)
					mr.Delete("/{id}", h.Task.Delete)
					mr.Patch("/{id}/assign-employee", h.Task.AssignEmployees)
				})
			})

			pr.Route("/timelogs", func(lr chi.Router) {
				lr.Post("/", h.TimeLog.ClockIn)
				lr.Patch("/{id}/clockout", h.TimeLog.ClockOut)
			})

			pr.Group(func(mr chi.Router) {
				mr.Use(h.Auth.RequireAdmin)
				mr.Post("/auth/send-activation-email", h.Auth.SendActivationEmail)
				mr.Post("/screenshots/capture", h.Screenshot.Capture)
				mr.Post("/screenshots/capture-batch", h.Screenshot.CaptureBatch)
			})
		})
	})
}

// agentOrJWT admits requests carrying the agent's shared key, and falls
// back to normal JWT auth for everyone else.
func agentOrJWT(agentKey string, authHandler *auth.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		jwtGuarded := authHandler.AuthMiddleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(agent.AgentKeyHeader)
			if agentKey != "" && key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(agentKey)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
			jwtGuarded.ServeHTTP(w, r)
		})
	}
}
