package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/auth"
	authpg "github.com/workpulse/workpulse/internal/auth/postgres"
	"github.com/workpulse/workpulse/internal/core/events"
	"github.com/workpulse/workpulse/internal/employee"
	employeepg "github.com/workpulse/workpulse/internal/employee/postgres"
	"github.com/workpulse/workpulse/internal/mailer"
	"github.com/workpulse/workpulse/internal/project"
	projectpg "github.com/workpulse/workpulse/internal/project/postgres"
	"github.com/workpulse/workpulse/internal/screenshot"
	screenshotpg "github.com/workpulse/workpulse/internal/screenshot/postgres"
	"github.com/workpulse/workpulse/internal/storage"
	"github.com/workpulse/workpulse/internal/task"
	taskpg "github.com/workpulse/workpulse/internal/task/postgres"
	"github.com/workpulse/workpulse/internal/timelog"
	timelogpg "github.com/workpulse/workpulse/internal/timelog/postgres"
	"github.com/workpulse/workpulse/internal/transport/rest"
	"github.com/workpulse/workpulse/pkg/logger"
)

// tokenPurgeInterval is how often expired verification, reset, and
// activation tokens are swept from the store.
const tokenPurgeInterval = time.Hour

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the REST backend for employees, projects, tasks, time logs, screenshots, and auth`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger

	TokenRepo *authpg.TokenRepository
	Handlers  rest.Handlers
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Config, deps.Handlers, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	purgeCtx, purgeCancel := context.WithCancel(context.Background())
	defer purgeCancel()
	go purgeExpiredTokens(purgeCtx, deps.TokenRepo, deps.Logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	employeeRepo := employeepg.NewEmployeeRepository(gormDB)
	projectRepo := projectpg.NewProjectRepository(gormDB)
	taskRepo := taskpg.NewTaskRepository(gormDB)
	timeLogRepo := timelogpg.NewTimeLogRepository(gormDB)
	screenshotRepo := screenshotpg.NewScreenshotRepository(gormDB)
	tokenRepo := authpg.NewTokenRepository(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	m, err := buildMailer(config, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	bus := events.NewEventBus(log)
	registerAuditSubscribers(bus, log)

	authService := auth.NewService(employeeRepo, tokenRepo, tokenGen, m, config.Server.BaseURL, config.Security.BCryptCost, log)
	taskService := task.NewService(taskRepo, employeeRepo, projectRepo, log)
	timeLogService := timelog.NewService(timeLogRepo, employeeExists{repo: employeeRepo}, bus, log)
	employeeService := employee.NewService(employeeRepo, timeLogService, taskService, authService, log)
	projectService := project.NewService(projectRepo, taskService, log)

	uploader, err := buildUploader(config, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	relay := screenshot.NewAgentRelay(config.Agent.Port, config.Agent.RelayTimeout)
	screenshotService := screenshot.NewService(
		screenshotRepo,
		employeeService,
		timeLogService,
		relay,
		uploader,
		bus,
		config.Agent.MaxFanOut,
		log,
	)

	handlers := rest.Handlers{
		Auth:       auth.NewHandler(authService),
		Employee:   employee.NewHandler(employeeService),
		Project:    project.NewHandler(projectService),
		Task:       task.NewHandler(taskService),
		TimeLog:    timelog.NewHandler(timeLogService),
		Screenshot: screenshot.NewHandler(screenshotService),
	}

	return &Dependencies{
		Config:    config,
		DB:        db,
		GormDB:    gormDB,
		Router:    chi.NewRouter(),
		Logger:    log,
		TokenRepo: tokenRepo,
		Handlers:  handlers,
	}, nil
}

// registerAuditSubscribers logs tracking events to the audit trail. More
// subscribers (notifications, retention jobs) hook in here.
func registerAuditSubscribers(bus *events.EventBus, log *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		log.Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload(),
		)
		return nil
	}
	bus.Subscribe(events.EventTypeClockedIn, audit)
	bus.Subscribe(events.EventTypeClockedOut, audit)
	bus.Subscribe(events.EventTypeScreenshotCaptured, audit)
}

func buildMailer(config *internal.Config, log *slog.Logger) (mailer.Mailer, error) {
	if config.Mail.Provider == "ses" {
		return mailer.NewSESMailer(context.Background(), config.Mail.FromName, config.Mail.FromAddress, log)
	}
	return mailer.NewConsoleMailer(log), nil
}

func buildUploader(config *internal.Config, log *slog.Logger) (storage.Uploader, error) {
	if config.Storage.Bucket != "" {
		return storage.NewS3Uploader(context.Background(), config.Storage)
	}
	log.Warn("no storage bucket configured, screenshots are held in memory only")
	return storage.NewMemoryUploader(), nil
}

// employeeExists adapts the employee repository for the time log service.
type employeeExists struct {
	repo *employeepg.EmployeeRepository
}

func (e employeeExists) EmployeeExists(id int64) (bool, error) {
	_, err := e.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func purgeExpiredTokens(ctx context.Context, repo *authpg.TokenRepository, log *slog.Logger) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.PurgeExpiredTokens(); err != nil {
				log.Error("token purge failed", "error", err)
			}
		}
	}
}

// initDB opens a pgx-backed connection pool and verifies it.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
