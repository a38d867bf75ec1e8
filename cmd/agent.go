package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/workpulse/workpulse/internal/agent"
	"github.com/workpulse/workpulse/pkg/logger"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Start the desktop agent",
	Long:  `Start the local capture listener and the automatic screenshot loop`,
	Run: func(cmd *cobra.Command, args []string) {
		startAgent()
	},
}

func startAgent() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	session := agent.NewSession()
	capturer := agent.DisplayCapturer{}

	srv := agent.NewServer(session, capturer, log)
	autoCapture := agent.NewAutoCapture(session, capturer, cfg.Agent, log)

	addr := fmt.Sprintf(":%d", cfg.Agent.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go autoCapture.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	log.Info("agent listening", "address", addr)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Agent shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Agent failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Agent stopped")
}
