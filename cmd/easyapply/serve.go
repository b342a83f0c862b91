package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/amishk599/easyapply/internal/api/router"
	"github.com/amishk599/easyapply/internal/config"
	"github.com/amishk599/easyapply/internal/scheduler"
	"github.com/amishk599/easyapply/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	Long:  "Serves the HTTP API and, when run.schedule is set, starts runs on that interval. Blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoad(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, logger := setupTelemetry(ctx, cfg, logger)
	defer shutdownTelemetry(tel, logger)

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"site", cfg.Site.BaseURL,
		"headless", cfg.Browser.Headless,
		"max_job_minutes", cfg.Run.MaxJobMinutes,
		"schedule", cfg.Run.Schedule.String(),
	)

	s := setupSettings(cfg, logger)

	st, err := openStore(ctx, cfg, s)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	redisClient, err := setupRedis(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up event stream", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	coord := buildCoordinator(ctx, cfg, s, st, redisClient, logger)

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(router.Config{
		FrontendURL: cfg.Server.FrontendURL,
		Settings:    s,
		Outcomes:    st,
		Runs:        coord,
		Defaults:    cfg.Run.Defaults,
		Redis:       redisClient,
		Stream:      cfg.Events.Stream,
		Logger:      logger,

		TraceService: traceService(tel, cfg),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	if cfg.Run.Schedule > 0 {
		sched := scheduler.NewScheduler(coord, cfg.Run.Defaults, cfg.Run.Schedule, logger)
		go func() {
			_ = sched.Run(ctx)
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// The run context is already cancelled; wait for the browser to close.
	coord.Wait()

	logger.Info("goodbye")
	return nil
}

func traceService(tel *telemetry.Telemetry, cfg *config.Config) string {
	if tel == nil {
		return ""
	}
	return cfg.Telemetry.ServiceName
}
