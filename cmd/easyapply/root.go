package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/amishk599/easyapply/internal/ai"
	"github.com/amishk599/easyapply/internal/browser/rodbrowser"
	"github.com/amishk599/easyapply/internal/config"
	"github.com/amishk599/easyapply/internal/discovery"
	"github.com/amishk599/easyapply/internal/id"
	"github.com/amishk599/easyapply/internal/login"
	"github.com/amishk599/easyapply/internal/model"
	"github.com/amishk599/easyapply/internal/notifier"
	"github.com/amishk599/easyapply/internal/ratelimit"
	"github.com/amishk599/easyapply/internal/runner"
	"github.com/amishk599/easyapply/internal/settings"
	"github.com/amishk599/easyapply/internal/store"
	"github.com/amishk599/easyapply/internal/telemetry"
	"github.com/amishk599/easyapply/internal/wizard"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "easyapply",
	Short: "Quick-apply bot with a dashboard API",
	Long:  "easyapply signs in to a job site, finds quick-apply postings and fills their application wizards.",
	// No subcommand means serve.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: EASYAPPLY_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > EASYAPPLY_CONFIG env var > "./config.yaml" if present > defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("EASYAPPLY_CONFIG"); env != "" {
			path = env
		} else if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	return newLogger(dbg, telemetry.LogOptions{})
}

func newLogger(dbg bool, opts telemetry.LogOptions) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return telemetry.NewLogger(os.Stdout, logLevel, opts)
}

// setupTelemetry starts OTLP export when configured and returns the logger to
// use from then on. The returned Telemetry is nil when export is off.
func setupTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*telemetry.Telemetry, *slog.Logger) {
	cfg.Telemetry.ServiceVersion = version
	tel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Error("failed to initialise telemetry", "error", err)
		os.Exit(1)
	}
	if tel == nil {
		return nil, logger
	}
	logger = newLogger(debug, telemetry.LogOptions{Export: true, ServiceName: cfg.Telemetry.ServiceName})
	logger.Info("telemetry export enabled", "endpoint", cfg.Telemetry.Endpoint)
	return tel, logger
}

func shutdownTelemetry(tel *telemetry.Telemetry, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mustLoad loads config or exits, logging the failure.
func mustLoad(logger *slog.Logger) *config.Config {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func setupSettings(cfg *config.Config, logger *slog.Logger) *settings.Store {
	return settings.NewStore(cfg.SettingsPath, settings.Values{
		LinkedinEmail:    cfg.Credentials.Email,
		LinkedinPassword: cfg.Credentials.Password,
		OpenAIAPIKey:     cfg.AI.APIKey,
		OpenAIModel:      cfg.AI.Model,
		DatabaseURL:      cfg.DatabaseURL,
	}, logger)
}

// openStore opens the outcome store. The settings file may point at a
// different database than config; it wins.
func openStore(ctx context.Context, cfg *config.Config, s *settings.Store) (store.Store, error) {
	url := s.Get().DatabaseURL
	if url == "" {
		url = cfg.DatabaseURL
	}
	st, err := store.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// setupRedis returns nil when no events stream is configured.
func setupRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Events.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.Events.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("redis connected", "stream", cfg.Events.Stream)
	return client, nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.EventSink {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, cfg.Site.BaseURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildCoordinator wires the run pipeline. redisClient may be nil.
func buildCoordinator(ctx context.Context, cfg *config.Config, s *settings.Store, st store.Store, redisClient *redis.Client, logger *slog.Logger) *runner.Coordinator {
	if err := id.Init(1); err != nil {
		logger.Error("failed to initialise id generator", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	sinks := []model.EventSink{
		notifier.NewStoreSink(st),
		setupNotifier(cfg, httpClient, logger),
	}
	if redisClient != nil {
		sinks = append(sinks, notifier.NewRedisStreamNotifier(redisClient, cfg.Events.Stream, logger))
	}

	provider := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.Timeout, httpClient)
	answerer := ai.NewAnswerer(provider, s, logger)

	return runner.NewCoordinator(ctx, runner.Deps{
		Launcher:    rodbrowser.NewLauncher(rodbrowser.Options{Headless: cfg.Browser.Headless, Bin: cfg.Browser.Bin}, logger),
		Credentials: s,
		Auth:        login.NewAuthenticator(cfg.Site.BaseURL, cfg.Browser.ActionTimeout, cfg.Browser.LoginTimeout, logger),
		Discovery:   discovery.NewDiscoverer(cfg.Site.BaseURL, cfg.Browser.ResultsDelay, logger),
		Wizard: wizard.New(wizard.Options{
			BaseURL:       cfg.Site.BaseURL,
			EntryTimeout:  cfg.Browser.EntryTimeout,
			ActionTimeout: cfg.Browser.ActionTimeout,
			SettleDelay:   cfg.Browser.SettleDelay,
			MaxSteps:      cfg.Run.MaxSteps,
		}, answerer, s, logger),
		Sink:    notifier.NewFanout(sinks...),
		History: st,
		Pacer:   ratelimit.NewHostLimiter(cfg.Run.JobDelay),
	}, runner.Options{
		SiteBaseURL: cfg.Site.BaseURL,
		JobBudget:   cfg.Run.JobBudget(),
	}, logger)
}
