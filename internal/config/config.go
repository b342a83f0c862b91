package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/easyapply/internal/model"
)

// Config is the root configuration for the easyapply service.
type Config struct {
	Server       ServerConfig
	DatabaseURL  string
	SettingsPath string
	Site         SiteConfig
	Browser      BrowserConfig
	Run          RunConfig
	AI           AIConfig
	Credentials  CredentialsConfig
	Notification NotificationConfig
	Events       EventsConfig
	Telemetry    TelemetryConfig
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr        string
	FrontendURL string // allowed CORS origin for the dashboard
}

// SiteConfig points at the job site driven by the browser.
type SiteConfig struct {
	BaseURL string
}

// BrowserConfig controls the browser session and its bounded waits.
type BrowserConfig struct {
	Headless      bool
	Bin           string        // optional browser binary; empty downloads/uses the default
	EntryTimeout  time.Duration // wait for the quick-apply entry control
	ActionTimeout time.Duration // per click/fill
	SettleDelay   time.Duration // pause after a wizard click
	ResultsDelay  time.Duration // pause after loading search results
	LoginTimeout  time.Duration // wait for the post-login page to go idle
}

// RunConfig controls run pacing and bounds.
type RunConfig struct {
	MaxJobMinutes int
	MaxSteps      int
	JobDelay      time.Duration // minimum gap between two job applications
	Schedule      time.Duration // zero disables scheduled runs
	Defaults      model.SearchFilters
}

// JobBudget is the per-job wall-clock budget.
func (r RunConfig) JobBudget() time.Duration {
	return time.Duration(r.MaxJobMinutes) * time.Minute
}

// AIConfig controls the optional text-completion layer.
type AIConfig struct {
	BaseURL string        // defaults to https://api.openai.com/v1
	Model   string        // seeds the runtime settings model
	APIKey  string        // seeds the runtime settings key; expanded from env by Load
	Timeout time.Duration // single-call timeout
}

// CredentialsConfig seeds the runtime settings store.
type CredentialsConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// EventsConfig enables publishing status events to a Redis stream.
type EventsConfig struct {
	RedisURL string `yaml:"redis_url"` // empty disables the stream
	Stream   string `yaml:"stream"`
}

// TelemetryConfig enables OTLP trace and log export.
type TelemetryConfig struct {
	Endpoint       string `yaml:"endpoint"` // empty disables export
	Headers        string `yaml:"headers"`  // k=v,k=v
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"-"`
}

// Enabled reports whether an OTLP endpoint is configured.
func (c TelemetryConfig) Enabled() bool {
	return c.Endpoint != ""
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultSiteBaseURL   = "https://www.linkedin.com"
	defaultStream        = "easyapply:status"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Server       rawServerConfig    `yaml:"server"`
	DatabaseURL  string             `yaml:"database_url"`
	SettingsPath string             `yaml:"settings_path"`
	Site         rawSiteConfig      `yaml:"site"`
	Browser      rawBrowserConfig   `yaml:"browser"`
	Run          rawRunConfig       `yaml:"run"`
	AI           rawAIConfig        `yaml:"ai"`
	Credentials  CredentialsConfig  `yaml:"credentials"`
	Notification NotificationConfig `yaml:"notification"`
	Events       EventsConfig       `yaml:"events"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

type rawServerConfig struct {
	Addr        string `yaml:"addr"`
	FrontendURL string `yaml:"frontend_url"`
}

// rawSiteConfig is the YAML shape of SiteConfig.
type rawSiteConfig struct {
	BaseURL string `yaml:"base_url"`
}

type rawBrowserConfig struct {
	Headless      *bool  `yaml:"headless"`
	Bin           string `yaml:"bin"`
	EntryTimeout  string `yaml:"entry_timeout"`
	ActionTimeout string `yaml:"action_timeout"`
	SettleDelay   string `yaml:"settle_delay"`
	ResultsDelay  string `yaml:"results_delay"`
	LoginTimeout  string `yaml:"login_timeout"`
}

type rawRunConfig struct {
	MaxJobMinutes int                  `yaml:"max_job_minutes"`
	MaxSteps      int                  `yaml:"max_steps"`
	JobDelay      string               `yaml:"job_delay"`
	Schedule      string               `yaml:"schedule"`
	Defaults      *model.SearchFilters `yaml:"defaults"`
}

type rawAIConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// An empty path yields the defaults, with credentials and keys taken from the
// environment. A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func build(raw rawConfig) (*Config, error) {
	var errs []error
	dur := func(field, value string, def time.Duration) time.Duration {
		if value == "" {
			return def
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %s %q: %w", field, value, err))
			return def
		}
		return d
	}

	headless := true
	if raw.Browser.Headless != nil {
		headless = *raw.Browser.Headless
	}

	defaults := model.DefaultSearchFilters()
	if raw.Run.Defaults != nil {
		defaults = *raw.Run.Defaults
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:        firstNonEmpty(raw.Server.Addr, envOr("EASYAPPLY_ADDR", ":8000")),
			FrontendURL: firstNonEmpty(raw.Server.FrontendURL, envOr("FRONTEND_PUBLIC_URL", "http://localhost:3000")),
		},
		DatabaseURL:  firstNonEmpty(raw.DatabaseURL, envOr("DATABASE_URL", "sqlite:///./state.db")),
		SettingsPath: firstNonEmpty(raw.SettingsPath, "runtime_settings.yaml"),
		Site: SiteConfig{
			BaseURL: strings.TrimRight(firstNonEmpty(raw.Site.BaseURL, defaultSiteBaseURL), "/"),
		},
		Browser: BrowserConfig{
			Headless:      headless,
			Bin:           raw.Browser.Bin,
			EntryTimeout:  dur("browser.entry_timeout", raw.Browser.EntryTimeout, 3*time.Second),
			ActionTimeout: dur("browser.action_timeout", raw.Browser.ActionTimeout, 5*time.Second),
			SettleDelay:   dur("browser.settle_delay", raw.Browser.SettleDelay, 800*time.Millisecond),
			ResultsDelay:  dur("browser.results_delay", raw.Browser.ResultsDelay, 1500*time.Millisecond),
			LoginTimeout:  dur("browser.login_timeout", raw.Browser.LoginTimeout, 30*time.Second),
		},
		Run: RunConfig{
			MaxJobMinutes: raw.Run.MaxJobMinutes,
			MaxSteps:      raw.Run.MaxSteps,
			JobDelay:      dur("run.job_delay", raw.Run.JobDelay, 0),
			Schedule:      dur("run.schedule", raw.Run.Schedule, 0),
			Defaults:      defaults,
		},
		AI: AIConfig{
			BaseURL: firstNonEmpty(raw.AI.BaseURL, defaultOpenAIBaseURL),
			Model:   firstNonEmpty(raw.AI.Model, envOr("OPENAI_MODEL", defaultOpenAIModel)),
			APIKey:  firstNonEmpty(raw.AI.APIKey, os.Getenv("OPENAI_API_KEY")),
			Timeout: dur("ai.timeout", raw.AI.Timeout, 20*time.Second),
		},
		Credentials: CredentialsConfig{
			Email:    firstNonEmpty(raw.Credentials.Email, os.Getenv("LINKEDIN_EMAIL")),
			Password: firstNonEmpty(raw.Credentials.Password, os.Getenv("LINKEDIN_PASSWORD")),
		},
		Notification: raw.Notification,
		Events: EventsConfig{
			RedisURL: raw.Events.RedisURL,
			Stream:   firstNonEmpty(raw.Events.Stream, defaultStream),
		},
		Telemetry: TelemetryConfig{
			Endpoint:    firstNonEmpty(raw.Telemetry.Endpoint, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
			Headers:     firstNonEmpty(raw.Telemetry.Headers, os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
			ServiceName: firstNonEmpty(raw.Telemetry.ServiceName, envOr("OTEL_SERVICE_NAME", "easyapply")),
		},
	}

	if cfg.Run.MaxJobMinutes == 0 {
		cfg.Run.MaxJobMinutes = 5
	}
	if cfg.Run.MaxSteps == 0 {
		cfg.Run.MaxSteps = 25
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Run.MaxJobMinutes < 0 {
		return fmt.Errorf("run.max_job_minutes must be positive, got %d", cfg.Run.MaxJobMinutes)
	}
	if cfg.Run.MaxSteps < 0 {
		return fmt.Errorf("run.max_steps must be positive, got %d", cfg.Run.MaxSteps)
	}
	if cfg.Run.Schedule < 0 || (cfg.Run.Schedule > 0 && cfg.Run.Schedule < time.Minute) {
		return fmt.Errorf("run.schedule must be at least 1m when set, got %v", cfg.Run.Schedule)
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	if cfg.Telemetry.Enabled() && !strings.HasPrefix(cfg.Telemetry.Endpoint, "http") {
		return fmt.Errorf("telemetry.endpoint must be an http(s) URL, got %q", cfg.Telemetry.Endpoint)
	}

	if !strings.HasPrefix(cfg.Site.BaseURL, "http://") && !strings.HasPrefix(cfg.Site.BaseURL, "https://") {
		return fmt.Errorf("site.base_url must be an http(s) URL, got %q", cfg.Site.BaseURL)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
