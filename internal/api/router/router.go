// Package router assembles the gin engine.
package router

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/amishk599/easyapply/internal/api/handler"
	"github.com/amishk599/easyapply/internal/api/middleware"
	"github.com/amishk599/easyapply/internal/model"
)

// Config carries the collaborators and settings of the HTTP surface.
type Config struct {
	FrontendURL string
	Settings    handler.SettingsService
	Outcomes    handler.OutcomeReader
	Runs        handler.RunTrigger
	Defaults    model.SearchFilters
	Redis       *redis.Client // nil disables /api/events
	Stream      string
	Logger      *slog.Logger

	// TraceService names the server spans; empty disables request tracing.
	TraceService string
}

// New returns an engine with every route registered.
func New(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	router := gin.New()
	router.Use(middleware.Recovery())
	if cfg.TraceService != "" {
		router.Use(otelgin.Middleware(cfg.TraceService))
	}
	router.Use(middleware.Logger(cfg.Logger))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = allowedOrigins(cfg.FrontendURL)
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Last-Event-ID"}
	corsCfg.AllowCredentials = true
	router.Use(cors.New(corsCfg))

	SetupRoutes(router, cfg)
	return router
}

// SetupRoutes registers the health check and the /api group on router.
func SetupRoutes(router *gin.Engine, cfg Config) {
	health := handler.NewHealthHandler(cfg.Runs)
	router.GET("/health", health.Check)

	api := router.Group("/api")
	{
		settingsHandler := handler.NewSettingsHandler(cfg.Settings)
		api.GET("/settings", settingsHandler.Get)
		api.POST("/settings", settingsHandler.Update)

		jobsHandler := handler.NewJobsHandler(cfg.Outcomes)
		api.GET("/jobs", jobsHandler.List)
		api.GET("/dashboard", jobsHandler.Dashboard)

		runHandler := handler.NewRunHandler(cfg.Runs, cfg.Settings, cfg.Defaults)
		api.POST("/run", runHandler.Start)

		eventsHandler := handler.NewEventsHandler(cfg.Redis, cfg.Stream)
		api.GET("/events", eventsHandler.Stream)
	}
}

func allowedOrigins(frontendURL string) []string {
	origins := []string{"http://localhost:3000"}
	if frontendURL != "" && frontendURL != origins[0] {
		origins = append(origins, frontendURL)
	}
	return origins
}
