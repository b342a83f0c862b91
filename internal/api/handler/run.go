package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/easyapply/internal/model"
)

type RunHandler struct {
	runs     RunTrigger
	settings SettingsService
	defaults model.SearchFilters
}

// NewRunHandler creates a handler whose request bodies are decoded over defaults.
func NewRunHandler(runs RunTrigger, s SettingsService, defaults model.SearchFilters) *RunHandler {
	return &RunHandler{runs: runs, settings: s, defaults: defaults}
}

// Start serves POST /api/run. An empty body runs with the defaults.
func (h *RunHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	filters := h.defaults
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&filters); err != nil {
			slog.WarnContext(ctx, "invalid run filters", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if filters.MaxJobsPerRun < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_jobs_per_run must not be negative"})
		return
	}

	if !h.settings.Credentials().Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": model.ErrMissingCredentials.Error()})
		return
	}

	if !h.runs.Start(filters) {
		c.JSON(http.StatusConflict, gin.H{"error": model.ErrRunActive.Error()})
		return
	}

	slog.InfoContext(ctx, "run started via api", "max_jobs", filters.Limit())
	c.JSON(http.StatusOK, gin.H{"started": true})
}
