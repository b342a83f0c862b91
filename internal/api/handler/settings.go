package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/easyapply/internal/settings"
)

type SettingsHandler struct {
	settings SettingsService
}

func NewSettingsHandler(s SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: s}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Safe())
}

func (h *SettingsHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var patch settings.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		slog.WarnContext(ctx, "invalid settings body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.settings.Update(patch); err != nil {
		slog.ErrorContext(ctx, "persisting settings failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, h.settings.Safe())
}
