package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	runs RunTrigger
}

func NewHealthHandler(runs RunTrigger) *HealthHandler {
	return &HealthHandler{runs: runs}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "running": h.runs.Running()})
}
