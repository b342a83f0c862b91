package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/easyapply/internal/model"
	"github.com/amishk599/easyapply/internal/store"
)

type JobsHandler struct {
	outcomes OutcomeReader
	now      func() time.Time
}

func NewJobsHandler(outcomes OutcomeReader) *JobsHandler {
	return &JobsHandler{outcomes: outcomes, now: time.Now}
}

// List serves GET /api/jobs?limit=&status=.
func (h *JobsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	opts := store.ListOptions{Limit: store.DefaultListLimit}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		opts.Limit = n
	}
	if raw := c.Query("status"); raw != "" {
		status := model.Status(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + strconv.Quote(raw)})
			return
		}
		opts.Status = status
	}

	records, err := h.outcomes.List(ctx, opts)
	if err != nil {
		slog.ErrorContext(ctx, "listing jobs failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	if records == nil {
		records = []model.JobRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// Dashboard serves GET /api/dashboard.
func (h *JobsHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.outcomes.Stats(ctx, h.now())
	if err != nil {
		slog.ErrorContext(ctx, "reading stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
