package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/reviewdash/internal/dashboard"
	"github.com/timmy/reviewdash/internal/domain"
	"github.com/timmy/reviewdash/internal/logger"
	"github.com/timmy/reviewdash/internal/notifier"
)

const (
	eventState     = "state"
	eventKeepalive = "ping"

	keepaliveInterval = 15 * time.Second
)

// DashboardHandler serves the dashboard page and its JSON and event-stream endpoints.
type DashboardHandler struct {
	dash     *dashboard.Dashboard
	notifier *notifier.Notifier
}

// NewDashboardHandler creates a new dashboard handler.
// Parameters:
//   - dash: dashboard state holder.
//   - n: notifier broadcast after every applied snapshot; nil disables push updates.
// Returns:
//   - *DashboardHandler: initialized handler.
func NewDashboardHandler(dash *dashboard.Dashboard, n *notifier.Notifier) *DashboardHandler {
	return &DashboardHandler{dash: dash, notifier: n}
}

// SettingsRequest represents the settings update request.
type SettingsRequest struct {
	TotalReviews int `json:"total_reviews" binding:"required,min=1"`
	ChunkSize    int `json:"chunk_size" binding:"required,min=1"`
}

// ActionResponse is returned by every action endpoint.
type ActionResponse struct {
	Notice *dashboard.Notice `json:"notice,omitempty"`
	View   dashboard.View    `json:"view"`
}

// Page serves the dashboard HTML page.
func (h *DashboardHandler) Page(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(dashboardPage))
}

// State returns the current view.
func (h *DashboardHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.dash.View())
}

// Events streams a state event on connect and after every applied status snapshot.
// GET /dashboard/events
func (h *DashboardHandler) Events(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	var updates chan struct{}
	if h.notifier != nil {
		updates = h.notifier.Subscribe()
		defer h.notifier.Unsubscribe(updates)
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	first := true

	c.Stream(func(w io.Writer) bool {
		if first {
			first = false
			c.SSEvent(eventState, h.dash.View())
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent(eventState, h.dash.View())
			return true
		case <-keepalive.C:
			c.SSEvent(eventKeepalive, time.Now().Unix())
			return true
		}
	})

	logger.CtxDebug(ctx, "Event stream closed")
}

// UpdateSettings replaces the generation settings.
// PUT /dashboard/settings
func (h *DashboardHandler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.dash.UpdateSettings(domain.GenerationSettings{
		TotalReviews: req.TotalReviews,
		ChunkSize:    req.ChunkSize,
	})
	switch {
	case errors.Is(err, dashboard.ErrSettingsLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.CtxError(c.Request.Context(), "Failed to update settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.dash.View())
}

// Start asks the generation service to start a job with the current settings.
// POST /dashboard/actions/start
func (h *DashboardHandler) Start(c *gin.Context) {
	ctx := logger.SetAction(c.Request.Context(), "start")

	notice, err := h.dash.StartJob(ctx)
	if errors.Is(err, dashboard.ErrSettingsLocked) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.CtxError(ctx, "Start failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, notice)
}

// Sample fetches one sample review.
// POST /dashboard/actions/sample
func (h *DashboardHandler) Sample(c *gin.Context) {
	ctx := logger.SetAction(c.Request.Context(), "sample")
	h.respond(c, h.dash.FetchSample(ctx))
}

// Aspects fetches the aspect catalog.
// POST /dashboard/actions/aspects
func (h *DashboardHandler) Aspects(c *gin.Context) {
	ctx := logger.SetAction(c.Request.Context(), "aspects")
	h.respond(c, h.dash.FetchAspects(ctx))
}

// TestBatch asks the generation service for a test batch.
// POST /dashboard/actions/test-batch
func (h *DashboardHandler) TestBatch(c *gin.Context) {
	ctx := logger.SetAction(c.Request.Context(), "test_batch")
	h.respond(c, h.dash.FetchTestBatch(ctx))
}

// respond answers 200 for both outcomes; a failed service call is a notice for the user.
func (h *DashboardHandler) respond(c *gin.Context, notice *dashboard.Notice) {
	c.JSON(http.StatusOK, ActionResponse{
		Notice: notice,
		View:   h.dash.View(),
	})
}
