package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/reviewdash/internal/domain"
	"github.com/timmy/reviewdash/internal/logger"
	"github.com/timmy/reviewdash/internal/observer"
)

const probeTimeout = 3 * time.Second

// PollStats reports status polling activity.
type PollStats interface {
	Stats() observer.Stats
}

// ServiceProbe reaches the generation service root.
type ServiceProbe interface {
	Info(ctx context.Context) (*domain.ServiceInfo, error)
}

// StreamCounter reports how many event streams are open.
type StreamCounter interface {
	Len() int
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	polls   PollStats
	probe   ServiceProbe
	streams StreamCounter
}

// NewHealthHandler creates a new health handler.
// Any collaborator may be nil, in which case its section is left out.
func NewHealthHandler(polls PollStats, probe ServiceProbe, streams StreamCounter) *HealthHandler {
	return &HealthHandler{polls: polls, probe: probe, streams: streams}
}

// UpstreamHealth is the generation service section of the health report.
type UpstreamHealth struct {
	Reachable bool   `json:"reachable"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Poller    *observer.Stats `json:"poller,omitempty"`
	Generator *UpstreamHealth `json:"generator,omitempty"`
	Streams   *int            `json:"event_streams,omitempty"`
}

// Health returns the health status of the console.
// The console itself answers 200 even when the generation service is down; the
// upstream state is reported in the body and the overall status is "degraded".
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}

	if h.polls != nil {
		stats := h.polls.Stats()
		resp.Poller = &stats
	}

	if h.streams != nil {
		n := h.streams.Len()
		resp.Streams = &n
	}

	if h.probe != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()

		upstream := &UpstreamHealth{}
		info, err := h.probe.Info(ctx)
		if err != nil {
			logger.FromContext(c.Request.Context()).WithError(err).Warn("Generation service probe failed")
			upstream.Error = err.Error()
			resp.Status = "degraded"
		} else {
			upstream.Reachable = true
			upstream.Message = info.Message
		}
		resp.Generator = upstream
	}

	c.JSON(http.StatusOK, resp)
}
