package handler

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentdesk/backend/internal/infrastructure/scheduler"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

// SweepTrigger abstracts the scheduler's manual trigger for testability
type SweepTrigger interface {
	TriggerImmediateSweep(ctx context.Context) error
}

// SystemHandler handles system-level API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	sweeper   SweepTrigger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(sweeper SweepTrigger) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		sweeper:   sweeper,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "RentDesk Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping is a simple liveness check
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// TriggerRecompute runs the daily status sweep outside its schedule. The
// sweep itself is idempotent, so an overlapping manual trigger is harmless.
func (h *SystemHandler) TriggerRecompute(c *gin.Context) {
	if h.sweeper == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInvalidState, "Status sweep scheduler is not configured")
		return
	}

	if err := h.sweeper.TriggerImmediateSweep(c.Request.Context()); err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInvalidState, "Status sweep scheduler is not running")
			return
		}
		h.InternalError(c, "Failed to trigger status sweep")
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(gin.H{
		"triggered": true,
	}))
}
