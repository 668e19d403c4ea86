package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"apikit/internal/infrastructure/http/v1/dto"
	"apikit/internal/infrastructure/http/v1/response"
	"apikit/pkg/logger"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 3 * time.Second}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live, GET /api/health
func (h *HealthHandler) Live(*gin.Context) (any, error) {
	return dto.HealthResponse{Status: "ok"}, nil
}

// Ready handles readiness probe (are dependencies reachable?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) (any, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := dto.HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			logger.Warn(ctx, "readiness check failed", "check", name, "error", err)
			resp.Status = "error"
			resp.Checks[name] = "unhealthy"
			continue
		}
		resp.Checks[name] = "healthy"
	}

	if resp.Status != "ok" {
		return response.FailWithPayload(http.StatusServiceUnavailable, resp), nil
	}
	return resp, nil
}
