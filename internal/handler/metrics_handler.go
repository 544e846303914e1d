package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/devevent-api/internal/service"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency probed by the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	checks  map[string]Pinger
	logger  *zap.Logger
}

// NewMetricsHandler constructs a metrics handler. checks maps a dependency
// name to its probe; nil probes are skipped.
func NewMetricsHandler(metrics *service.MetricsService, checks map[string]Pinger, logger *zap.Logger) *MetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsHandler{metrics: metrics, checks: checks, logger: logger}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness probes.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether every dependency answers a ping.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(gin.H, len(h.checks))
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}
