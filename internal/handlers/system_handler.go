package handlers

import (
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DataProber exposes the data adapter's connectivity check.
type DataProber interface {
	SelfTest(ctx context.Context) (map[string]any, error)
}

// HealthChecker reports the liveness of an optional backing service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type SystemHandler struct {
	prober    DataProber
	memory    HealthChecker
	startTime time.Time
	logger    *logger.Logger
}

func NewSystemHandler(prober DataProber, memory HealthChecker, log *logger.Logger) *SystemHandler {
	return &SystemHandler{
		prober:    prober,
		memory:    memory,
		startTime: time.Now(),
		logger:    log,
	}
}

// HandleHealth serves GET /health.
func (handler *SystemHandler) HandleHealth(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{
		"crustdata": handler.prober != nil,
	}

	if handler.memory != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := handler.memory.HealthCheck(ctx); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "disabled"
	}

	c.JSON(status, gin.H{
		"status":  statusLabel(status),
		"uptime":  time.Since(handler.startTime).String(),
		"checks":  checks,
		"service": "consultgpt-pipeline",
	})
}

func statusLabel(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

// HandleCrustDataSelfTest serves GET /api/crustdata/selftest. It runs live
// probes against the provider, so it is meant for operators, not the UI.
func (handler *SystemHandler) HandleCrustDataSelfTest(c *gin.Context) {
	if handler.prober == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "CRUSTDATA_API_KEY not configured",
			"message": "Please add CRUSTDATA_API_KEY to your environment",
		})
		return
	}

	results, err := handler.prober.SelfTest(c.Request.Context())
	if err != nil {
		handler.logger.WithError(err).Error("Crustdata selftest failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Crustdata connectivity verified",
		"results": results,
	})
}
