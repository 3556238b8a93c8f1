package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ReadinessCheck reports whether an inference endpoint can serve scans
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	checks []ReadinessCheck
}

// NewHealthHandler creates a new health handler. Checks are only consulted
// by Ready.
func NewHealthHandler(db *gorm.DB, redis *redis.Client, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redis,
		checks: checks,
	}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string)
	healthy := h.checkStores(ctx, components)

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthStatus{
		Status:     status,
		Components: components,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string)
	ready := h.checkStores(ctx, components)

	for _, p := range h.checks {
		if err := p.Check(ctx); err != nil {
			components[p.Name] = "error: " + err.Error()
			ready = false
		} else {
			components[p.Name] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, HealthStatus{Status: "not ready", Components: components})
		return
	}

	c.JSON(http.StatusOK, HealthStatus{Status: "ready", Components: components})
}

func (h *HealthHandler) checkStores(ctx context.Context, components map[string]string) bool {
	healthy := true

	// Check database
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil {
			components["database"] = "error: " + err.Error()
			healthy = false
		} else if err := sqlDB.PingContext(ctx); err != nil {
			components["database"] = "error: " + err.Error()
			healthy = false
		} else {
			components["database"] = "ok"
		}
	} else {
		components["database"] = "not configured"
	}

	// Check Redis
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			components["redis"] = "error: " + err.Error()
			healthy = false
		} else {
			components["redis"] = "ok"
		}
	} else {
		components["redis"] = "not configured"
	}

	return healthy
}
