package controllers

import (
	"context"
	"time"

	"strata-portal/internal/app/middleware"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"
	"strata-portal/internal/infrastructure/database"

	"github.com/gin-gonic/gin"
)

// HealthController reports liveness and dependency status
type HealthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthController creates a health controller
func NewHealthController(ctx *gin.Context, container *container.ServiceContainer) *HealthController {
	return &HealthController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc returns a gin handler dispatching to the named health method
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		case "cacheStats":
			controller.CacheStats()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// Ping answers liveness checks
// @Summary      Ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /ping [get]
func (c *HealthController) Ping() {
	response.Success(c.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status checks the database, redis and the maintenance store
// @Summary      Dependency status
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health/status [get]
func (c *HealthController) Status() {
	ctx, cancel := context.WithTimeout(c.Ctx.Request.Context(), 3*time.Second)
	defer cancel()

	healthy := true
	result := gin.H{"timestamp": time.Now().UTC()}

	if pool, ok := c.Container.GetService("pool").(*database.ConnectionPool); ok && pool != nil {
		db := gin.H{"status": "up"}
		if err := pool.HealthCheck(ctx); err != nil {
			healthy = false
			db["status"] = "down"
			db["error"] = err.Error()
		}
		if stats, err := pool.Stats(); err == nil {
			db["pool"] = stats
		}
		result["database"] = db
	}

	redisStatus := gin.H{"status": "disabled"}
	if redisService, ok := c.Container.GetService("redis").(services.InterfaceRedisService); ok && redisService != nil {
		redisStatus["status"] = "up"
		if err := redisService.Ping(ctx); err != nil {
			// the cache is optional, so a failed ping degrades but does not fail the check
			redisStatus["status"] = "down"
			redisStatus["error"] = err.Error()
		}
	}
	result["redis"] = redisStatus

	if maintenance, ok := c.Container.GetService("maintenance").(services.InterfaceMaintenanceService); ok && maintenance != nil {
		result["maintenance_store"] = maintenance.StoreName()
	}
	if broadcast, ok := c.Container.GetService("broadcast").(services.InterfaceBroadcastService); ok && broadcast != nil {
		result["mqtt_enabled"] = broadcast.Enabled()
	}

	if !healthy {
		result["status"] = "unhealthy"
		response.FailWithMessage(c.Ctx, code.ErrBackendUnavailable, "database unavailable", result)
		return
	}
	result["status"] = "healthy"
	response.Success(c.Ctx, result)
}

// CacheStats reports the response cache counters
// @Summary      Cache stats
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health/cache-stats [get]
func (c *HealthController) CacheStats() {
	response.Success(c.Ctx, middleware.CacheStats())
}
