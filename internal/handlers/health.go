package handlers

import (
	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler provides enhanced health check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// SSE connections
	sseClients := services.GetEventHub().ClientCount()

	// Contracts still in analysis
	var analyzingCount int64
	models.GetDB().Model(&models.Contract{}).
		Where("status = ?", models.ContractStatusAnalyzing).
		Count(&analyzingCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "pmcopilot",
		"components": gin.H{
			"database":            dbStatus,
			"queue_mode":          queueMode,
			"sse_clients":         sseClients,
			"analyzing_contracts": analyzingCount,
		},
	})
}
