package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1. Маршруты, кроме health-check,
// закрыты проверкой API-ключа, если ключи заданы в конфигурации.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)

	protected := api.Group("")
	if h.cfg != nil && len(h.cfg.APIKeys) > 0 {
		protected.Use(APIKeyAuthMiddleware(h.cfg, h.logger))
	}

	// Инциденты и их жизненный цикл
	incidents := protected.Group("/incidents")
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.PATCH("/:id", h.updateIncident)
		incidents.POST("/:id/acknowledge", h.acknowledgeIncident)
		incidents.POST("/:id/begin", h.beginResponse)
		incidents.POST("/:id/resolve", h.resolveIncident)
		incidents.POST("/:id/assignments", h.assignResponder)
		incidents.POST("/:id/updates", h.appendUpdate)
		incidents.POST("/:id/backup", h.requestBackup)
		incidents.POST("/:id/watch", h.watchIncident)
		incidents.DELETE("/:id/watch", h.unwatchIncident)

		// Координация реагирования
		incidents.POST("/:id/coordination", h.createCoordination)
		incidents.GET("/:id/coordination", h.getCoordination)
		incidents.PUT("/:id/coordination/status", h.setCoordinationStatus)
		incidents.POST("/:id/coordination/teams", h.addTeam)
		incidents.POST("/:id/coordination/teams/:teamId/tasks", h.addTask)
		incidents.PUT("/:id/coordination/teams/:teamId/tasks/:taskId/status", h.updateTaskStatus)
		incidents.POST("/:id/coordination/resources", h.addResource)
		incidents.POST("/:id/coordination/resources/:resourceId/allocate", h.allocateResource)
		incidents.POST("/:id/coordination/events", h.logEvent)
	}

	responders := protected.Group("/responders")
	{
		responders.POST("", h.registerResponder)
		responders.GET("", h.listResponders)
		responders.GET("/:id", h.getResponder)
		responders.PUT("/:id/availability", h.setAvailability)
		responders.POST("/:id/feedback", h.recordFeedback)
	}

	alerts := protected.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.GET("/unread-count", h.unreadCount)
		alerts.POST("/watch", h.watchAlerts)
		alerts.DELETE("/watch", h.unwatchAlerts)
		alerts.POST("/:id/acknowledge", h.acknowledgeAlert)
	}

	messages := protected.Group("/messages")
	{
		messages.POST("", h.sendMessage)
		messages.GET("", h.listMessages)
		messages.POST("/:id/read", h.markRead)
	}

	protected.GET("/stats", h.getStats)
}
