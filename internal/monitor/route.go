package monitor

import (
	"distress-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *MonitorHandler, secret string) {

	monitorGroup := r.Group("/api/v1/monitor", middleware.Secured(secret))
	{
		monitorGroup.GET("", handler.List)
		monitorGroup.GET("/metrics", handler.Metrics)
		monitorGroup.GET("/:id", handler.Get)
		monitorGroup.POST("/:id/start", handler.Start)
		monitorGroup.POST("/:id/stop", handler.Stop)
		monitorGroup.POST("/:id/camera", handler.SetCamera)
		monitorGroup.POST("/:id/grounding/close", handler.CloseGrounding)
		monitorGroup.POST("/:id/nudge", handler.Nudge)
		monitorGroup.POST("/:id/reading", handler.Reading)
		monitorGroup.POST("/:id/alert", handler.TriggerAlert)
	}
}
