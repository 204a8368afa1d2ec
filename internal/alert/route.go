package alert

import (
	"distress-service/internal/middleware"
	"distress-service/pkg/constants"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *AlertHandler, secret string) {

	api := r.Group("/api/v1", middleware.Secured(secret))
	{
		api.POST("/notify", handler.Notify)
	}

	alertGroup := r.Group("/api/v1/alerts", middleware.Secured(secret), middleware.RequireRole(constants.RoleDoctor, constants.RoleService))
	{
		alertGroup.GET("", handler.ListAlerts)
		alertGroup.GET("/:id", handler.GetAlert)
		alertGroup.POST("/:id/acknowledge", handler.Acknowledge)
		alertGroup.DELETE("/:id", handler.Dismiss)
	}

	auditGroup := r.Group("/api/v1/audit", middleware.Secured(secret), middleware.RequireRole(constants.RoleDoctor, constants.RoleService))
	{
		auditGroup.GET("", handler.AuditTrail)
	}
}
