package dashboard

import (
	"distress-service/internal/middleware"
	"distress-service/pkg/constants"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, hub *Hub, secret string) {

	dashboardGroup := r.Group("/api/v1/dashboard", middleware.Secured(secret), middleware.RequireRole(constants.RoleDoctor, constants.RoleService))
	{
		dashboardGroup.GET("/ws", hub.ServeWS)
	}
}
