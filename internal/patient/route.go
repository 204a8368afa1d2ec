package patient

import (
	"distress-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *PatientHandler, secret string) {
	patientGroup := r.Group("/api/v1/patients", middleware.Secured(secret))
	{
		patientGroup.POST("", handler.CreateProfile)
		patientGroup.GET("/:id", handler.GetProfile)
		patientGroup.GET("/:id/status", handler.GetStatus)
		patientGroup.POST("/:id/contacts", handler.AddContact)
		patientGroup.DELETE("/:id/contacts/:contactId", handler.RemoveContact)
		patientGroup.POST("/:id/enroll", handler.Enroll)
	}
}
