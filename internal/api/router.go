package api

import (
	"net/http"
	"time"

	"distress-service/internal/alert"
	"distress-service/internal/dashboard"
	"distress-service/internal/monitor"
	"distress-service/internal/patient"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Alerts   *alert.AlertHandler
	Patients *patient.PatientHandler
	Monitor  *monitor.MonitorHandler
	Hub      *dashboard.Hub
}

// HealthSource feeds the health endpoint.
type HealthSource struct {
	Manager *monitor.Manager
	Ledger  *alert.Ledger
	Hub     *dashboard.Hub
	Started time.Time
}

func NewRouter(h Handlers, health HealthSource, secret string) *gin.Engine {
	router := gin.Default()

	router.GET("/api/v1/health", Health(health))

	alert.RegisterRoutes(router, h.Alerts, secret)
	patient.RegisterRoutes(router, h.Patients, secret)
	monitor.RegisterRoutes(router, h.Monitor, secret)
	dashboard.RegisterRoutes(router, h.Hub, secret)

	return router
}

// Health is unsecured; consul polls it.
func Health(src HealthSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status": "ok",
			"uptime": time.Since(src.Started).Round(time.Second).String(),
		}
		if src.Manager != nil {
			body["sessions"] = len(src.Manager.Snapshots())
			body["monitor"] = src.Manager.Metrics().Snapshot()
		}
		if src.Ledger != nil {
			body["alerts"] = src.Ledger.Len()
			body["unacknowledged_alerts"] = len(src.Ledger.Unacknowledged())
		}
		if src.Hub != nil {
			body["dashboard_clients"] = src.Hub.Count()
		}
		c.JSON(http.StatusOK, body)
	}
}
