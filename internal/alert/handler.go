package alert

import (
	"errors"
	"net/http"
	"strconv"

	"distress-service/helper"
	"distress-service/internal/patient"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	engine *Engine
	audit  AuditReader
}

func NewAlertHandler(engine *Engine, audit AuditReader) *AlertHandler {
	return &AlertHandler{
		engine: engine,
		audit:  audit,
	}
}

// Notify keeps the flat wire format dashboards already consume:
// {"error": "..."} on 400 and the bare Result on 200.
func (h *AlertHandler) Notify(c *gin.Context) {

	var req NotifyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if missingFields(req.PatientID, req.PatientName, req.DistressLevel) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	contacts := make([]patient.EmergencyContact, 0, len(req.Contacts))
	for _, cr := range req.Contacts {
		ec, err := patient.RestoreEmergencyContact(cr.ID, cr.Name, cr.Phone, cr.Relationship)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		contacts = append(contacts, ec)
	}

	res, err := h.engine.Notify(c, Request{
		PatientID:     req.PatientID,
		PatientName:   req.PatientName,
		DistressLevel: req.DistressLevel,
		Contacts:      contacts,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		case errors.Is(err, ErrInvalidLevel):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to process alert"})
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {

	var alerts []Alert
	if patientID := c.Query("patient_id"); patientID != "" {
		alerts = h.engine.Ledger().ForPatient(patientID)
	} else {
		alerts = h.engine.Ledger().List()
	}

	helper.SendSuccess(c, http.StatusOK, "success", alerts)
}

func (h *AlertHandler) GetAlert(c *gin.Context) {

	a, ok := h.engine.Ledger().Get(c.Param("id"))
	if !ok {
		helper.SendError(c, http.StatusNotFound, errors.New("alert not found"), helper.ErrNotFound)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", a)
}

// Acknowledge answers 200 for any id; "changed" reports whether an alert flipped.
func (h *AlertHandler) Acknowledge(c *gin.Context) {

	id := c.Param("id")
	_, found := h.engine.Ledger().Get(id)
	changed := h.engine.Ledger().Acknowledge(id)

	helper.SendSuccess(c, http.StatusOK, "success", gin.H{"acknowledged": found, "changed": changed})
}

func (h *AlertHandler) Dismiss(c *gin.Context) {

	if !h.engine.Ledger().Dismiss(c.Param("id")) {
		helper.SendError(c, http.StatusNotFound, errors.New("alert not found"), helper.ErrNotFound)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)
}

func (h *AlertHandler) AuditTrail(c *gin.Context) {

	patientID := c.Query("patient_id")
	if patientID == "" {
		helper.SendError(c, http.StatusBadRequest, errors.New("patient_id is required"), helper.ErrInvalidRequest)
		return
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	entries, err := h.audit.ForPatient(c, patientID, limit)
	if err != nil {
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", entries)
}
