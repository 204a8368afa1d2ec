package monitor

import (
	"errors"
	"net/http"

	"distress-service/helper"
	"distress-service/internal/patient"

	"github.com/gin-gonic/gin"
)

type MonitorHandler struct {
	manager *Manager
}

func NewMonitorHandler(manager *Manager) *MonitorHandler {
	return &MonitorHandler{
		manager: manager,
	}
}

func (h *MonitorHandler) Start(c *gin.Context) {

	snap, err := h.manager.Start(c, c.Param("id"))
	if err != nil {
		sendManagerError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", snap)
}

func (h *MonitorHandler) Stop(c *gin.Context) {

	if err := h.manager.Stop(c, c.Param("id")); err != nil {
		sendManagerError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)
}

func (h *MonitorHandler) Get(c *gin.Context) {

	snap, err := h.manager.Get(c.Param("id"))
	if err != nil {
		sendManagerError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", snap)
}

func (h *MonitorHandler) List(c *gin.Context) {
	helper.SendSuccess(c, http.StatusOK, "success", h.manager.Snapshots())
}

func (h *MonitorHandler) SetCamera(c *gin.Context) {

	var req CameraRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	snap, err := h.manager.SetCamera(c, c.Param("id"), *req.Active)
	if err != nil {
		sendManagerError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", snap)
}

func (h *MonitorHandler) CloseGrounding(c *gin.Context) {

	snap, closed, err := h.manager.CloseGrounding(c, c.Param("id"))
	if err != nil {
		sendManagerError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", gin.H{"closed": closed, "session": snap})
}

func (h *MonitorHandler) Nudge(c *gin.Context) {

	var req NudgeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	snap, err := h.manager.Nudge(c, c.Param("id"), *req.Delta)
	if err != nil {
		sendManagerError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", snap)
}

func (h *MonitorHandler) Reading(c *gin.Context) {

	var req ReadingRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	snap, err := h.manager.Apply(c, c.Param("id"), *req.Score)
	if err != nil {
		sendManagerError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", snap)
}

func (h *MonitorHandler) TriggerAlert(c *gin.Context) {

	res, err := h.manager.TriggerAlert(c, c.Param("id"))
	if err != nil {
		sendManagerError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", res)
}

func (h *MonitorHandler) Metrics(c *gin.Context) {
	helper.SendSuccess(c, http.StatusOK, "success", h.manager.Metrics().Snapshot())
}

func sendManagerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, patient.ErrPatientNotFound):
		helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
	case errors.Is(err, ErrNudgeUnsupported):
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidOperation)
	default:
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
	}
}
