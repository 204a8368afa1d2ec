package patient

import (
	"errors"
	"net/http"

	"distress-service/helper"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patientService PatientService
}

func NewPatientHandler(patientService PatientService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
	}
}

func (h *PatientHandler) CreateProfile(c *gin.Context) {

	var req CreateProfileRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	p, err := h.patientService.CreateProfile(c, &req)
	if err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", p)
}

func (h *PatientHandler) GetProfile(c *gin.Context) {

	p, err := h.patientService.GetProfile(c, c.Param("id"))
	if err != nil {
		sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", p)
}

func (h *PatientHandler) GetStatus(c *gin.Context) {

	st, err := h.patientService.GetStatus(c, c.Param("id"))
	if err != nil {
		sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", st)
}

func (h *PatientHandler) AddContact(c *gin.Context) {

	var req AddContactRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	contact, err := h.patientService.AddContact(c, c.Param("id"), &req)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", contact)
}

func (h *PatientHandler) RemoveContact(c *gin.Context) {

	if err := h.patientService.RemoveContact(c, c.Param("id"), c.Param("contactId")); err != nil {
		sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)
}

func (h *PatientHandler) Enroll(c *gin.Context) {

	var req EnrollRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	res, err := h.patientService.Enroll(c, c.Param("id"), req.Code)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", res)
}

func sendServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPatientNotFound), errors.Is(err, ErrContactNotFound):
		helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
	case errors.Is(err, ErrContactNameRequired), errors.Is(err, ErrContactPhoneRequired), errors.Is(err, ErrDuplicateContact):
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
	default:
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
	}
}
