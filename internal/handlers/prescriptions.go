package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-management-server/internal/middleware"
	"hospital-management-server/internal/storage"
	"hospital-management-server/internal/store"
	"hospital-management-server/internal/utils"
)

// PrescriptionHandler handles prescriptions and their documents.
type PrescriptionHandler struct {
	Store   *store.Store
	Objects *storage.ObjectStore
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(s *store.Store, objects *storage.ObjectStore) *PrescriptionHandler {
	return &PrescriptionHandler{Store: s, Objects: objects}
}

// CreatePrescriptionRequest represents the request body for writing a
// prescription.
type CreatePrescriptionRequest struct {
	PatientID     string  `json:"patientId" binding:"required,uuid"`
	AppointmentID *string `json:"appointmentId"`
	Content       string  `json:"content" binding:"required"`
}

// Create writes a prescription. The prescribing doctor is taken from the
// session.
func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req CreatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, ok := middleware.ProfileFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	prescription, err := h.Store.CreatePrescription(c.Request.Context(), store.NewPrescription{
		PatientID:       req.PatientID,
		DoctorProfileID: profile.ID,
		AppointmentID:   req.AppointmentID,
		Content:         req.Content,
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Prescription created successfully", prescription)
}

// List returns prescriptions, newest first. ?patientId= narrows to one
// patient.
func (h *PrescriptionHandler) List(c *gin.Context) {
	prescriptions, err := h.Store.GetPrescriptions(c.Request.Context(), c.Query("patientId"))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}

// UploadDocument stores a document for a prescription. The object key is
// {prescription_id}/{timestamp}-{filename}.
func (h *PrescriptionHandler) UploadDocument(c *gin.Context) {
	prescription, err := h.Store.GetPrescription(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "Error retrieving file from form: "+err.Error())
		return
	}
	defer file.Close()

	object, err := h.Objects.UploadPrescriptionDocument(prescription.ID, header.Filename, file)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	updated, err := h.Store.AttachPrescriptionDocument(c.Request.Context(), prescription.ID, object.Key)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Prescription document uploaded successfully", gin.H{
		"prescription": updated,
		"object":       object,
	})
}
