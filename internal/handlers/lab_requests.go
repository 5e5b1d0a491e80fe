package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-management-server/internal/middleware"
	"hospital-management-server/internal/models"
	"hospital-management-server/internal/storage"
	"hospital-management-server/internal/store"
	"hospital-management-server/internal/utils"
)

// LabRequestHandler handles lab test orders and report uploads.
type LabRequestHandler struct {
	Store   *store.Store
	Objects *storage.ObjectStore
}

// NewLabRequestHandler creates a new LabRequestHandler.
func NewLabRequestHandler(s *store.Store, objects *storage.ObjectStore) *LabRequestHandler {
	return &LabRequestHandler{Store: s, Objects: objects}
}

// CreateLabRequestRequest represents the request body for ordering lab tests.
type CreateLabRequestRequest struct {
	PatientID string   `json:"patientId" binding:"required,uuid"`
	Tests     []string `json:"tests" binding:"required,min=1"`
}

// Create orders lab tests for a patient. The requesting doctor is taken from
// the session.
func (h *LabRequestHandler) Create(c *gin.Context) {
	var req CreateLabRequestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, ok := middleware.ProfileFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	request, err := h.Store.CreateLabRequest(c.Request.Context(), store.NewLabRequest{
		PatientID:   req.PatientID,
		RequestedBy: profile.ID,
		Tests:       req.Tests,
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Lab request created successfully", request)
}

// List returns lab requests, newest first. ?status= narrows to one status.
func (h *LabRequestHandler) List(c *gin.Context) {
	status := models.LabRequestStatus(c.Query("status"))

	requests, err := h.Store.GetLabRequests(c.Request.Context(), status)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Lab requests fetched successfully", requests)
}

// UploadReport stores the report file for a lab request and marks it
// completed. The object key is {patient_id}/{timestamp}-{filename}.
func (h *LabRequestHandler) UploadReport(c *gin.Context) {
	request, err := h.Store.GetLabRequest(c.Request.Context(), c.Param("id"))
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

	object, err := h.Objects.UploadLabReport(request.PatientID, header.Filename, file)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	updated, err := h.Store.AttachLabReport(c.Request.Context(), request.ID, object.Key)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Lab report uploaded successfully", gin.H{
		"labRequest": updated,
		"object":     object,
	})
}
