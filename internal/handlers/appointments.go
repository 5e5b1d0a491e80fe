package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-management-server/internal/middleware"
	"hospital-management-server/internal/models"
	"hospital-management-server/internal/store"
	"hospital-management-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Store *store.Store
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(s *store.Store) *AppointmentHandler {
	return &AppointmentHandler{Store: s}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	PatientID       string    `json:"patientId" binding:"required,uuid"`
	DoctorProfileID string    `json:"doctorProfileId" binding:"required,uuid"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	ProblemSummary  string    `json:"problemSummary"`
}

// Create books a new appointment. Initiated at the front desk; the
// receptionist's profile is recorded alongside.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var receptionistID *string
	if profile, ok := middleware.ProfileFromContext(c); ok && profile.Role == models.RoleReceptionist {
		id := profile.ID
		receptionistID = &id
	}

	appointment, err := h.Store.CreateAppointment(c.Request.Context(), store.NewAppointment{
		PatientID:             req.PatientID,
		DoctorProfileID:       req.DoctorProfileID,
		ReceptionistProfileID: receptionistID,
		ScheduledAt:           req.ScheduledAt,
		ProblemSummary:        req.ProblemSummary,
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", appointment)
}

// List returns appointments ordered by scheduled time. Doctors see their own
// queue; other roles see the full list or can filter with ?doctorId=.
func (h *AppointmentHandler) List(c *gin.Context) {
	profile, ok := middleware.ProfileFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	doctorID := c.Query("doctorId")
	if profile.Role == models.RoleDoctor {
		doctorID = profile.ID
	}

	appointments, err := h.Store.GetAppointments(c.Request.Context(), doctorID)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// UpdateStatusRequest represents the request body for updating an
// appointment's status.
type UpdateStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=waiting completed cancelled"`
}

// UpdateStatus writes the new status through. There is no transition table:
// the store accepts any recognized status.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Store.UpdateAppointmentStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}
