package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-management-server/internal/middleware"
	"hospital-management-server/internal/store"
	"hospital-management-server/internal/utils"
)

// PatientHandler handles patient registration and listing.
type PatientHandler struct {
	Store *store.Store
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(s *store.Store) *PatientHandler {
	return &PatientHandler{Store: s}
}

// RegisterPatientRequest represents the request body for patient
// registration. When a doctor is selected, an appointment is booked in the
// same request; without one, only the patient record is created.
type RegisterPatientRequest struct {
	DisplayName     string `json:"displayName" binding:"required"`
	Phone           string `json:"phone"`
	DOB             string `json:"dob"`
	Gender          string `json:"gender"`
	DoctorProfileID string `json:"doctorProfileId"`
	ScheduledAt     string `json:"scheduledAt"`
	ProblemSummary  string `json:"problemSummary"`
}

// RegisterPatientResponse carries the created patient and, when a doctor was
// selected, the appointment booked with it.
type RegisterPatientResponse struct {
	Patient     interface{} `json:"patient"`
	Appointment interface{} `json:"appointment,omitempty"`
}

// Register handles registering a new patient at the front desk.
func (h *PatientHandler) Register(c *gin.Context) {
	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var dob *time.Time
	if req.DOB != "" {
		parsed, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			utils.BadRequest(c, "Invalid dob format. Please use YYYY-MM-DD")
			return
		}
		dob = &parsed
	}

	patient, err := h.Store.CreatePatient(c.Request.Context(), store.NewPatient{
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		DOB:         dob,
		Gender:      req.Gender,
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	response := RegisterPatientResponse{Patient: patient}

	if req.DoctorProfileID != "" {
		scheduledAt := time.Now()
		if req.ScheduledAt != "" {
			parsed, err := time.Parse(time.RFC3339, req.ScheduledAt)
			if err != nil {
				utils.BadRequest(c, "Invalid scheduledAt format. Please use ISO 8601 (YYYY-MM-DDTHH:MM:SSZ)")
				return
			}
			scheduledAt = parsed
		}

		var receptionistID *string
		if profile, ok := middleware.ProfileFromContext(c); ok {
			id := profile.ID
			receptionistID = &id
		}

		appointment, err := h.Store.CreateAppointment(c.Request.Context(), store.NewAppointment{
			PatientID:             patient.ID,
			DoctorProfileID:       req.DoctorProfileID,
			ReceptionistProfileID: receptionistID,
			ScheduledAt:           scheduledAt,
			ProblemSummary:        req.ProblemSummary,
		})
		if err != nil {
			utils.FromError(c, err)
			return
		}
		response.Appointment = appointment
	}

	utils.Created(c, "Patient registered successfully", response)
}

// List returns all patients, newest first.
func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.Store.GetPatients(c.Request.Context())
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Patients fetched successfully", patients)
}

// Get returns a single patient by id.
func (h *PatientHandler) Get(c *gin.Context) {
	patient, err := h.Store.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Patient fetched successfully", patient)
}
