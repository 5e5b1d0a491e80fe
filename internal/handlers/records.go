package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-management-server/internal/middleware"
	"hospital-management-server/internal/store"
	"hospital-management-server/internal/utils"
)

// RecordHandler handles the per-patient record views: medications and
// allergies.
type RecordHandler struct {
	Store *store.Store
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(s *store.Store) *RecordHandler {
	return &RecordHandler{Store: s}
}

// AddMedicationRequest represents the request body for adding a medication.
// An omitted endDate means the course is ongoing.
type AddMedicationRequest struct {
	Name      string `json:"name" binding:"required"`
	Dose      string `json:"dose"`
	Frequency string `json:"frequency"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// AddMedication records a medication for the patient in the URL. The
// prescriber is taken from the session.
func (h *RecordHandler) AddMedication(c *gin.Context) {
	var req AddMedicationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, ok := middleware.ProfileFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		utils.BadRequest(c, "Invalid startDate format. Please use YYYY-MM-DD")
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		utils.BadRequest(c, "Invalid endDate format. Please use YYYY-MM-DD")
		return
	}

	medication, err := h.Store.AddMedication(c.Request.Context(), store.NewMedication{
		PatientID:    c.Param("id"),
		PrescribedBy: profile.ID,
		Name:         req.Name,
		Dose:         req.Dose,
		Frequency:    req.Frequency,
		StartDate:    startDate,
		EndDate:      endDate,
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Medication added successfully", medication)
}

// ListMedications returns the patient's medications, newest first.
func (h *RecordHandler) ListMedications(c *gin.Context) {
	medications, err := h.Store.GetPatientMedications(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Medications fetched successfully", medications)
}

// AddAllergyRequest represents the request body for recording an allergy.
type AddAllergyRequest struct {
	Allergen string `json:"allergen" binding:"required"`
	Reaction string `json:"reaction"`
	Severity string `json:"severity"`
}

// AddAllergy records an allergy for the patient in the URL.
func (h *RecordHandler) AddAllergy(c *gin.Context) {
	var req AddAllergyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, ok := middleware.ProfileFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	allergy, err := h.Store.AddAllergy(c.Request.Context(), store.NewAllergy{
		PatientID: c.Param("id"),
		Allergen:  req.Allergen,
		Reaction:  req.Reaction,
		Severity:  req.Severity,
		AddedBy:   profile.ID,
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Allergy added successfully", allergy)
}

// ListAllergies returns the patient's allergies, newest first.
func (h *RecordHandler) ListAllergies(c *gin.Context) {
	allergies, err := h.Store.GetPatientAllergies(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Allergies fetched successfully", allergies)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
