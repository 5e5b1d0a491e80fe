// Package store is the domain facade: one method per domain operation, each
// a thin request/response pair over the relational store. Methods check
// required-field presence, run the query or mutation, and return the typed
// record or a typed failure. No retries, no pagination, no caching.
package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-management-server/internal/apperrors"
	"hospital-management-server/internal/models"
)

// Store wraps the database handle for domain operations.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New creates a Store.
func New(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log.With().Str("component", "store").Logger()}
}

func requireField(field, value string) error {
	if value == "" {
		return &apperrors.ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// NewPatient is the shape of a patient registration, minus server-generated
// fields.
type NewPatient struct {
	DisplayName string
	Phone       string
	DOB         *time.Time
	Gender      string
}

// CreatePatient persists a new patient and returns the full record.
func (s *Store) CreatePatient(ctx context.Context, input NewPatient) (*models.Patient, error) {
	if err := requireField("display_name", input.DisplayName); err != nil {
		return nil, err
	}

	patient := models.Patient{
		DisplayName: input.DisplayName,
		Phone:       input.Phone,
		DOB:         input.DOB,
		Gender:      input.Gender,
	}
	if err := s.db.WithContext(ctx).Create(&patient).Error; err != nil {
		return nil, apperrors.Remote("create patient", err)
	}
	s.log.Info().Str("patient_id", patient.ID).Msg("patient registered")
	return &patient, nil
}

// GetPatients returns all patients, newest first.
func (s *Store) GetPatients(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&patients).Error
	if err != nil {
		return nil, apperrors.Remote("list patients", err)
	}
	return patients, nil
}

// GetPatient fetches one patient by id.
func (s *Store) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.WithContext(ctx).First(&patient, "id = ?", id).Error; err != nil {
		return nil, apperrors.Remote("get patient", err)
	}
	return &patient, nil
}

// GetDoctors returns every doctor profile, for the registration form's
// doctor picker.
func (s *Store) GetDoctors(ctx context.Context) ([]models.Profile, error) {
	var doctors []models.Profile
	err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleDoctor).
		Order("full_name asc").
		Find(&doctors).Error
	if err != nil {
		return nil, apperrors.Remote("list doctors", err)
	}
	return doctors, nil
}

// NewAppointment is the shape of an appointment booking.
type NewAppointment struct {
	PatientID             string
	DoctorProfileID       string
	ReceptionistProfileID *string
	ScheduledAt           time.Time
	ProblemSummary        string
}

// CreateAppointment persists a new appointment with the default status.
func (s *Store) CreateAppointment(ctx context.Context, input NewAppointment) (*models.Appointment, error) {
	if err := requireField("patient_id", input.PatientID); err != nil {
		return nil, err
	}
	if err := requireField("doctor_profile_id", input.DoctorProfileID); err != nil {
		return nil, err
	}

	appointment := models.Appointment{
		PatientID:             input.PatientID,
		DoctorProfileID:       input.DoctorProfileID,
		ReceptionistProfileID: input.ReceptionistProfileID,
		ScheduledAt:           input.ScheduledAt,
		ProblemSummary:        input.ProblemSummary,
		Status:                models.StatusWaiting,
	}
	if err := s.db.WithContext(ctx).Create(&appointment).Error; err != nil {
		return nil, apperrors.Remote("create appointment", err)
	}
	return &appointment, nil
}

// GetAppointments returns appointments ordered by scheduled time, earliest
// first, with patient and doctor display fields joined in by the query
// itself. When doctorProfileID is empty the full set is returned.
func (s *Store) GetAppointments(ctx context.Context, doctorProfileID string) ([]models.Appointment, error) {
	query := s.db.WithContext(ctx).
		Joins("Patient").
		Joins("Doctor").
		Order("scheduled_at asc")
	if doctorProfileID != "" {
		query = query.Where("appointments.doctor_profile_id = ?", doctorProfileID)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, apperrors.Remote("list appointments", err)
	}
	return appointments, nil
}

// UpdateAppointmentStatus writes the given status through to the store. The
// facade encodes no transition rules.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.WithContext(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		return nil, apperrors.Remote("get appointment", err)
	}
	appointment.Status = status
	if err := s.db.WithContext(ctx).Save(&appointment).Error; err != nil {
		return nil, apperrors.Remote("update appointment status", err)
	}
	return &appointment, nil
}

// NewLabRequest is the shape of a lab test order.
type NewLabRequest struct {
	PatientID   string
	RequestedBy string
	Tests       []string
}

// CreateLabRequest persists a lab request. The test list is deduplicated and
// must be non-empty.
func (s *Store) CreateLabRequest(ctx context.Context, input NewLabRequest) (*models.LabRequest, error) {
	if err := requireField("patient_id", input.PatientID); err != nil {
		return nil, err
	}
	if err := requireField("requested_by", input.RequestedBy); err != nil {
		return nil, err
	}
	tests := models.SelectTests(input.Tests).Names()
	if len(tests) == 0 {
		return nil, &apperrors.ValidationError{Field: "tests", Message: "at least one test must be selected"}
	}

	request := models.LabRequest{
		PatientID:   input.PatientID,
		RequestedBy: input.RequestedBy,
		Tests:       tests,
		Status:      models.LabStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, apperrors.Remote("create lab request", err)
	}
	return &request, nil
}

// GetLabRequests returns lab requests newest first, joined against patient
// and requesting profile. When status is empty the full set is returned.
func (s *Store) GetLabRequests(ctx context.Context, status models.LabRequestStatus) ([]models.LabRequest, error) {
	query := s.db.WithContext(ctx).
		Joins("Patient").
		Joins("Requester").
		Order("lab_requests.created_at desc")
	if status != "" {
		query = query.Where("lab_requests.status = ?", status)
	}

	var requests []models.LabRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, apperrors.Remote("list lab requests", err)
	}
	return requests, nil
}

// GetLabRequest fetches one lab request by id.
func (s *Store) GetLabRequest(ctx context.Context, id string) (*models.LabRequest, error) {
	var request models.LabRequest
	if err := s.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, apperrors.Remote("get lab request", err)
	}
	return &request, nil
}

// AttachLabReport records the storage key of an uploaded report and marks
// the request completed.
func (s *Store) AttachLabReport(ctx context.Context, id, reportKey string) (*models.LabRequest, error) {
	var request models.LabRequest
	if err := s.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, apperrors.Remote("get lab request", err)
	}
	request.ReportKey = reportKey
	request.Status = models.LabStatusCompleted
	if err := s.db.WithContext(ctx).Save(&request).Error; err != nil {
		return nil, apperrors.Remote("attach lab report", err)
	}
	return &request, nil
}

// NewPrescription is the shape of a prescription.
type NewPrescription struct {
	PatientID       string
	DoctorProfileID string
	AppointmentID   *string
	Content         string
}

// CreatePrescription persists a prescription.
func (s *Store) CreatePrescription(ctx context.Context, input NewPrescription) (*models.Prescription, error) {
	if err := requireField("patient_id", input.PatientID); err != nil {
		return nil, err
	}
	if err := requireField("doctor_profile_id", input.DoctorProfileID); err != nil {
		return nil, err
	}
	if err := requireField("content", input.Content); err != nil {
		return nil, err
	}

	prescription := models.Prescription{
		PatientID:       input.PatientID,
		DoctorProfileID: input.DoctorProfileID,
		AppointmentID:   input.AppointmentID,
		Content:         input.Content,
	}
	if err := s.db.WithContext(ctx).Create(&prescription).Error; err != nil {
		return nil, apperrors.Remote("create prescription", err)
	}
	return &prescription, nil
}

// GetPrescriptions returns prescriptions newest first, joined against patient
// and doctor. When patientID is empty the full set is returned.
func (s *Store) GetPrescriptions(ctx context.Context, patientID string) ([]models.Prescription, error) {
	query := s.db.WithContext(ctx).
		Joins("Patient").
		Joins("Doctor").
		Order("prescriptions.created_at desc")
	if patientID != "" {
		query = query.Where("prescriptions.patient_id = ?", patientID)
	}

	var prescriptions []models.Prescription
	if err := query.Find(&prescriptions).Error; err != nil {
		return nil, apperrors.Remote("list prescriptions", err)
	}
	return prescriptions, nil
}

// GetPrescription fetches one prescription by id.
func (s *Store) GetPrescription(ctx context.Context, id string) (*models.Prescription, error) {
	var prescription models.Prescription
	if err := s.db.WithContext(ctx).First(&prescription, "id = ?", id).Error; err != nil {
		return nil, apperrors.Remote("get prescription", err)
	}
	return &prescription, nil
}

// AttachPrescriptionDocument records the storage key of an uploaded document.
func (s *Store) AttachPrescriptionDocument(ctx context.Context, id, documentKey string) (*models.Prescription, error) {
	var prescription models.Prescription
	if err := s.db.WithContext(ctx).First(&prescription, "id = ?", id).Error; err != nil {
		return nil, apperrors.Remote("get prescription", err)
	}
	prescription.DocumentKey = documentKey
	if err := s.db.WithContext(ctx).Save(&prescription).Error; err != nil {
		return nil, apperrors.Remote("attach prescription document", err)
	}
	return &prescription, nil
}

// NewMedication is the shape of a medication entry. A nil EndDate means the
// course is ongoing.
type NewMedication struct {
	PatientID    string
	PrescribedBy string
	Name         string
	Dose         string
	Frequency    string
	StartDate    *time.Time
	EndDate      *time.Time
}

// AddMedication persists a medication entry for a patient.
func (s *Store) AddMedication(ctx context.Context, input NewMedication) (*models.Medication, error) {
	if err := requireField("patient_id", input.PatientID); err != nil {
		return nil, err
	}
	if err := requireField("prescribed_by", input.PrescribedBy); err != nil {
		return nil, err
	}
	if err := requireField("name", input.Name); err != nil {
		return nil, err
	}

	medication := models.Medication{
		PatientID:    input.PatientID,
		PrescribedBy: input.PrescribedBy,
		Name:         input.Name,
		Dose:         input.Dose,
		Frequency:    input.Frequency,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
	}
	if err := s.db.WithContext(ctx).Create(&medication).Error; err != nil {
		return nil, apperrors.Remote("add medication", err)
	}
	return &medication, nil
}

// GetPatientMedications returns a patient's medications newest first, with
// the prescribing profile joined in.
func (s *Store) GetPatientMedications(ctx context.Context, patientID string) ([]models.Medication, error) {
	if err := requireField("patient_id", patientID); err != nil {
		return nil, err
	}

	var medications []models.Medication
	err := s.db.WithContext(ctx).
		Joins("Prescriber").
		Where("medications.patient_id = ?", patientID).
		Order("medications.created_at desc").
		Find(&medications).Error
	if err != nil {
		return nil, apperrors.Remote("list medications", err)
	}
	return medications, nil
}

// NewAllergy is the shape of an allergy entry.
type NewAllergy struct {
	PatientID string
	Allergen  string
	Reaction  string
	Severity  string
	AddedBy   string
}

// AddAllergy persists an allergy entry for a patient.
func (s *Store) AddAllergy(ctx context.Context, input NewAllergy) (*models.Allergy, error) {
	if err := requireField("patient_id", input.PatientID); err != nil {
		return nil, err
	}
	if err := requireField("allergen", input.Allergen); err != nil {
		return nil, err
	}
	if err := requireField("added_by", input.AddedBy); err != nil {
		return nil, err
	}

	allergy := models.Allergy{
		PatientID: input.PatientID,
		Allergen:  input.Allergen,
		Reaction:  input.Reaction,
		Severity:  input.Severity,
		AddedBy:   input.AddedBy,
	}
	if err := s.db.WithContext(ctx).Create(&allergy).Error; err != nil {
		return nil, apperrors.Remote("add allergy", err)
	}
	return &allergy, nil
}

// GetPatientAllergies returns a patient's allergies newest first.
func (s *Store) GetPatientAllergies(ctx context.Context, patientID string) ([]models.Allergy, error) {
	if err := requireField("patient_id", patientID); err != nil {
		return nil, err
	}

	var allergies []models.Allergy
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&allergies).Error
	if err != nil {
		return nil, apperrors.Remote("list allergies", err)
	}
	return allergies, nil
}
