package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusWaiting   AppointmentStatus = "waiting"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a scheduled visit. Status transitions are plain
// writes; the application encodes no transition function.
type Appointment struct {
	BaseModel
	PatientID             string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorProfileID       string            `gorm:"size:36;index;not null" json:"doctorProfileId"`
	ReceptionistProfileID *string           `gorm:"size:36" json:"receptionistProfileId,omitempty"`
	ScheduledAt           time.Time         `json:"scheduledAt"`
	ProblemSummary        string            `gorm:"type:text" json:"problemSummary,omitempty"`
	Status                AppointmentStatus `gorm:"size:20;default:'waiting'" json:"status"`

	// Display fields, joined in by the read queries
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient"`
	Doctor  Profile `gorm:"foreignKey:DoctorProfileID" json:"doctor"`
}
