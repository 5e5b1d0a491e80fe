package models

// Prescription represents a doctor's written prescription for a patient,
// optionally tied to the appointment it was issued during.
type Prescription struct {
	BaseModel
	PatientID       string  `gorm:"size:36;index;not null" json:"patientId"`
	DoctorProfileID string  `gorm:"size:36;index;not null" json:"doctorProfileId"`
	AppointmentID   *string `gorm:"size:36" json:"appointmentId,omitempty"`
	Content         string  `gorm:"type:text;not null" json:"content"`
	DocumentKey     string  `gorm:"size:512" json:"documentKey,omitempty"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"patient"`
	Doctor  Profile `gorm:"foreignKey:DoctorProfileID" json:"doctor"`
}
