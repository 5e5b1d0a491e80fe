package models

import (
	"time"
)

// Patient represents a registered hospital patient. Appointments, lab
// requests, medications, allergies and prescriptions all reference it by
// patient_id; the store's constraints enforce that, not application code.
type Patient struct {
	BaseModel
	DisplayName string     `gorm:"size:255;not null" json:"displayName"`
	Phone       string     `gorm:"size:32" json:"phone,omitempty"`
	DOB         *time.Time `gorm:"column:dob" json:"dob,omitempty"`
	Gender      string     `gorm:"size:16" json:"gender,omitempty"`
}
