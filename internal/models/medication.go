package models

import (
	"time"
)

// Medication represents a prescribed medicine. A nil EndDate means the
// course is ongoing.
type Medication struct {
	BaseModel
	PatientID    string     `gorm:"size:36;index;not null" json:"patientId"`
	PrescribedBy string     `gorm:"size:36;index;not null" json:"prescribedBy"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Dose         string     `gorm:"size:100" json:"dose,omitempty"`
	Frequency    string     `gorm:"size:100" json:"frequency,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`

	Prescriber Profile `gorm:"foreignKey:PrescribedBy" json:"prescriber"`
}

// Period renders the medication period for display, e.g.
// "2025-01-10 - 2025-02-10" or "2025-01-10 - Ongoing".
func (m *Medication) Period() string {
	start := ""
	if m.StartDate != nil {
		start = m.StartDate.Format("2006-01-02")
	}
	if m.EndDate == nil {
		return start + " - Ongoing"
	}
	return start + " - " + m.EndDate.Format("2006-01-02")
}
