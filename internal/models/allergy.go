package models

// Allergy records a known allergen for a patient.
type Allergy struct {
	BaseModel
	PatientID string `gorm:"size:36;index;not null" json:"patientId"`
	Allergen  string `gorm:"size:255;not null" json:"allergen"`
	Reaction  string `gorm:"size:255" json:"reaction,omitempty"`
	Severity  string `gorm:"size:32" json:"severity,omitempty"`
	AddedBy   string `gorm:"size:36;not null" json:"addedBy"`
}
