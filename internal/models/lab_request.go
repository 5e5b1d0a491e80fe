package models

// LabRequestStatus represents the processing state of a lab request.
type LabRequestStatus string

const (
	LabStatusPending   LabRequestStatus = "pending"
	LabStatusCompleted LabRequestStatus = "completed"
)

// LabTestCatalogue lists the orderable blood tests.
var LabTestCatalogue = []string{"CBC", "Blood Sugar", "Lipid Profile", "Liver Function"}

// LabRequest represents an order for one or more lab tests on a patient.
// Tests is a non-empty set.
type LabRequest struct {
	BaseModel
	PatientID   string           `gorm:"size:36;index;not null" json:"patientId"`
	RequestedBy string           `gorm:"size:36;index;not null" json:"requestedBy"`
	Tests       []string         `gorm:"serializer:json" json:"tests"`
	Status      LabRequestStatus `gorm:"size:20;default:'pending'" json:"status"`
	ReportKey   string           `gorm:"size:512" json:"reportKey,omitempty"`

	Patient   Patient `gorm:"foreignKey:PatientID" json:"patient"`
	Requester Profile `gorm:"foreignKey:RequestedBy" json:"requester"`
}

// TestSelection is a set of lab test names under construction. Toggling a
// name that is already selected removes it again, so a double toggle is a
// no-op.
type TestSelection map[string]struct{}

// Toggle flips membership of the given test name.
func (s TestSelection) Toggle(name string) {
	if _, ok := s[name]; ok {
		delete(s, name)
		return
	}
	s[name] = struct{}{}
}

// Contains reports whether name is currently selected.
func (s TestSelection) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the selected tests in catalogue order, with any names outside
// the catalogue appended as-is.
func (s TestSelection) Names() []string {
	names := make([]string, 0, len(s))
	for _, name := range LabTestCatalogue {
		if s.Contains(name) {
			names = append(names, name)
		}
	}
	for name := range s {
		if !inCatalogue(name) {
			names = append(names, name)
		}
	}
	return names
}

func inCatalogue(name string) bool {
	for _, t := range LabTestCatalogue {
		if t == name {
			return true
		}
	}
	return false
}

// SelectTests builds a selection from a list of names, deduplicating repeats.
func SelectTests(names []string) TestSelection {
	s := make(TestSelection, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}
