package models

// Student represents a learner as exposed by the school backend.
type Student struct {
	ID               ID     `json:"id"`
	Name             string `json:"name"`
	DateOfBirth      string `json:"date_of_birth"`
	DateOfAdmission  string `json:"date_of_admission"`
	Gender           string `json:"gender"`
	ClassID          ID     `json:"class_id"`
	ClassName        string `json:"class_name,omitempty"`
	NemisNo          string `json:"nemis_no"`
	AssessmentNo     string `json:"assessment_no"`
	PickupLocationID ID     `json:"pickup_location_id"`
}

// EntityKey implements Entity.
func (s Student) EntityKey() ID { return s.ID }

// StudentRow is a student with its foreign keys resolved for display.
type StudentRow struct {
	Student
	ClassName          string `json:"class_name"`
	PickupLocationName string `json:"pickup_location_name"`
}
