package models

import "strings"

// Teacher represents a member of staff.
type Teacher struct {
	ID              ID     `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	DateOfAdmission string `json:"date_of_admission"`
	SubjectID       ID     `json:"subject_id"`
}

// EntityKey implements Entity.
func (t Teacher) EntityKey() ID { return t.ID }

// FullName joins first and last name the way the class form lists teachers.
func (t Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// TeacherRow is a teacher with the subject resolved.
type TeacherRow struct {
	Teacher
	SubjectName string `json:"subject_name"`
}
