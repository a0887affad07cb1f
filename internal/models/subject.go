package models

// Subject represents an academic subject.
type Subject struct {
	ID          ID     `json:"id"`
	SubjectName string `json:"subject_name"`
}

// EntityKey implements Entity.
func (s Subject) EntityKey() ID { return s.ID }
