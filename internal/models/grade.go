package models

// Terms lists the academic terms accepted by the backend.
var Terms = []string{"Term 1", "Term 2", "Term 3"}

// ScoreGrade is one score a student obtained in a subject for a term.
type ScoreGrade struct {
	ID        ID       `json:"id"`
	StudentID ID       `json:"student_id"`
	SubjectID ID       `json:"subject_id"`
	Score     *float64 `json:"score"`
	Grade     string   `json:"grade,omitempty"`
	Term      string   `json:"term"`
	Year      ID       `json:"year"`
	ClassID   ID       `json:"class_id,omitempty"`
}

// EntityKey implements Entity.
func (s ScoreGrade) EntityKey() ID { return s.ID }

// ScoreGradeRow is a score with the subject resolved.
type ScoreGradeRow struct {
	ScoreGrade
	SubjectName string `json:"subject_name"`
}
