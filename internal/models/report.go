package models

// ReportCard is the report payload assembled by the backend for one student, term and year.
// Scalar fields are kept loose because the backend omits or nulls them freely.
type ReportCard struct {
	StudentID         ID              `json:"student_id"`
	Term              string          `json:"term"`
	Year              ID              `json:"year"`
	AveragePercentage interface{}     `json:"average_percentage"`
	AverageGrade      interface{}     `json:"average_grade"`
	Subjects          []ReportSubject `json:"subjects"`
}

// ReportSubject is one subject row of a report card.
type ReportSubject struct {
	SubjectName string      `json:"subject_name"`
	Score       interface{} `json:"score"`
	Grade       interface{} `json:"grade"`
}

// DisplayReport is a report card with every display field resolved.
type DisplayReport struct {
	StudentID         string           `json:"student_id"`
	Term              string           `json:"term"`
	Year              string           `json:"year"`
	AveragePercentage string           `json:"average_percentage"`
	AverageGrade      string           `json:"average_grade"`
	Subjects          []DisplaySubject `json:"subjects"`
	FileName          string           `json:"file_name"`
}

// DisplaySubject is a subject row ready for rendering.
type DisplaySubject struct {
	SubjectName string `json:"subject_name"`
	Score       string `json:"score"`
	Grade       string `json:"grade"`
}
