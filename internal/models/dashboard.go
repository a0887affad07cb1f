package models

// DashboardSummary holds the headline counters. Absent counters stay nil.
type DashboardSummary struct {
	TotalStudents *int `json:"total_students"`
	TotalTeachers *int `json:"total_teachers"`
	TotalClasses  *int `json:"total_classes"`
	TotalSubjects *int `json:"total_subjects"`
}

// RecentAdmission is a dashboard notification about a newly admitted student.
type RecentAdmission struct {
	ID              ID     `json:"id"`
	Name            string `json:"name"`
	DateOfAdmission string `json:"date_of_admission"`
}

// ChartPoint is one bar of a dashboard chart. The backend labels enrollment
// points by month and popularity points by subject name.
type ChartPoint struct {
	Month       string `json:"month,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
	Count       int    `json:"count"`
}

// Label returns whichever label the backend provided.
func (p ChartPoint) Label() string {
	if p.SubjectName != "" {
		return p.SubjectName
	}
	return p.Month
}

// QuickLink is a dashboard shortcut.
type QuickLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SummaryCard is a rendered headline counter.
type SummaryCard struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// ChartSeries is a rendered chart.
type ChartSeries struct {
	Title  string       `json:"title"`
	Points []ChartEntry `json:"points"`
}

// ChartEntry is a rendered chart bar.
type ChartEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardView is the merged dashboard view model.
type DashboardView struct {
	State             ViewState         `json:"state"`
	Error             string            `json:"error,omitempty"`
	Summary           []SummaryCard     `json:"summary"`
	Notifications     []RecentAdmission `json:"notifications"`
	Enrollment        ChartSeries       `json:"enrollment"`
	SubjectPopularity ChartSeries       `json:"subject_popularity"`
	QuickLinks        []QuickLink       `json:"quick_links"`
}
