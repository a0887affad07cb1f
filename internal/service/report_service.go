package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/pkg/backend"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
	"github.com/noah-isme/school-admin-console/pkg/export"
)

const reportTitle = "Student Report Card"

// ReportTableHeaders is the fixed header row of the subject table.
var ReportTableHeaders = []string{"Subject Name", "Score", "Grade"}

// ReportRequest identifies one report card.
type ReportRequest struct {
	StudentID string `json:"student_id"`
	Term      string `json:"term"`
	Year      string `json:"year"`
}

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Name    string
	Content []byte
}

type reportFetcher interface {
	Fetch(ctx context.Context, studentID, term, year string) (*models.ReportCard, error)
}

type documentRenderer interface {
	RenderDocument(doc export.Document) ([]byte, error)
}

// ReportService fetches report cards and turns them into display and PDF form.
type ReportService struct {
	repo     reportFetcher
	renderer documentRenderer
	logger   *zap.Logger
}

// NewReportService constructs a report service.
func NewReportService(repo reportFetcher, renderer documentRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, renderer: renderer, logger: logger}
}

// ValidateReportRequest rejects requests missing any of student id, term and
// year, or carrying an unknown term or a non-numeric year.
func ValidateReportRequest(req ReportRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(req.StudentID) == "" {
		fields["student_id"] = "student_id is required"
	}
	term := strings.TrimSpace(req.Term)
	switch {
	case term == "":
		fields["term"] = "term is required"
	case !isTerm(term):
		fields["term"] = "term must be one of " + strings.Join(models.Terms, ", ")
	}
	year := strings.TrimSpace(req.Year)
	switch {
	case year == "":
		fields["year"] = "year is required"
	default:
		if _, err := strconv.Atoi(year); err != nil {
			fields["year"] = "year must be numeric"
		}
	}
	if len(fields) > 0 {
		return appErrors.WithFields(appErrors.ErrValidation, "student, term and year are required", fields)
	}
	return nil
}

// Display fetches and assembles the report card for req.
func (s *ReportService) Display(ctx context.Context, req ReportRequest) (*models.DisplayReport, error) {
	if err := ValidateReportRequest(req); err != nil {
		return nil, err
	}
	card, err := s.repo.Fetch(ctx, strings.TrimSpace(req.StudentID), strings.TrimSpace(req.Term), strings.TrimSpace(req.Year))
	if err != nil {
		s.logger.Warn("report fetch failed",
			zap.String("student_id", req.StudentID),
			zap.String("term", req.Term),
			zap.String("year", req.Year),
			zap.Int("backend_status", backend.StatusCode(err)),
			zap.Error(err),
		)
		return nil, err
	}
	if card.StudentID.IsZero() {
		card.StudentID = models.ID(strings.TrimSpace(req.StudentID))
	}
	if card.Term == "" {
		card.Term = strings.TrimSpace(req.Term)
	}
	if card.Year.IsZero() {
		card.Year = models.ID(strings.TrimSpace(req.Year))
	}
	report := AssembleReport(*card)
	return &report, nil
}

// PDF renders the report card for req as a PDF attachment.
func (s *ReportService) PDF(ctx context.Context, req ReportRequest) (*ReportFile, error) {
	report, err := s.Display(ctx, req)
	if err != nil {
		return nil, err
	}
	content, err := s.renderer.RenderDocument(BuildReportDocument(*report))
	if err != nil {
		s.logger.Error("report rendering failed", zap.String("student_id", report.StudentID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &ReportFile{Name: report.FileName, Content: content}, nil
}

// AssembleReport resolves every display field of a report card. Subjects keep
// their order and each missing value falls back to "N/A" on its own.
func AssembleReport(card models.ReportCard) models.DisplayReport {
	subjects := make([]models.DisplaySubject, 0, len(card.Subjects))
	for _, subject := range card.Subjects {
		subjects = append(subjects, models.DisplaySubject{
			SubjectName: textOrNA(subject.SubjectName),
			Score:       displayValue(subject.Score),
			Grade:       displayValue(subject.Grade),
		})
	}
	return models.DisplayReport{
		StudentID:         card.StudentID.String(),
		Term:              card.Term,
		Year:              card.Year.String(),
		AveragePercentage: formatPercentage(card.AveragePercentage),
		AverageGrade:      displayValue(card.AverageGrade),
		Subjects:          subjects,
		FileName:          ReportFileName(card.StudentID.String()),
	}
}

// BuildReportDocument maps a display report onto the printable layout: a
// title, five summary lines and the subject table.
func BuildReportDocument(report models.DisplayReport) export.Document {
	rows := make([][]string, 0, len(report.Subjects))
	for _, subject := range report.Subjects {
		rows = append(rows, []string{subject.SubjectName, subject.Score, subject.Grade})
	}
	return export.Document{
		Title: reportTitle,
		Lines: []string{
			"Student ID: " + report.StudentID,
			"Term: " + report.Term,
			"Year: " + report.Year,
			"Average Percentage: " + report.AveragePercentage,
			"Average Grade: " + report.AverageGrade,
		},
		TableTitle: "Subjects",
		Table: export.Dataset{
			Headers: append([]string(nil), ReportTableHeaders...),
			Rows:    rows,
		},
	}
}

// ReportFileName is the download name of a student's report.
func ReportFileName(studentID string) string {
	return studentID + "-report.pdf"
}

func formatPercentage(value interface{}) string {
	f, ok := number(value)
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%.2f%%", f)
}

func displayValue(value interface{}) string {
	if f, ok := number(value); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if s, ok := value.(string); ok {
		return textOrNA(s)
	}
	return notAvailable
}

func textOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

// number accepts JSON numbers only; numeric-looking strings are text.
func number(value interface{}) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isTerm(term string) bool {
	for _, candidate := range models.Terms {
		if candidate == term {
			return true
		}
	}
	return false
}
