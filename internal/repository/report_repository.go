package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/school-admin-console/internal/models"
)

// ReportRepository fetches assembled report cards from the backend.
type ReportRepository struct {
	backend Backend
}

// NewReportRepository constructs a report repository.
func NewReportRepository(backend Backend) *ReportRepository {
	return &ReportRepository{backend: backend}
}

// Fetch retrieves the report card of one student for a term and year.
func (r *ReportRepository) Fetch(ctx context.Context, studentID, term, year string) (*models.ReportCard, error) {
	path := "/report/" + url.PathEscape(studentID) + "/" + url.PathEscape(term) + "/" + url.PathEscape(year)
	var card models.ReportCard
	if err := r.backend.Do(ctx, http.MethodGet, path, nil, nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}
