package repository

import (
	"context"
	"encoding/json"
	"net/http"
)

// Dashboard endpoints on the backend.
const (
	dashboardSummaryPath           = "/dashboard/summary"
	dashboardNotificationsPath     = "/dashboard/notifications"
	dashboardEnrollmentPath        = "/dashboard/chart/enrollment"
	dashboardSubjectPopularityPath = "/dashboard/chart/subject-popularity"
	dashboardQuickLinksPath        = "/dashboard/quick-links"
)

// DashboardRepository reads the dashboard feeds as raw JSON; shaping is left to the service.
type DashboardRepository struct {
	backend Backend
}

// NewDashboardRepository constructs a dashboard repository.
func NewDashboardRepository(backend Backend) *DashboardRepository {
	return &DashboardRepository{backend: backend}
}

func (r *DashboardRepository) Summary(ctx context.Context) (json.RawMessage, error) {
	return r.get(ctx, dashboardSummaryPath)
}

func (r *DashboardRepository) Notifications(ctx context.Context) (json.RawMessage, error) {
	return r.get(ctx, dashboardNotificationsPath)
}

func (r *DashboardRepository) EnrollmentChart(ctx context.Context) (json.RawMessage, error) {
	return r.get(ctx, dashboardEnrollmentPath)
}

func (r *DashboardRepository) SubjectPopularityChart(ctx context.Context) (json.RawMessage, error) {
	return r.get(ctx, dashboardSubjectPopularityPath)
}

func (r *DashboardRepository) QuickLinks(ctx context.Context) (json.RawMessage, error) {
	return r.get(ctx, dashboardQuickLinksPath)
}

func (r *DashboardRepository) get(ctx context.Context, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := r.backend.Do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
