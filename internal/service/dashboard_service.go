package service

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/pkg/backend"
)

// DashboardFailureMessage is the single error shown when any feed fails.
const DashboardFailureMessage = "Failed to load dashboard data. Please try again later."

type dashboardFeeds interface {
	Summary(ctx context.Context) (json.RawMessage, error)
	Notifications(ctx context.Context) (json.RawMessage, error)
	EnrollmentChart(ctx context.Context) (json.RawMessage, error)
	SubjectPopularityChart(ctx context.Context) (json.RawMessage, error)
	QuickLinks(ctx context.Context) (json.RawMessage, error)
}

var summaryCards = []struct {
	key   string
	title string
}{
	{key: "total_students", title: "Total Students"},
	{key: "total_teachers", title: "Total Teachers"},
	{key: "total_classes", title: "Total Classes"},
	{key: "total_subjects", title: "Total Subjects"},
}

// DashboardService merges the dashboard feeds into one view.
type DashboardService struct {
	feeds  dashboardFeeds
	logger *zap.Logger
}

// NewDashboardService constructs a dashboard service.
func NewDashboardService(feeds dashboardFeeds, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{feeds: feeds, logger: logger}
}

// Load fetches the five feeds concurrently. The result is all or nothing: if
// any feed fails the view is Failed and carries no data.
func (s *DashboardService) Load(ctx context.Context) (*models.DashboardView, error) {
	var summary, notifications, enrollment, popularity, links json.RawMessage

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(name string, dest *json.RawMessage, call func(context.Context) (json.RawMessage, error)) {
		g.Go(func() error {
			raw, err := call(gctx)
			if err != nil {
				s.logger.Warn("dashboard feed failed",
					zap.String("feed", name),
					zap.Int("backend_status", backend.StatusCode(err)),
					zap.Error(err),
				)
				return err
			}
			*dest = raw
			return nil
		})
	}
	fetch("summary", &summary, s.feeds.Summary)
	fetch("notifications", &notifications, s.feeds.Notifications)
	fetch("enrollment", &enrollment, s.feeds.EnrollmentChart)
	fetch("subject_popularity", &popularity, s.feeds.SubjectPopularityChart)
	fetch("quick_links", &links, s.feeds.QuickLinks)

	if err := g.Wait(); err != nil {
		return &models.DashboardView{
			State:         models.ViewFailed,
			Error:         DashboardFailureMessage,
			Summary:       []models.SummaryCard{},
			Notifications: []models.RecentAdmission{},
			Enrollment:    models.ChartSeries{Title: "Enrollment", Points: []models.ChartEntry{}},
			SubjectPopularity: models.ChartSeries{
				Title:  "Subject Popularity",
				Points: []models.ChartEntry{},
			},
			QuickLinks: []models.QuickLink{},
		}, err
	}

	return &models.DashboardView{
		State:             models.ViewLoaded,
		Summary:           SummaryCards(DecodeSummary(summary)),
		Notifications:     decodeNotifications(notifications),
		Enrollment:        models.ChartSeries{Title: "Enrollment", Points: decodeChart(enrollment)},
		SubjectPopularity: models.ChartSeries{Title: "Subject Popularity", Points: decodeChart(popularity)},
		QuickLinks:        decodeQuickLinks(links),
	}, nil
}

// DecodeSummary reads the headline counters; anything absent or non-numeric stays nil.
func DecodeSummary(raw json.RawMessage) models.DashboardSummary {
	fields := map[string]interface{}{}
	_ = json.Unmarshal(raw, &fields)
	counter := func(key string) *int {
		value, ok := fields[key]
		if !ok || value == nil {
			return nil
		}
		n, err := cast.ToIntE(value)
		if err != nil {
			return nil
		}
		return &n
	}
	return models.DashboardSummary{
		TotalStudents: counter("total_students"),
		TotalTeachers: counter("total_teachers"),
		TotalClasses:  counter("total_classes"),
		TotalSubjects: counter("total_subjects"),
	}
}

// SummaryCards renders the counters in a fixed order, showing "N/A" for absent ones.
func SummaryCards(summary models.DashboardSummary) []models.SummaryCard {
	values := map[string]*int{
		"total_students": summary.TotalStudents,
		"total_teachers": summary.TotalTeachers,
		"total_classes":  summary.TotalClasses,
		"total_subjects": summary.TotalSubjects,
	}
	cards := make([]models.SummaryCard, 0, len(summaryCards))
	for _, card := range summaryCards {
		value := notAvailable
		if n := values[card.key]; n != nil {
			value = strconv.Itoa(*n)
		}
		cards = append(cards, models.SummaryCard{Key: card.key, Title: card.title, Value: value})
	}
	return cards
}

// arrayElements returns the elements of a JSON array, or none for any other shape.
func arrayElements(raw json.RawMessage) []json.RawMessage {
	var elements []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &elements) != nil {
		return nil
	}
	return elements
}

func decodeNotifications(raw json.RawMessage) []models.RecentAdmission {
	elements := arrayElements(raw)
	admissions := make([]models.RecentAdmission, 0, len(elements))
	for _, element := range elements {
		var admission models.RecentAdmission
		if json.Unmarshal(element, &admission) == nil {
			admissions = append(admissions, admission)
		}
	}
	return admissions
}

func decodeChart(raw json.RawMessage) []models.ChartEntry {
	elements := arrayElements(raw)
	entries := make([]models.ChartEntry, 0, len(elements))
	for _, element := range elements {
		var fields map[string]interface{}
		if json.Unmarshal(element, &fields) != nil {
			continue
		}
		point := models.ChartPoint{
			Month:       cast.ToString(fields["month"]),
			SubjectName: cast.ToString(fields["subject_name"]),
			Count:       cast.ToInt(fields["count"]),
		}
		entries = append(entries, models.ChartEntry{Label: point.Label(), Count: point.Count})
	}
	return entries
}

func decodeQuickLinks(raw json.RawMessage) []models.QuickLink {
	var envelope map[string]json.RawMessage
	if json.Unmarshal(raw, &envelope) == nil {
		raw = envelope["quick_links"]
	}
	elements := arrayElements(raw)
	links := make([]models.QuickLink, 0, len(elements))
	for _, element := range elements {
		var link models.QuickLink
		if json.Unmarshal(element, &link) == nil {
			links = append(links, link)
		}
	}
	return links
}
