package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-console/internal/models"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
)

type memoryRepo[T models.Entity] struct {
	items   []T
	err     error
	queries []url.Values
	pages   []int
	writes  []writeCall
}

func (m *memoryRepo[T]) ListPage(_ context.Context, query url.Values, page, perPage int) (models.Page[T], error) {
	m.queries = append(m.queries, query)
	m.pages = append(m.pages, page)
	if m.err != nil {
		return models.Page[T]{}, m.err
	}
	total := (len(m.items) + perPage - 1) / perPage
	if total < 1 {
		total = 1
	}
	if page > total {
		page = total
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > len(m.items) {
		end = len(m.items)
	}
	return models.Page[T]{Items: append([]T(nil), m.items[start:end]...), Cursor: models.PageCursor{CurrentPage: page, TotalPages: total, PerPage: perPage}}, nil
}

func (m *memoryRepo[T]) ListAll(context.Context, int) ([]T, error) {
	return m.items, m.err
}

func (m *memoryRepo[T]) Create(_ context.Context, body map[string]interface{}) (T, error) {
	var zero T
	m.writes = append(m.writes, writeCall{method: "POST", body: body})
	return zero, m.err
}

func (m *memoryRepo[T]) Update(_ context.Context, id models.ID, body map[string]interface{}) (T, error) {
	var zero T
	m.writes = append(m.writes, writeCall{method: "PUT", id: id, body: body})
	return zero, m.err
}

func (m *memoryRepo[T]) Delete(_ context.Context, id models.ID) error {
	m.writes = append(m.writes, writeCall{method: "DELETE", id: id})
	return m.err
}

type testRepos struct {
	students  *memoryRepo[models.Student]
	teachers  *memoryRepo[models.Teacher]
	classes   *memoryRepo[models.ClassRoom]
	payments  *memoryRepo[models.FeePayment]
	locations *memoryRepo[models.PickupLocation]
}

func newTestRegistry(perPage int) (*ResourceRegistry, testRepos) {
	repos := testRepos{
		students: &memoryRepo[models.Student]{items: []models.Student{
			{ID: "1", Name: "Jane Doe", Gender: "Female", ClassID: "3", PickupLocationID: "9"},
			{ID: "2", Name: "John Roe", Gender: "Male", ClassID: "4"},
			{ID: "3", Name: "Janet Poe", Gender: "Female", ClassID: "3"},
		}},
		teachers:  &memoryRepo[models.Teacher]{items: []models.Teacher{{ID: "5", FirstName: "Ann", LastName: "Lee", SubjectID: "2"}}},
		classes:   &memoryRepo[models.ClassRoom]{items: []models.ClassRoom{{ID: "3", ClassName: "Grade 4 East"}, {ID: "4", ClassName: "Grade 5 West"}}},
		payments:  &memoryRepo[models.FeePayment]{},
		locations: &memoryRepo[models.PickupLocation]{items: []models.PickupLocation{{ID: "9", LocationName: "Gate A"}}},
	}
	registry := NewResourceRegistry(Repositories{
		Students:        repos.students,
		Teachers:        repos.teachers,
		Classes:         repos.classes,
		Subjects:        &memoryRepo[models.Subject]{items: []models.Subject{{ID: "2", SubjectName: "Math"}}},
		Scores:          &memoryRepo[models.ScoreGrade]{},
		FeeStructures:   &memoryRepo[models.FeeStructure]{},
		FeePayments:     repos.payments,
		PickupLocations: repos.locations,
	}, NewLookupService(nil, 0, nil), RegistryOptions{PerPage: perPage}, nil)
	return registry, repos
}

func TestRegistryListsEveryResource(t *testing.T) {
	registry, _ := newTestRegistry(10)
	names := make([]string, 0)
	for _, spec := range registry.Specs() {
		names = append(names, spec.Name)
	}
	assert.Equal(t, []string{
		ResourceStudents, ResourceTeachers, ResourceClasses, ResourceSubjects,
		ResourceScores, ResourceFeeStructures, ResourceFeePayments, ResourcePickupLocations,
	}, names)

	_, ok := registry.Get("parents")
	assert.False(t, ok)
}

func TestResourceListResolvesNamesAndFilters(t *testing.T) {
	registry, _ := newTestRegistry(10)
	svc, ok := registry.Get(ResourceStudents)
	require.True(t, ok)

	view, err := svc.List(context.Background(), ListRequest{Page: 1, Filters: map[string]string{"class_name": "east"}})
	require.NoError(t, err)
	assert.Equal(t, models.ViewLoaded, view.State)

	rows := view.Items.([]models.StudentRow)
	require.Len(t, rows, 2)
	assert.Equal(t, "Grade 4 East", rows[0].ClassName)
	assert.Equal(t, "Gate A", rows[0].PickupLocationName)
	assert.Equal(t, "N/A", rows[1].PickupLocationName)

	dataset := view.Dataset()
	assert.Equal(t, "ID", dataset.Headers[0])
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, []string{"1", "Jane Doe", "", "Female", "Grade 4 East", "", "", "", "Gate A"}, dataset.Rows[0])
}

func TestResourceListRejectsMalformedFilterLocally(t *testing.T) {
	registry, repos := newTestRegistry(10)
	svc, _ := registry.Get(ResourceStudents)

	_, err := svc.List(context.Background(), ListRequest{Filters: map[string]string{"shoe_size": "9"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repos.students.pages)
}

func TestResourceListTeachersSearchOnServer(t *testing.T) {
	registry, repos := newTestRegistry(10)
	svc, _ := registry.Get(ResourceTeachers)

	view, err := svc.List(context.Background(), ListRequest{Search: "zzz"})
	require.NoError(t, err)
	require.Len(t, repos.teachers.queries, 1)
	assert.Equal(t, "zzz", repos.teachers.queries[0].Get("search"))
	rows := view.Items.([]models.TeacherRow)
	require.Len(t, rows, 1)
	assert.Equal(t, "Math", rows[0].SubjectName)
}

func TestResourceListNavigation(t *testing.T) {
	registry, repos := newTestRegistry(2)
	svc, _ := registry.Get(ResourceStudents)

	view, err := svc.List(context.Background(), ListRequest{Nav: NavNext, Cursor: models.PageCursor{CurrentPage: 1, TotalPages: 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Cursor.CurrentPage)
	assert.Len(t, view.Items.([]models.StudentRow), 1)

	last, err := svc.List(context.Background(), ListRequest{Nav: NavNext, Cursor: models.PageCursor{CurrentPage: 2, TotalPages: 2}})
	require.NoError(t, err)
	assert.Equal(t, view.Cursor, last.Cursor)
	assert.Equal(t, view.Items, last.Items)
	assert.Equal(t, []int{2, 2}, repos.students.pages)
}

func TestResourceListFailure(t *testing.T) {
	registry, repos := newTestRegistry(10)
	repos.students.err = appErrors.ErrBackendUnavailable
	svc, _ := registry.Get(ResourceStudents)

	view, err := svc.List(context.Background(), ListRequest{Page: 1})
	require.Error(t, err)
	assert.Equal(t, models.ViewFailed, view.State)
	assert.Equal(t, "Failed to load students!", view.Error)
}

func TestResourceCreateReloadsCurrentPage(t *testing.T) {
	registry, repos := newTestRegistry(2)
	svc, _ := registry.Get(ResourceClasses)

	result, err := svc.Create(context.Background(), map[string]interface{}{"class_name": "Grade 6", "teacher_id": "5"}, models.PageCursor{CurrentPage: 1, TotalPages: 1})
	require.NoError(t, err)
	assert.Equal(t, "Class added successfully!", result.Notice.Message)
	require.NotNil(t, result.List)
	assert.Equal(t, models.ViewLoaded, result.List.State)
	require.Len(t, repos.classes.writes, 1)
	assert.Equal(t, "5", repos.classes.writes[0].body["teacher_id"])
}

func TestResourceUpdateUnsupported(t *testing.T) {
	registry, repos := newTestRegistry(10)
	svc, _ := registry.Get(ResourceFeePayments)

	result, err := svc.Update(context.Background(), "5", map[string]interface{}{"amount": 10}, models.PageCursor{})
	assert.ErrorIs(t, err, appErrors.ErrUnsupported)
	assert.Equal(t, models.NoticeError, result.Notice.Level)
	assert.Empty(t, repos.payments.writes)
}

func TestResourceFormOffersReferenceOptions(t *testing.T) {
	registry, _ := newTestRegistry(10)
	svc, _ := registry.Get(ResourceStudents)

	form := svc.Form(context.Background())
	assert.Equal(t, []models.Reference{{ID: "3", Name: "Grade 4 East"}, {ID: "4", Name: "Grade 5 West"}}, form.Options["class_id"])
	assert.Equal(t, []models.Reference{{ID: "9", Name: "Gate A"}}, form.Options["pickup_location_id"])
	assert.NotContains(t, form.Options, "name")
}
