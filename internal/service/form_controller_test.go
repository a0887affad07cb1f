package service

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-console/internal/models"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
)

type writeCall struct {
	method string
	id     models.ID
	body   map[string]interface{}
}

// fakeStudentBackend serves a single in-memory student collection.
type fakeStudentBackend struct {
	mu       sync.Mutex
	students []models.Student
	writes   []writeCall
	pages    []int
	writeErr error
	nextID   int
}

func (f *fakeStudentBackend) ListPage(_ context.Context, _ url.Values, page, perPage int) (models.Page[models.Student], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	items := append([]models.Student(nil), f.students...)
	return models.Page[models.Student]{Items: items, Cursor: models.PageCursor{CurrentPage: page, TotalPages: page, PerPage: perPage}}, nil
}

func (f *fakeStudentBackend) ListAll(ctx context.Context, perPage int) ([]models.Student, error) {
	page, err := f.ListPage(ctx, nil, 1, perPage)
	return page.Items, err
}

func (f *fakeStudentBackend) Create(_ context.Context, body map[string]interface{}) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, writeCall{method: "POST", body: body})
	if f.writeErr != nil {
		return models.Student{}, f.writeErr
	}
	f.nextID++
	student := models.Student{
		ID:              models.ID(string(rune('0' + f.nextID))),
		Name:            body["name"].(string),
		DateOfBirth:     body["date_of_birth"].(string),
		DateOfAdmission: body["date_of_admission"].(string),
		Gender:          body["gender"].(string),
	}
	if classID, ok := body["class_id"].(string); ok {
		student.ClassID = models.ID(classID)
	}
	f.students = append(f.students, student)
	return student, nil
}

func (f *fakeStudentBackend) Update(_ context.Context, id models.ID, body map[string]interface{}) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, writeCall{method: "PUT", id: id, body: body})
	if f.writeErr != nil {
		return models.Student{}, f.writeErr
	}
	return models.Student{ID: id, Name: body["name"].(string)}, nil
}

func (f *fakeStudentBackend) Delete(_ context.Context, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, writeCall{method: "DELETE", id: id})
	return f.writeErr
}

type fakeInvalidator struct {
	resources []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, resource string) error {
	f.resources = append(f.resources, resource)
	return nil
}

func newStudentForm(backend *fakeStudentBackend, list Reloader, lookups LookupInvalidator) *FormController[models.Student] {
	return NewFormController[models.Student](FormDeps[models.Student]{
		Spec:    StudentSpec,
		Writer:  backend,
		List:    list,
		Lookups: lookups,
	})
}

func TestFormControllerCreateResetsAndReloads(t *testing.T) {
	backend := &fakeStudentBackend{}
	store := NewListStore[models.Student](backend, ListOptions{Resource: "students", PerPage: 10})
	store.Restore(models.PageCursor{CurrentPage: 1, TotalPages: 1})
	lookups := &fakeInvalidator{}
	form := newStudentForm(backend, store, lookups)

	for name, value := range map[string]interface{}{
		"name":              "Jane Doe",
		"date_of_birth":     "2012-05-01",
		"gender":            "Female",
		"date_of_admission": "2023-01-10",
		"class_id":          "3",
	} {
		require.NoError(t, form.SetField(name, value))
	}

	saved, notice, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", saved.Name)
	assert.Equal(t, models.Notice{Level: models.NoticeSuccess, Message: "Student added successfully!"}, notice)

	require.Len(t, backend.writes, 1)
	assert.Equal(t, "POST", backend.writes[0].method)
	assert.Equal(t, map[string]interface{}{
		"name":              "Jane Doe",
		"date_of_birth":     "2012-05-01",
		"gender":            "Female",
		"date_of_admission": "2023-01-10",
		"class_id":          "3",
	}, backend.writes[0].body)

	assert.Equal(t, models.FormCreate, form.Mode())
	assert.Empty(t, form.Draft())
	assert.Equal(t, []string{ResourceStudents}, lookups.resources)

	assert.Equal(t, []int{1}, backend.pages)
	snap := store.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Jane Doe", snap.Items[0].Name)
}

func TestFormControllerValidationBlocksDispatch(t *testing.T) {
	backend := &fakeStudentBackend{}
	form := newStudentForm(backend, nil, nil)
	require.NoError(t, form.SetField("name", "  "))
	require.NoError(t, form.SetField("gender", "Other"))
	require.NoError(t, form.SetField("date_of_birth", "01/05/2012"))

	_, notice, err := form.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, models.NoticeError, notice.Level)
	assert.Empty(t, backend.writes)

	fields := appErrors.FromError(err).Fields
	assert.Equal(t, "Name is a required field", fields["name"])
	assert.Contains(t, fields, "gender")
	assert.Contains(t, fields, "date_of_birth")
	assert.Contains(t, fields, "date_of_admission")
	assert.NotContains(t, fields, "nemis_no")

	assert.Equal(t, "Other", form.Draft()["gender"])
}

func TestFormControllerFailureKeepsDraft(t *testing.T) {
	backend := &fakeStudentBackend{writeErr: appErrors.ErrBackendStatus}
	form := newStudentForm(backend, nil, nil)
	form.SetFields(map[string]interface{}{
		"name":              "Jane Doe",
		"date_of_birth":     "2012-05-01",
		"gender":            "Female",
		"date_of_admission": "2023-01-10",
		"favourite_colour":  "blue",
	})

	_, notice, err := form.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to save student!", notice.Message)
	assert.Equal(t, "Jane Doe", form.Draft()["name"])
	assert.NotContains(t, form.Draft(), "favourite_colour")
}

func TestFormControllerUpdateUsesPutKeyedByID(t *testing.T) {
	backend := &fakeStudentBackend{}
	form := newStudentForm(backend, nil, nil)

	require.NoError(t, form.BeginEdit(models.Student{
		ID:              "12",
		Name:            "Jane Doe",
		DateOfBirth:     "2012-05-01",
		DateOfAdmission: "2023-01-10",
		Gender:          "Female",
		ClassID:         "3",
	}))
	assert.Equal(t, models.FormUpdate, form.Mode())
	assert.Equal(t, models.ID("12"), form.EditingID())
	assert.Equal(t, "3", form.Draft()["class_id"])

	require.NoError(t, form.SetField("name", "Jane A. Doe"))
	_, notice, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Student updated successfully!", notice.Message)

	require.Len(t, backend.writes, 1)
	call := backend.writes[0]
	assert.Equal(t, "PUT", call.method)
	assert.Equal(t, models.ID("12"), call.id)
	assert.Equal(t, "Jane A. Doe", call.body["name"])
	assert.NotContains(t, call.body, "id")
	assert.Equal(t, models.FormCreate, form.Mode())
}

func TestFormControllerRejectsUnknownField(t *testing.T) {
	form := newStudentForm(&fakeStudentBackend{}, nil, nil)
	err := form.SetField("shoe_size", "9")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestFormControllerSendsNumbers(t *testing.T) {
	writer := &recordingWriter[models.PickupLocation]{}
	form := NewFormController[models.PickupLocation](FormDeps[models.PickupLocation]{Spec: PickupLocationSpec, Writer: writer})
	form.SetFields(map[string]interface{}{"location_name": "Gate A", "transport_fee": "300.5"})

	_, notice, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pickup location added successfully!", notice.Message)
	assert.Equal(t, 300.5, writer.body["transport_fee"])
}

func TestFormControllerEditUnsupportedResource(t *testing.T) {
	writer := &recordingWriter[models.FeePayment]{}
	form := NewFormController[models.FeePayment](FormDeps[models.FeePayment]{Spec: FeePaymentSpec, Writer: writer})

	err := form.BeginEdit(models.FeePayment{ID: "5", Amount: 100})
	assert.ErrorIs(t, err, appErrors.ErrUnsupported)
	assert.Equal(t, models.FormCreate, form.Mode())
	assert.Empty(t, writer.method)
}

func TestFormControllerScoreRules(t *testing.T) {
	writer := &recordingWriter[models.ScoreGrade]{}
	form := NewFormController[models.ScoreGrade](FormDeps[models.ScoreGrade]{Spec: ScoreSpec, Writer: writer})
	form.SetFields(map[string]interface{}{"student_id": "7", "subject_id": "2", "score": "abc", "term": "Term 4", "year": 2024})

	_, _, err := form.Submit(context.Background())
	require.Error(t, err)
	fields := appErrors.FromError(err).Fields
	assert.Contains(t, fields, "score")
	assert.Contains(t, fields, "term")
	assert.NotContains(t, fields, "year")

	form.SetFields(map[string]interface{}{"score": 0, "term": "Term 3"})
	_, _, err = form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, writer.body["score"])
	assert.Equal(t, "2024", writer.body["year"])
}

func TestFormControllerDeleteInvalidatesAndReloads(t *testing.T) {
	backend := &fakeStudentBackend{students: []models.Student{{ID: "1", Name: "Jane Doe"}}}
	store := NewListStore[models.Student](backend, ListOptions{PerPage: 10})
	store.Restore(models.PageCursor{CurrentPage: 2, TotalPages: 2})
	lookups := &fakeInvalidator{}
	form := newStudentForm(backend, store, lookups)
	require.NoError(t, form.BeginEdit(models.Student{ID: "1", Name: "Jane Doe"}))

	notice, err := form.Delete(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Student deleted successfully!", notice.Message)
	assert.Equal(t, []string{ResourceStudents}, lookups.resources)
	assert.Equal(t, []int{2}, backend.pages)
	assert.Equal(t, models.FormCreate, form.Mode())
}

func TestFormControllerDeleteFailure(t *testing.T) {
	backend := &fakeStudentBackend{writeErr: appErrors.ErrBackendUnavailable}
	lookups := &fakeInvalidator{}
	form := newStudentForm(backend, nil, lookups)

	notice, err := form.Delete(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, "Failed to delete student!", notice.Message)
	assert.Empty(t, lookups.resources)
}

type recordingWriter[T any] struct {
	method string
	id     models.ID
	body   map[string]interface{}
}

func (w *recordingWriter[T]) Create(_ context.Context, body map[string]interface{}) (T, error) {
	var zero T
	w.method, w.body = "POST", body
	return zero, nil
}

func (w *recordingWriter[T]) Update(_ context.Context, id models.ID, body map[string]interface{}) (T, error) {
	var zero T
	w.method, w.id, w.body = "PUT", id, body
	return zero, nil
}

func (w *recordingWriter[T]) Delete(_ context.Context, id models.ID) error {
	w.method, w.id = "DELETE", id
	return nil
}
