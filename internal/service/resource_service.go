package service

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/pkg/export"
)

// Navigation directions accepted by list views.
const (
	NavNext     = "next"
	NavPrevious = "previous"
)

// EntityRepository is the backend collection behind one resource.
type EntityRepository[T any] interface {
	PageSource[T]
	EntityWriter[T]
	ListAll(ctx context.Context, perPage int) ([]T, error)
}

// ListRequest describes one list view request. Nav is evaluated relative to
// Cursor; otherwise Page is loaded, defaulting to the first page.
type ListRequest struct {
	Page    int
	Nav     string
	Cursor  models.PageCursor
	Search  string
	Filters map[string]string
}

// ListView is a rendered list page.
type ListView struct {
	Resource string            `json:"resource"`
	State    models.ViewState  `json:"state"`
	Items    interface{}       `json:"items"`
	Cursor   models.PageCursor `json:"pagination"`
	Error    string            `json:"error,omitempty"`

	columns []Column
	records []map[string]interface{}
}

// Dataset renders the visible rows for export.
func (v *ListView) Dataset() export.Dataset {
	headers := make([]string, len(v.columns))
	for i, column := range v.columns {
		headers[i] = column.Header
	}
	rows := make([][]string, 0, len(v.records))
	for _, record := range v.records {
		row := make([]string, len(v.columns))
		for i, column := range v.columns {
			if value, ok := record[column.Field]; ok && value != nil {
				row[i] = cast.ToString(value)
			}
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// FormView is the blank form of a resource with the options of its reference fields.
type FormView struct {
	Resource string                        `json:"resource"`
	Schema   FormSchema                    `json:"schema"`
	Options  map[string][]models.Reference `json:"options"`
}

// MutationResult carries the outcome of a create, update or delete. Notice is
// set on failure as well.
type MutationResult struct {
	Entity interface{}   `json:"entity,omitempty"`
	Notice models.Notice `json:"notice"`
	List   *ListView     `json:"list,omitempty"`
}

// ResourceService drives the list and form of one resource.
type ResourceService interface {
	Spec() ResourceSpec
	List(ctx context.Context, req ListRequest) (*ListView, error)
	Form(ctx context.Context) *FormView
	Create(ctx context.Context, values map[string]interface{}, cursor models.PageCursor) (*MutationResult, error)
	Update(ctx context.Context, id models.ID, values map[string]interface{}, cursor models.PageCursor) (*MutationResult, error)
	Delete(ctx context.Context, id models.ID, cursor models.PageCursor) (*MutationResult, error)
}

type resourceService[T models.Entity, R any] struct {
	spec      ResourceSpec
	repo      EntityRepository[T]
	lookups   *LookupService
	validator *FormValidator
	decorate  func(ctx context.Context, items []T) []R
	perPage   int
	logger    *zap.Logger
}

func (s *resourceService[T, R]) Spec() ResourceSpec {
	return s.spec
}

func (s *resourceService[T, R]) List(ctx context.Context, req ListRequest) (*ListView, error) {
	clientSearch := req.Search
	if s.spec.ServerSearch {
		clientSearch = ""
	}
	predicate, err := NewPredicate(s.spec, clientSearch, req.Filters)
	if err != nil {
		return nil, err
	}

	store := s.newStore(req.Search)
	switch req.Nav {
	case NavNext, NavPrevious:
		store.Restore(req.Cursor)
		if req.Nav == NavNext {
			err = store.Next(ctx)
		} else {
			err = store.Previous(ctx)
		}
		if err == nil && store.Snapshot().State == models.ViewIdle {
			err = store.Reload(ctx)
		}
	default:
		err = store.Load(ctx, req.Page)
	}

	view := s.render(ctx, store, predicate)
	return view, err
}

func (s *resourceService[T, R]) Form(ctx context.Context) *FormView {
	options := map[string][]models.Reference{}
	for _, field := range s.spec.Form.Fields {
		if field.Reference == "" {
			continue
		}
		refs := s.lookups.ReferencesOrEmpty(ctx, field.Reference)
		if refs == nil {
			refs = []models.Reference{}
		}
		options[field.Name] = refs
	}
	return &FormView{Resource: s.spec.Name, Schema: s.spec.Form, Options: options}
}

func (s *resourceService[T, R]) Create(ctx context.Context, values map[string]interface{}, cursor models.PageCursor) (*MutationResult, error) {
	store, form := s.newForm(cursor)
	form.SetFields(values)
	return s.submit(ctx, store, form)
}

func (s *resourceService[T, R]) Update(ctx context.Context, id models.ID, values map[string]interface{}, cursor models.PageCursor) (*MutationResult, error) {
	store, form := s.newForm(cursor)
	if err := form.Edit(id, values); err != nil {
		return &MutationResult{Notice: s.spec.SaveFailedNotice()}, err
	}
	return s.submit(ctx, store, form)
}

func (s *resourceService[T, R]) Delete(ctx context.Context, id models.ID, cursor models.PageCursor) (*MutationResult, error) {
	store, form := s.newForm(cursor)
	notice, err := form.Delete(ctx, id)
	result := &MutationResult{Notice: notice}
	if err != nil {
		return result, err
	}
	result.List = s.render(ctx, store, Predicate{})
	return result, nil
}

func (s *resourceService[T, R]) submit(ctx context.Context, store *ListStore[T], form *FormController[T]) (*MutationResult, error) {
	saved, notice, err := form.Submit(ctx)
	result := &MutationResult{Notice: notice}
	if err != nil {
		return result, err
	}
	if !saved.EntityKey().IsZero() {
		result.Entity = saved
	}
	result.List = s.render(ctx, store, Predicate{})
	return result, nil
}

func (s *resourceService[T, R]) newStore(search string) *ListStore[T] {
	query := url.Values{}
	if s.spec.ServerSearch && strings.TrimSpace(search) != "" {
		query.Set("search", strings.TrimSpace(search))
	}
	return NewListStore[T](s.repo, ListOptions{
		Resource:       s.spec.Name,
		PerPage:        s.perPage,
		Query:          query,
		FailureMessage: s.spec.LoadFailedMessage(),
		Logger:         s.logger,
	})
}

func (s *resourceService[T, R]) newForm(cursor models.PageCursor) (*ListStore[T], *FormController[T]) {
	store := s.newStore("")
	store.Restore(cursor)
	form := NewFormController[T](FormDeps[T]{
		Spec:      s.spec,
		Writer:    s.repo,
		Validator: s.validator,
		List:      store,
		Lookups:   s.lookups,
		Logger:    s.logger,
	})
	return store, form
}

func (s *resourceService[T, R]) render(ctx context.Context, store *ListStore[T], predicate Predicate) *ListView {
	snapshot := store.Snapshot()
	view := &ListView{
		Resource: s.spec.Name,
		State:    snapshot.State,
		Cursor:   snapshot.Cursor,
		Error:    snapshot.Error,
		columns:  s.spec.Columns,
	}
	rows := ApplyFilter(s.decorate(ctx, snapshot.Items), predicate)
	view.Items = rows
	view.records = make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		view.records = append(view.records, toRecord(row))
	}
	return view
}

// RegistryOptions sizes the list views of a registry.
type RegistryOptions struct {
	PerPage           int
	ReferencePageSize int
}

// Repositories are the backend collections the registry serves.
type Repositories struct {
	Students        EntityRepository[models.Student]
	Teachers        EntityRepository[models.Teacher]
	Classes         EntityRepository[models.ClassRoom]
	Subjects        EntityRepository[models.Subject]
	Scores          EntityRepository[models.ScoreGrade]
	FeeStructures   EntityRepository[models.FeeStructure]
	FeePayments     EntityRepository[models.FeePayment]
	PickupLocations EntityRepository[models.PickupLocation]
}

// ResourceRegistry indexes the resource services by route name.
type ResourceRegistry struct {
	services map[string]ResourceService
	order    []string
}

// NewResourceRegistry builds a service per resource and registers the
// reference lists used to resolve foreign keys.
func NewResourceRegistry(repos Repositories, lookups *LookupService, opts RegistryOptions, logger *zap.Logger) *ResourceRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PerPage < 1 {
		opts.PerPage = 10
	}
	if opts.ReferencePageSize < 1 {
		opts.ReferencePageSize = 100
	}
	registerReferences(lookups, repos, opts.ReferencePageSize)

	validator := NewFormValidator()
	registry := &ResourceRegistry{services: map[string]ResourceService{}}

	add := func(svc ResourceService) {
		registry.services[svc.Spec().Name] = svc
		registry.order = append(registry.order, svc.Spec().Name)
	}

	add(&resourceService[models.Student, models.StudentRow]{
		spec: StudentSpec, repo: repos.Students, lookups: lookups, validator: validator, perPage: opts.PerPage, logger: logger,
		decorate: func(ctx context.Context, items []models.Student) []models.StudentRow {
			classes := lookups.ReferencesOrEmpty(ctx, ResourceClasses)
			locations := lookups.ReferencesOrEmpty(ctx, ResourcePickupLocations)
			rows := make([]models.StudentRow, 0, len(items))
			for _, item := range items {
				rows = append(rows, models.StudentRow{
					Student:            item,
					ClassName:          ResolveName(item.ClassID, classes),
					PickupLocationName: ResolveName(item.PickupLocationID, locations),
				})
			}
			return rows
		},
	})
	add(&resourceService[models.Teacher, models.TeacherRow]{
		spec: TeacherSpec, repo: repos.Teachers, lookups: lookups, validator: validator, perPage: opts.PerPage, logger: logger,
		decorate: func(ctx context.Context, items []models.Teacher) []models.TeacherRow {
			subjects := lookups.ReferencesOrEmpty(ctx, ResourceSubjects)
			rows := make([]models.TeacherRow, 0, len(items))
			for _, item := range items {
				rows = append(rows, models.TeacherRow{Teacher: item, SubjectName: ResolveName(item.SubjectID, subjects)})
			}
			return rows
		},
	})
	add(&resourceService[models.ClassRoom, models.ClassRoomRow]{
		spec: ClassSpec, repo: repos.Classes, lookups: lookups, validator: validator, perPage: opts.PerPage, logger: logger,
		decorate: func(ctx context.Context, items []models.ClassRoom) []models.ClassRoomRow {
			teachers := lookups.ReferencesOrEmpty(ctx, ResourceTeachers)
			rows := make([]models.ClassRoomRow, 0, len(items))
			for _, item := range items {
				rows = append(rows, models.ClassRoomRow{ClassRoom: item, TeacherName: ResolveName(item.TeacherID, teachers)})
			}
			return rows
		},
	})
	add(&resourceService[models.Subject, models.Subject]{
		spec: SubjectSpec, repo: repos.Subjects, lookups: lookups, validator: validator, perPage: opts.PerPage, logger: logger,
		decorate: func(_ context.Context, items []models.Subject) []models.Subject { return items },
	})
	add(&resourceService[models.ScoreGrade, models.ScoreGradeRow]{
		spec: ScoreSpec, repo: repos.Scores, lookups: lookups, validator: validator, perPage: opts.PerPage, logger: logger,
		decorate: func(ctx context.Context, items []models.ScoreGrade) []models.ScoreGradeRow {
			subjects := lookups.ReferencesOrEmpty(ctx, ResourceSubjects)
			rows := make([]models.ScoreGradeRow, 0, len(items))
			for _, item := range items {
				rows = append(rows, models.ScoreGradeRow{ScoreGrade: item, SubjectName: ResolveName(item.SubjectID, subjects)})
			}
			return rows
		},
	})
	add(&resourceService[models.FeeStructure, models.FeeStructureRow]{
		spec: FeeStructureSpec, repo: repos.FeeStructures, lookups: lookups, validator: validator, perPage: opts.PerPage, logger: logger,
		decorate: func(ctx context.Context, items []models.FeeStructure) []models.FeeStructureRow {
			classes := lookups.ReferencesOrEmpty(ctx, ResourceClasses)
			rows := make([]models.FeeStructureRow, 0, len(items))
			for _, item := range items {
				rows = append(rows, models.FeeStructureRow{FeeStructure: item, ClassName: ResolveName(item.ClassID, classes)})
			}
			return rows
		},
	})
	add(&resourceService[models.FeePayment, models.FeePaymentRow]{
		spec: FeePaymentSpec, repo: repos.FeePayments, lookups: lookups, validator: validator, perPage: opts.PerPage, logger: logger,
		decorate: func(ctx context.Context, items []models.FeePayment) []models.FeePaymentRow {
			locations := lookups.ReferencesOrEmpty(ctx, ResourcePickupLocations)
			rows := make([]models.FeePaymentRow, 0, len(items))
			for _, item := range items {
				rows = append(rows, models.FeePaymentRow{FeePayment: item, PickupLocationName: ResolveName(item.PickupLocationID, locations)})
			}
			return rows
		},
	})
	add(&resourceService[models.PickupLocation, models.PickupLocation]{
		spec: PickupLocationSpec, repo: repos.PickupLocations, lookups: lookups, validator: validator, perPage: opts.PerPage, logger: logger,
		decorate: func(_ context.Context, items []models.PickupLocation) []models.PickupLocation { return items },
	})

	return registry
}

// Get returns the service of the named resource.
func (r *ResourceRegistry) Get(name string) (ResourceService, bool) {
	svc, ok := r.services[name]
	return svc, ok
}

// Specs returns the specs of all registered resources in navigation order.
func (r *ResourceRegistry) Specs() []ResourceSpec {
	specs := make([]ResourceSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.services[name].Spec())
	}
	return specs
}

func registerReferences(lookups *LookupService, repos Repositories, referencePageSize int) {
	lookups.Register(ResourceClasses, func(ctx context.Context) ([]models.Reference, error) {
		items, err := repos.Classes.ListAll(ctx, referencePageSize)
		return references(items, err, func(c models.ClassRoom) models.Reference {
			return models.Reference{ID: c.ID, Name: c.ClassName}
		})
	})
	lookups.Register(ResourceTeachers, func(ctx context.Context) ([]models.Reference, error) {
		items, err := repos.Teachers.ListAll(ctx, referencePageSize)
		return references(items, err, func(t models.Teacher) models.Reference {
			return models.Reference{ID: t.ID, Name: t.FullName()}
		})
	})
	lookups.Register(ResourceSubjects, func(ctx context.Context) ([]models.Reference, error) {
		items, err := repos.Subjects.ListAll(ctx, referencePageSize)
		return references(items, err, func(s models.Subject) models.Reference {
			return models.Reference{ID: s.ID, Name: s.SubjectName}
		})
	})
	lookups.Register(ResourcePickupLocations, func(ctx context.Context) ([]models.Reference, error) {
		items, err := repos.PickupLocations.ListAll(ctx, referencePageSize)
		return references(items, err, func(p models.PickupLocation) models.Reference {
			return models.Reference{ID: p.ID, Name: p.LocationName}
		})
	})
}

func references[T any](items []T, err error, toRef func(T) models.Reference) ([]models.Reference, error) {
	if err != nil {
		return nil, err
	}
	refs := make([]models.Reference, 0, len(items))
	for _, item := range items {
		refs = append(refs, toRef(item))
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}
