package service

import (
	"context"
	"sync"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/pkg/backend"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
)

// EntityWriter dispatches mutations of one resource to the backend.
type EntityWriter[T any] interface {
	Create(ctx context.Context, body map[string]interface{}) (T, error)
	Update(ctx context.Context, id models.ID, body map[string]interface{}) (T, error)
	Delete(ctx context.Context, id models.ID) error
}

// Reloader refreshes the list a form belongs to.
type Reloader interface {
	Reload(ctx context.Context) error
}

// LookupInvalidator drops cached reference lists of a resource.
type LookupInvalidator interface {
	Invalidate(ctx context.Context, resource string) error
}

// FormDeps wires a FormController.
type FormDeps[T any] struct {
	Spec      ResourceSpec
	Writer    EntityWriter[T]
	Validator *FormValidator
	List      Reloader
	Lookups   LookupInvalidator
	Logger    *zap.Logger
}

// FormController binds a draft to create and update calls. A draft in update
// mode always refers to exactly one entity id.
type FormController[T models.Entity] struct {
	mu     sync.Mutex
	deps   FormDeps[T]
	mode   models.FormMode
	editID models.ID
	draft  map[string]interface{}
}

// NewFormController returns a controller in create mode with an empty draft.
func NewFormController[T models.Entity](deps FormDeps[T]) *FormController[T] {
	if deps.Validator == nil {
		deps.Validator = NewFormValidator()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &FormController[T]{deps: deps, mode: models.FormCreate, draft: map[string]interface{}{}}
}

// Mode returns the current form mode.
func (f *FormController[T]) Mode() models.FormMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// EditingID returns the id of the entity being edited, if any.
func (f *FormController[T]) EditingID() models.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editID
}

// Draft returns a copy of the draft.
func (f *FormController[T]) Draft() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft := make(map[string]interface{}, len(f.draft))
	for key, value := range f.draft {
		draft[key] = value
	}
	return draft
}

// SetField stores one draft value. Only schema fields are accepted.
func (f *FormController[T]) SetField(name string, value interface{}) error {
	if _, ok := f.deps.Spec.Form.Field(name); !ok {
		return appErrors.WithFields(appErrors.ErrValidation, "unknown form field", map[string]string{name: "unknown field"})
	}
	f.mu.Lock()
	f.draft[name] = value
	f.mu.Unlock()
	return nil
}

// SetFields stores several draft values, ignoring fields the form does not declare.
func (f *FormController[T]) SetFields(values map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, value := range values {
		if _, ok := f.deps.Spec.Form.Field(name); ok {
			f.draft[name] = value
		}
	}
}

// BeginEdit seeds the draft from entity and switches to update mode.
func (f *FormController[T]) BeginEdit(entity T) error {
	return f.Edit(entity.EntityKey(), toRecord(entity))
}

// Edit seeds the draft from a record's fields and switches to update mode.
func (f *FormController[T]) Edit(id models.ID, values map[string]interface{}) error {
	if !f.deps.Spec.Form.Updatable {
		return appErrors.Clone(appErrors.ErrUnsupported, f.deps.Spec.Plural+" cannot be edited")
	}
	if id.IsZero() {
		return appErrors.WithFields(appErrors.ErrValidation, "an edit needs an entity id", map[string]string{"id": "required"})
	}
	draft := make(map[string]interface{}, len(f.deps.Spec.Form.Fields))
	for _, field := range f.deps.Spec.Form.Fields {
		if value, ok := values[field.Name]; ok && value != nil {
			draft[field.Name] = cast.ToString(value)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = models.FormUpdate
	f.editID = id
	f.draft = draft
	return nil
}

// Reset clears the draft and returns to create mode.
func (f *FormController[T]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *FormController[T]) reset() {
	f.mode = models.FormCreate
	f.editID = ""
	f.draft = map[string]interface{}{}
}

// Submit validates the draft and dispatches POST in create mode or PUT in
// update mode. Success resets the form and reloads the list; any failure
// leaves the draft untouched. Invalid drafts never reach the backend.
func (f *FormController[T]) Submit(ctx context.Context) (T, models.Notice, error) {
	var zero T
	spec := f.deps.Spec

	f.mu.Lock()
	mode, id := f.mode, f.editID
	draft := make(map[string]interface{}, len(f.draft))
	for key, value := range f.draft {
		draft[key] = value
	}
	f.mu.Unlock()

	if fields := f.deps.Validator.Validate(ctx, spec.Form, draft); len(fields) > 0 {
		return zero, ValidationNotice(), appErrors.WithFields(appErrors.ErrValidation, validateNote, fields)
	}

	body := f.body(draft)
	var (
		saved T
		err   error
	)
	if mode == models.FormUpdate {
		saved, err = f.deps.Writer.Update(ctx, id, body)
	} else {
		saved, err = f.deps.Writer.Create(ctx, body)
	}
	if err != nil {
		f.deps.Logger.Warn("form submit failed",
			zap.String("resource", spec.Name),
			zap.String("mode", string(mode)),
			zap.String("id", id.String()),
			zap.Int("backend_status", backend.StatusCode(err)),
			zap.Error(err),
		)
		return zero, spec.SaveFailedNotice(), err
	}

	f.mu.Lock()
	f.reset()
	f.mu.Unlock()

	f.afterMutation(ctx)
	return saved, spec.SavedNotice(mode), nil
}

// Delete removes the entity, drops cached lookups of the resource and reloads the list.
func (f *FormController[T]) Delete(ctx context.Context, id models.ID) (models.Notice, error) {
	spec := f.deps.Spec
	if id.IsZero() {
		return spec.DeleteFailedNotice(), appErrors.WithFields(appErrors.ErrValidation, "delete needs an entity id", map[string]string{"id": "required"})
	}
	if err := f.deps.Writer.Delete(ctx, id); err != nil {
		f.deps.Logger.Warn("delete failed",
			zap.String("resource", spec.Name),
			zap.String("id", id.String()),
			zap.Int("backend_status", backend.StatusCode(err)),
			zap.Error(err),
		)
		return spec.DeleteFailedNotice(), err
	}

	f.mu.Lock()
	if f.editID == id {
		f.reset()
	}
	f.mu.Unlock()

	f.afterMutation(ctx)
	return spec.DeletedNotice(), nil
}

func (f *FormController[T]) afterMutation(ctx context.Context) {
	if f.deps.Lookups != nil {
		if err := f.deps.Lookups.Invalidate(ctx, f.deps.Spec.Name); err != nil {
			f.deps.Logger.Warn("lookup invalidation failed", zap.String("resource", f.deps.Spec.Name), zap.Error(err))
		}
	}
	if f.deps.List != nil {
		if err := f.deps.List.Reload(ctx); err != nil {
			f.deps.Logger.Warn("list reload after mutation failed", zap.String("resource", f.deps.Spec.Name), zap.Error(err))
		}
	}
}

// body converts a validated draft into the backend payload. Numbers are sent
// as numbers and empty optional fields are left out.
func (f *FormController[T]) body(draft map[string]interface{}) map[string]interface{} {
	normalized := f.deps.Validator.Normalize(f.deps.Spec.Form, draft)
	body := make(map[string]interface{}, len(normalized))
	for _, field := range f.deps.Spec.Form.Fields {
		text, _ := normalized[field.Name].(string)
		if text == "" {
			continue
		}
		if field.Kind == FieldNumber {
			body[field.Name] = cast.ToFloat64(text)
			continue
		}
		body[field.Name] = text
	}
	return body
}
